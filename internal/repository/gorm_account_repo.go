package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meetvoice/message-history-service/internal/domain"
)

// AccountModel is the GORM model for the relational accounts table. It is the
// fallback profile source for conversation enrichment and also carries the
// user connection state. Profile columns are nullable: a NULL value means the
// field is simply unknown on this side.
type AccountModel struct {
	Username  string     `gorm:"type:varchar(150);primaryKey"`
	FirstName *string    `gorm:"type:varchar(100)"`
	Age       *string    `gorm:"type:varchar(40)"`
	Photo     *string    `gorm:"type:varchar(255)"`
	IsOnline  bool       `gorm:"not null;default:false"`
	LastSeen  *time.Time
}

// TableName specifies the table name for AccountModel.
func (AccountModel) TableName() string {
	return "accounts"
}

// GormAccountRepository implements FallbackProfileRepository and
// PresenceRepository over the relational store.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GORM-based account repository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// GetProfileByUsername returns the fallback profile fields for one user, or
// nil when no row exists. NULL columns come back as empty strings so the
// caller treats them as still missing.
func (r *GormAccountRepository) GetProfileByUsername(ctx context.Context, username string) (*domain.ProfileFragment, error) {
	var model AccountModel
	result := r.db.WithContext(ctx).First(&model, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query account: %w", result.Error)
	}

	return &domain.ProfileFragment{
		Username:  model.Username,
		FirstName: deref(model.FirstName),
		Age:       deref(model.Age),
		Photo:     deref(model.Photo),
	}, nil
}

// SetOnline upserts the connection state for a user. A user connecting for
// the first time gets a fresh row with only presence columns populated.
func (r *GormAccountRepository) SetOnline(ctx context.Context, username string, online bool) error {
	now := time.Now().UTC()
	model := AccountModel{
		Username: username,
		IsOnline: online,
		LastSeen: &now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to update connection status: %w", result.Error)
	}
	return nil
}

// ListOnline returns the usernames currently flagged online, sorted.
func (r *GormAccountRepository) ListOnline(ctx context.Context) ([]string, error) {
	var usernames []string
	result := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("is_online = ?", true).
		Order("username").
		Pluck("username", &usernames)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list online users: %w", result.Error)
	}
	return usernames, nil
}

// IsOnline reports the connection state of one user. An unknown user is
// simply offline.
func (r *GormAccountRepository) IsOnline(ctx context.Context, username string) (bool, error) {
	var model AccountModel
	result := r.db.WithContext(ctx).First(&model, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query connection status: %w", result.Error)
	}
	return model.IsOnline, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
