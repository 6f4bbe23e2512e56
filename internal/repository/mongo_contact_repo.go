package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/meetvoice/message-history-service/internal/config"
	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/pkg/log"
)

// MongoContactRepository implements ContactRepository over the contacts
// collection: one document per owning user, holding the list of counterpart
// profile fragments that user has interacted with.
type MongoContactRepository struct {
	coll *mongo.Collection
}

func NewMongoContactRepository(client *mongo.Client, cfg config.MongoConfig) *MongoContactRepository {
	return &MongoContactRepository{
		coll: client.Database(cfg.Database).Collection(cfg.ContactsCollection),
	}
}

func (r *MongoContactRepository) GetKnownCounterparts(ctx context.Context, user string) ([]domain.ProfileFragment, error) {
	var doc struct {
		Username string   `bson:"username"`
		Contacts []bson.M `bson:"contacts"`
	}

	err := r.coll.FindOne(ctx, bson.M{"username": user}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No contacts document for this user is a normal state.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}

	l := log.Ctx(ctx)
	fragments := make([]domain.ProfileFragment, 0, len(doc.Contacts))
	for _, raw := range doc.Contacts {
		frag, ok := normalizeFragment(raw)
		if !ok {
			l.Debug().Str(log.FieldUsername, user).Msg("skipping incomplete contact fragment")
			continue
		}
		fragments = append(fragments, frag)
	}

	return fragments, nil
}
