package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/meetvoice/message-history-service/internal/config"
	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/pkg/log"
)

// MongoMessageRepository implements MessageRepository over the messages
// collection. The collection holds two historical document shapes
// (from/to/message and sender/recipient/content); every read goes through
// normalizeMessage so only the canonical shape leaves this package.
type MongoMessageRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoMessageRepository(cfg config.MongoConfig) (*MongoMessageRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoMessageRepository{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.MessagesCollection),
	}, nil
}

// participantFilter matches user as either side of a message, in both
// historical field shapes.
func participantFilter(user string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": user},
		bson.M{"recipient": user},
		bson.M{"from": user},
		bson.M{"to": user},
	}}
}

// pairFilter matches messages exchanged between userA and userB in either
// direction, in both historical field shapes.
func pairFilter(userA, userB string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": userA, "recipient": userB},
		bson.M{"sender": userB, "recipient": userA},
		bson.M{"from": userA, "to": userB},
		bson.M{"from": userB, "to": userA},
	}}
}

func (r *MongoMessageRepository) ListInvolving(ctx context.Context, user string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	return r.find(ctx, participantFilter(user), opts)
}

func (r *MongoMessageRepository) ListRecentInvolving(ctx context.Context, user string, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, participantFilter(user), opts)
}

func (r *MongoMessageRepository) ListBetween(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, pairFilter(userA, userB), opts)
}

func (r *MongoMessageRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]domain.Message, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer cursor.Close(ctx)

	l := log.Ctx(ctx)
	var messages []domain.Message
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message document: %w", err)
		}
		msg, err := normalizeMessage(doc)
		if err != nil {
			// Malformed document: skip it, the rest of the scan is still good.
			l.Debug().Err(err).Msg("skipping malformed message document")
			continue
		}
		messages = append(messages, msg)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func (r *MongoMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	doc := bson.M{
		"sender":       msg.Sender,
		"recipient":    msg.Recipient,
		"content":      msg.Content,
		"message_type": msg.MessageType,
		"timestamp":    msg.Timestamp,
		"read":         msg.Read,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *MongoMessageRepository) MarkRead(ctx context.Context, sender, recipient, readAt string) (int64, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender": sender, "recipient": recipient},
			bson.M{"from": sender, "to": recipient},
		},
		"read": false,
	}
	update := bson.M{"$set": bson.M{"read": true, "read_at": readAt}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoMessageRepository) DeleteBetween(ctx context.Context, userA, userB string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, pairFilter(userA, userB))
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return res.DeletedCount, nil
}

// Client exposes the underlying connection so sibling repositories on the
// same deployment can share it.
func (r *MongoMessageRepository) Client() *mongo.Client {
	return r.client
}

func (r *MongoMessageRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
