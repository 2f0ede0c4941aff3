package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesser/config"
	"guesser/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore stores turns as {id, role, content, seq} documents.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	seq    *sequencer
}

func NewMongoStore(ctx context.Context, cfg config.StoreConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb: store uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb index: %w", err)
	}

	return NewMongoStoreWithCollection(coll), nil
}

// NewMongoStoreWithCollection wraps an existing collection. Close disconnects
// the collection's client.
func NewMongoStoreWithCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: coll.Database().Client(), coll: coll, seq: newSequencer()}
}

func (s *MongoStore) Append(ctx context.Context, conversationID string, role models.Role, content string) error {
	seq, now, err := s.seq.Next()
	if err != nil {
		return storageErr("append", err)
	}

	_, err = s.coll.InsertOne(ctx, bson.M{
		"id":         conversationID,
		"role":       string(role),
		"content":    content,
		"seq":        seq,
		"turn_id":    newTurnID(),
		"created_at": now,
	})
	if err != nil {
		return storageErr("append", err)
	}
	return nil
}

func (s *MongoStore) ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"id": conversationID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, storageErr("read", err)
	}
	defer cur.Close(ctx)

	turns := make([]models.Turn, 0)
	for cur.Next(ctx) {
		var doc mongoTurn
		if err := cur.Decode(&doc); err != nil {
			return nil, storageErr("read", err)
		}
		turns = append(turns, doc.toTurn())
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr("read", err)
	}
	return turns, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoTurn struct {
	ConversationID string    `bson:"id"`
	Role           string    `bson:"role"`
	Content        string    `bson:"content"`
	Seq            string    `bson:"seq"`
	TurnID         string    `bson:"turn_id"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (d mongoTurn) toTurn() models.Turn {
	return models.Turn{
		ID:             d.TurnID,
		ConversationID: d.ConversationID,
		Role:           models.Role(d.Role),
		Content:        d.Content,
		Seq:            d.Seq,
		CreatedAt:      d.CreatedAt,
	}
}

var _ ConversationStore = (*MongoStore)(nil)
