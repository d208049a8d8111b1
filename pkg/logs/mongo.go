package logs

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore reads the bot's `logs` and `config` collections.
type MongoStore struct {
	client *mongo.Client // nil when built around a borrowed database
	logs   *mongo.Collection
	config *mongo.Collection
	fold   bool
}

func NewMongoStore(database *mongo.Database, opts Options) *MongoStore {
	return &MongoStore{
		logs:   database.Collection("logs"),
		config: database.Collection("config"),
		fold:   opts.EveryoneFold,
	}
}

func (s *MongoStore) FindLog(ctx context.Context, key string) (LogDocument, bool, error) {
	var doc LogDocument
	err := s.logs.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return LogDocument{}, false, nil
	}
	if err != nil {
		return LogDocument{}, false, fmt.Errorf("find log: %w", err)
	}
	doc.Whitelist = ParseWhitelist(doc.RawWhitelist, s.fold)
	return doc, true, nil
}

func (s *MongoStore) FindConfig(ctx context.Context, botID uint64) (TenantConfig, bool, error) {
	var cfg TenantConfig
	err := s.config.FindOne(ctx, bson.M{"bot_id": int64(botID)}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return TenantConfig{}, false, nil
	}
	if err != nil {
		return TenantConfig{}, false, fmt.Errorf("find config: %w", err)
	}
	cfg.Whitelist = ParseWhitelist(cfg.RawWhitelist, s.fold)
	return cfg, true, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
