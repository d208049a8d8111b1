// pkg/db/db.go
package db

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"logviewer/pkg/config"
)

// OpenMongo creates a client for one tenant cluster. The driver pools and
// multiplexes connections; the returned client is shared by all requests
// for that tenant. No ping is performed: an unreachable cluster must not keep
// the other tenants from being served.
func OpenMongo(ctx context.Context, uri string, log *zap.SugaredLogger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("logviewer").
		SetServerSelectionTimeout(5 * time.Second)
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.Infow("mongo client ready", "uri", RedactURI(uri))
	return cli, nil
}

func MustRedis(cfg config.Config, log *zap.SugaredLogger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalw("redis parse", "err", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(context.Background()).Err(); err != nil {
		log.Fatalw("redis ping", "err", err)
	}
	log.Infow("redis ready", "addr", opts.Addr)
	return cli
}

// RedactURI hides credentials in a connection string before it is logged.
func RedactURI(uri string) string {
	if i := strings.LastIndex(uri, "@"); i > 0 {
		scheme := ""
		if j := strings.Index(uri, "://"); j > 0 && j < i {
			scheme = uri[:j+3]
		}
		return scheme + "***@" + uri[i+1:]
	}
	return uri
}
