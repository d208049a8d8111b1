package logs

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"logviewer/pkg/db"
)

// DatabaseName is the database the modmail bot writes into on every cluster.
const DatabaseName = "modmail_bot"

var ErrUnsupportedURI = errors.New("unsupported store uri")

// Store is a single tenant's log database. Implementations must be safe for
// concurrent use. A missing record is reported as found=false with a nil
// error; any error means the store could not answer.
type Store interface {
	FindLog(ctx context.Context, key string) (LogDocument, bool, error)
	FindConfig(ctx context.Context, botID uint64) (TenantConfig, bool, error)
	Close(ctx context.Context) error
}

type Options struct {
	EveryoneFold bool
	Log          *zap.SugaredLogger
}

// Open picks a backend from the uri scheme.
func Open(ctx context.Context, uri string, opts Options) (Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, db.RedactURI(uri))
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		log := opts.Log
		if log == nil {
			log = zap.NewNop().Sugar()
		}
		cli, err := db.OpenMongo(ctx, uri, log)
		if err != nil {
			return nil, err
		}
		s := NewMongoStore(cli.Database(DatabaseName), opts)
		s.client = cli
		return s, nil
	case "file":
		return LoadFile(u.Path, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, u.Scheme)
	}
}
