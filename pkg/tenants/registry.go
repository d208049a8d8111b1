package tenants

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"logviewer/pkg/db"
	"logviewer/pkg/logs"
)

var reMongoURI = regexp.MustCompile(`^MONGO_URI_([0-9]+)$`)

// Opener turns a connection string into a tenant store.
type Opener func(ctx context.Context, uri string) (logs.Store, error)

// Registry maps guild ids to their stores. It is filled once by Build and is
// read-only afterwards, so Resolve needs no locking.
type Registry struct {
	byID map[ID]Tenant
}

// NewRegistry builds a registry from ready tenants (tests, tooling).
func NewRegistry(ts ...Tenant) *Registry {
	r := &Registry{byID: make(map[ID]Tenant, len(ts))}
	for _, t := range ts {
		r.byID[t.ID] = t
	}
	return r
}

// ParseNamespace extracts MONGO_URI_<gid> entries. Keys that do not match are
// ignored. When two keys name the same id (MONGO_URI_042, MONGO_URI_42) the
// lexically first one wins and the others are returned as shadowed.
func ParseNamespace(ns map[string]string) (uris map[ID]string, shadowed []string) {
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	uris = map[ID]string{}
	for _, k := range keys {
		m := reMongoURI.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		id, err := ParseID(m[1])
		if err != nil {
			continue
		}
		if _, dup := uris[id]; dup {
			shadowed = append(shadowed, k)
			continue
		}
		uris[id] = ns[k]
	}
	return uris, shadowed
}

// BotIDFor returns BOT_ID_<gid> when set, else the global BOT_ID. Unparseable
// values yield 0.
func BotIDFor(ns map[string]string, id ID) uint64 {
	raw, ok := ns["BOT_ID_"+id.String()]
	if !ok || raw == "" {
		raw = ns["BOT_ID"]
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Build opens one store per configured tenant. Any store that cannot be opened
// fails the whole build; stores opened so far are closed.
func Build(ctx context.Context, ns map[string]string, open Opener, log *zap.SugaredLogger) (*Registry, error) {
	uris, shadowed := ParseNamespace(ns)
	for _, k := range shadowed {
		log.Warnw("duplicate tenant key ignored", "key", k)
	}
	r := &Registry{byID: make(map[ID]Tenant, len(uris))}
	for id, uri := range uris {
		st, err := open(ctx, uri)
		if err != nil {
			_ = r.Close(ctx)
			return nil, fmt.Errorf("tenant %s (%s): %w", id, db.RedactURI(uri), err)
		}
		t := Tenant{ID: id, BotID: BotIDFor(ns, id), Store: st}
		if t.BotID == 0 {
			log.Warnw("no bot id for tenant", "gid", id)
		}
		r.byID[id] = t
	}
	log.Infow("tenants loaded", "count", len(r.byID))
	return r, nil
}

// Resolve never fails; ok=false means the guild is not onboarded.
func (r *Registry) Resolve(id ID) (Tenant, bool) {
	t, ok := r.byID[id]
	return t, ok
}

func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Len() int { return len(r.byID) }

func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for id, t := range r.byID {
		if t.Store == nil {
			continue
		}
		if err := t.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
