package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logviewer/internal/policy"
	"logviewer/pkg/identity"
	"logviewer/pkg/logs"
	"logviewer/pkg/tenants"
)

const botID = 555

func seededStore() *logs.MemoryStore {
	return logs.NewMemoryStore(
		[]logs.LogDocument{
			{Key: "abc123", BotID: "555", Messages: []logs.Message{{Content: "hi"}}},
			{Key: "for7", BotID: "555", Whitelist: logs.NewWhitelist(7)},
			{Key: "spoofed", BotID: "999", Whitelist: logs.NewWhitelist(7).WithEveryone()},
		},
		[]logs.TenantConfig{{BotID: botID, Whitelist: logs.NewWhitelist(3)}},
	)
}

func newGate(t *testing.T, enabled bool, store logs.Store, roles identity.RoleResolver) *Gate {
	t.Helper()
	pol, err := policy.New(context.Background(), policy.Options{Enabled: enabled, Roles: roles})
	require.NoError(t, err)
	reg := tenants.NewRegistry(tenants.Tenant{ID: 42, BotID: botID, Store: store})
	return New(reg, pol, nil)
}

func staticRoles(ids ...uint64) identity.RoleResolver {
	return identity.RoleResolverFunc(func(context.Context, uint64, uint64) ([]uint64, error) { return ids, nil })
}

func open(g *Gate, gid, key string, id identity.Identity) (Result, error) {
	return g.Open(context.Background(), Request{GID: gid, Key: key, Identity: id})
}

func TestOpen_InvalidIdentifier(t *testing.T) {
	g := newGate(t, false, seededStore(), nil)
	for _, gid := range []string{"", "abc", "-42", "4 2", "99999999999999999999"} {
		_, err := open(g, gid, "abc123", identity.Anonymous())
		assert.ErrorIs(t, err, ErrInvalidIdentifier, gid)
	}
}

func TestOpen_ModeA(t *testing.T) {
	g := newGate(t, false, seededStore(), nil)

	// scenario 1
	res, err := open(g, "42", "abc123", identity.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Document.Key)
	assert.Equal(t, tenants.ID(42), res.Tenant.ID)
	assert.True(t, res.Decision.Allowed())

	// scenario 2
	_, err = open(g, "43", "abc123", identity.Anonymous())
	assert.ErrorIs(t, err, ErrTenantNotOnboarded)

	// scenario 3
	_, err = open(g, "42", "missing", identity.Anonymous())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.NotErrorIs(t, err, ErrTenantNotOnboarded)
}

func TestOpen_ModeA_NoTagCheck(t *testing.T) {
	g := newGate(t, false, seededStore(), nil)
	res, err := open(g, "42", "spoofed", identity.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "999", res.Document.BotID)
}

func TestOpen_ModeB(t *testing.T) {
	g := newGate(t, true, seededStore(), staticRoles())

	// scenario 4
	_, err := open(g, "42", "abc123", identity.Anonymous())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// scenario 5
	res, err := open(g, "42", "for7", identity.Authenticated(identity.User{ID: 7}, nil))
	require.NoError(t, err)
	assert.Equal(t, policy.ReasonWhitelisted, res.Decision.Reason)

	_, err = open(g, "42", "spoofed", identity.Authenticated(identity.User{ID: 7}, nil))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = open(g, "42", "abc123", identity.Authenticated(identity.User{ID: 8}, nil))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOpen_ModeB_RolePath(t *testing.T) {
	// scenario 6
	g := newGate(t, true, seededStore(), staticRoles(3))
	res, err := open(g, "42", "abc123", identity.Authenticated(identity.User{ID: 9}, nil))
	require.NoError(t, err)
	assert.Equal(t, policy.ReasonRole, res.Decision.Reason)
}

func TestOpen_ModeB_MissingDocumentOnlyForWhitelisted(t *testing.T) {
	g := newGate(t, true, seededStore(), staticRoles())

	_, err := open(g, "42", "missing", identity.Authenticated(identity.User{ID: 3}, nil))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = open(g, "42", "missing", identity.Authenticated(identity.User{ID: 8}, nil))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOpen_ModeB_AnonymousNeverTouchesStore(t *testing.T) {
	st := &failingStore{err: errors.New("should not be called")}
	g := newGate(t, true, st, nil)

	_, err := open(g, "42", "abc123", identity.Anonymous())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(0), st.calls.Load())
}

func TestOpen_StoreFailureIsUnavailable(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		g := newGate(t, enabled, &failingStore{err: errors.New("server selection timeout")}, nil)
		_, err := open(g, "42", "abc123", identity.Authenticated(identity.User{ID: 3}, nil))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.NotErrorIs(t, err, ErrDocumentNotFound)
	}
}

func TestOpen_RoleLookupFailureIsUnavailable(t *testing.T) {
	roles := identity.RoleResolverFunc(func(context.Context, uint64, uint64) ([]uint64, error) {
		return nil, context.DeadlineExceeded
	})
	g := newGate(t, true, seededStore(), roles)

	_, err := open(g, "42", "abc123", identity.Authenticated(identity.User{ID: 9}, nil))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestOpen_TimeoutIsUnavailable(t *testing.T) {
	g := newGate(t, true, &slowStore{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Open(ctx, Request{GID: "42", Key: "abc123", Identity: identity.Authenticated(identity.User{ID: 3}, nil)})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestOpen_ConfigAndDocumentFetchedConcurrently(t *testing.T) {
	st := &barrierStore{MemoryStore: seededStore()}
	st.wg.Add(2)
	g := newGate(t, true, st, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := g.Open(ctx, Request{GID: "42", Key: "abc123", Identity: identity.Authenticated(identity.User{ID: 3}, nil)})
	require.NoError(t, err, "both reads must be in flight at the same time")
	assert.Equal(t, "abc123", res.Document.Key)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "unauthorized", Outcome(errors.Join(errors.New("x"), ErrUnauthorized)))
	assert.Equal(t, "unknown", Outcome(errors.New("other")))
}

type failingStore struct {
	err   error
	calls atomic.Int32
}

func (f *failingStore) FindLog(context.Context, string) (logs.LogDocument, bool, error) {
	f.calls.Add(1)
	return logs.LogDocument{}, false, f.err
}

func (f *failingStore) FindConfig(context.Context, uint64) (logs.TenantConfig, bool, error) {
	f.calls.Add(1)
	return logs.TenantConfig{}, false, f.err
}

func (f *failingStore) Close(context.Context) error { return nil }

type slowStore struct{}

func (slowStore) FindLog(ctx context.Context, _ string) (logs.LogDocument, bool, error) {
	<-ctx.Done()
	return logs.LogDocument{}, false, ctx.Err()
}

func (slowStore) FindConfig(ctx context.Context, _ uint64) (logs.TenantConfig, bool, error) {
	<-ctx.Done()
	return logs.TenantConfig{}, false, ctx.Err()
}

func (slowStore) Close(context.Context) error { return nil }

// barrierStore blocks each read until both the config and the log read have
// started.
type barrierStore struct {
	*logs.MemoryStore
	wg sync.WaitGroup
}

func (b *barrierStore) wait(ctx context.Context) error {
	b.wg.Done()
	done := make(chan struct{})
	go func() { b.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *barrierStore) FindLog(ctx context.Context, key string) (logs.LogDocument, bool, error) {
	if err := b.wait(ctx); err != nil {
		return logs.LogDocument{}, false, err
	}
	return b.MemoryStore.FindLog(ctx, key)
}

func (b *barrierStore) FindConfig(ctx context.Context, botID uint64) (logs.TenantConfig, bool, error) {
	if err := b.wait(ctx); err != nil {
		return logs.TenantConfig{}, false, err
	}
	return b.MemoryStore.FindConfig(ctx, botID)
}
