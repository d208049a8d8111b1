package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/guilds/42/members/7":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":"7"},"roles":["3","400000000000000001","bogus"]}`))
		case "/guilds/42/members/8":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	d := NewDiscordRoles(srv.URL+"/", "tok", srv.Client())
	ctx := context.Background()

	roles, err := d.RoleIDs(ctx, 42, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 400000000000000001}, roles)

	roles, err = d.RoleIDs(ctx, 42, 8)
	require.NoError(t, err)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)

	_, err = d.RoleIDs(ctx, 42, 9)
	assert.ErrorIs(t, err, ErrRoleLookup)

	_, err = NewDiscordRoles(srv.URL, "wrong", srv.Client()).RoleIDs(ctx, 42, 7)
	assert.ErrorIs(t, err, ErrRoleLookup)
}

func TestDiscordRoles_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDiscordRoles(srv.URL, "tok", srv.Client()).RoleIDs(ctx, 1, 2)
	assert.Error(t, err)
}
