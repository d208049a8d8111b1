// Package identity resolves who is looking at a log: a browser session, a
// bearer token, or nobody. Role membership is looked up separately and only
// when the authorization policy needs it.
package identity

import (
	"context"
	"strconv"
)

// User is the subset of the Discord user object the viewer keeps in a session.
type User struct {
	ID            uint64 `json:"id,string"`
	Name          string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

func (u User) String() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Name
	}
	return u.Name + "#" + u.Discriminator
}

// Identity is either anonymous or an authenticated user. RoleIDs is nil until
// someone has looked the roles up; an empty non-nil slice means "no roles".
type Identity struct {
	User          User
	Authenticated bool
	RoleIDs       []uint64
}

func Anonymous() Identity { return Identity{} }

func Authenticated(u User, roles []uint64) Identity {
	return Identity{User: u, Authenticated: true, RoleIDs: roles}
}

func (i Identity) UserID() uint64 { return i.User.ID }

func (i Identity) String() string {
	if !i.Authenticated {
		return "anonymous"
	}
	return strconv.FormatUint(i.User.ID, 10)
}

// RoleResolver fetches a member's role ids within a guild.
type RoleResolver interface {
	RoleIDs(ctx context.Context, guildID, userID uint64) ([]uint64, error)
}

// RoleResolverFunc adapts a function to RoleResolver.
type RoleResolverFunc func(ctx context.Context, guildID, userID uint64) ([]uint64, error)

func (f RoleResolverFunc) RoleIDs(ctx context.Context, guildID, userID uint64) ([]uint64, error) {
	return f(ctx, guildID, userID)
}
