package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const SessionCookie = "session"

var (
	ErrSessionUnavailable  = errors.New("session store unavailable")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)

// Provider turns a request into an Identity. Both sources are optional; with
// neither configured every request is anonymous.
type Provider struct {
	sessions SessionStore
	bearer   *BearerVerifier
	log      *zap.SugaredLogger
}

func NewProvider(sessions SessionStore, bearer *BearerVerifier, log *zap.SugaredLogger) *Provider {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Provider{sessions: sessions, bearer: bearer, log: log}
}

// Identify never reports a bad credential as an error: it yields Anonymous
// and the policy asks for a login. An unreachable session store or JWKS
// endpoint is an error; the caller answers 503 instead of a login redirect.
func (p *Provider) Identify(r *http.Request) (Identity, error) {
	if authz := r.Header.Get("Authorization"); p.bearer != nil && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		u, err := p.bearer.Verify(r.Context(), strings.TrimSpace(authz[len("Bearer "):]))
		if errors.Is(err, ErrKeysUnavailable) {
			return Anonymous(), fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
		}
		if err != nil {
			p.log.Debugw("bearer rejected", "err", err)
			return Anonymous(), nil
		}
		return Authenticated(u, nil), nil
	}
	if p.sessions == nil {
		return Anonymous(), nil
	}
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return Anonymous(), nil
	}
	s, ok, err := p.sessions.Get(r.Context(), c.Value)
	if err != nil {
		return Anonymous(), fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if !ok || !s.LoggedIn || s.User.ID == 0 {
		return Anonymous(), nil
	}
	return Authenticated(s.User, nil), nil
}

// Logout drops the server-side session and expires the cookie.
func (p *Provider) Logout(w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(SessionCookie)
	if err == nil && c.Value != "" && p.sessions != nil {
		if err := p.sessions.Delete(r.Context(), c.Value); err != nil {
			return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return nil
}
