package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// ErrKeysUnavailable means the token could not be checked at all.
var ErrKeysUnavailable = errors.New("signing keys unavailable")

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu    sync.RWMutex
	sets  map[string]cachedJWKS
	fetch func(ctx context.Context, url string) (jwk.Set, error)
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// BearerVerifier validates access tokens minted by an OIDC issuer for
// non-browser clients. The token subject must be the Discord user id.
type BearerVerifier struct {
	issuer   string
	audience string
	jwksURL  string
	ttl      time.Duration
	skew     time.Duration
	cache    *jwksCache
}

func NewBearerVerifier(issuer, audience, jwksURL string) *BearerVerifier {
	return &BearerVerifier{
		issuer:   strings.TrimRight(issuer, "/"),
		audience: audience,
		jwksURL:  jwksURL,
		ttl:      6 * time.Hour,
		skew:     60 * time.Second,
		cache: &jwksCache{fetch: func(ctx context.Context, url string) (jwk.Set, error) {
			return jwk.Fetch(ctx, url)
		}},
	}
}

// WithKeySet pins a static key set instead of fetching JWKS_URL.
func (v *BearerVerifier) WithKeySet(set jwk.Set) *BearerVerifier {
	v.cache = &jwksCache{fetch: func(context.Context, string) (jwk.Set, error) { return set, nil }}
	return v
}

func (v *BearerVerifier) Verify(ctx context.Context, raw string) (User, error) {
	set, err := v.cache.get(ctx, v.jwksURL, v.ttl)
	if err != nil {
		return User{}, fmt.Errorf("%w: jwks fetch: %v", ErrKeysUnavailable, err)
	}
	opts := []jwt.ParseOption{jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithVerify(true), jwt.WithAcceptableSkew(v.skew)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	jt, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseUint(jt.Subject(), 10, 64)
	if err != nil {
		return User{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	u := User{ID: id}
	if name, ok := jt.Get("preferred_username"); ok {
		u.Name, _ = name.(string)
	}
	return u, nil
}
