// pkg/middleware/identity.go
package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"logviewer/pkg/identity"
	"logviewer/pkg/problems"
)

type ctxIdentityKey struct{}

// WithIdentity attaches the caller's identity to the request context. A
// session store or JWKS outage answers 503 instead of treating the caller as
// logged out.
func WithIdentity(prov *identity.Provider, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			ident, err := prov.Identify(r)
			if err != nil {
				log.Warnw("identify failed", "err", err, "request_id", RequestIDFrom(r.Context()))
				problems.Write(w, problems.New(http.StatusServiceUnavailable, "identity-unavailable", "Identity provider unavailable", "try again shortly"))
				return
			}
			ctx := context.WithValue(r.Context(), ctxIdentityKey{}, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns Anonymous when WithIdentity did not run.
func IdentityFrom(ctx context.Context) identity.Identity {
	if v, ok := ctx.Value(ctxIdentityKey{}).(identity.Identity); ok {
		return v
	}
	return identity.Anonymous()
}
