// Package viewer is the HTTP surface: it turns a gate result into an HTML or
// plain-text page and a gate error into the matching status.
package viewer

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"logviewer/internal/gate"
	"logviewer/pkg/config"
	"logviewer/pkg/identity"
	"logviewer/pkg/middleware"
)

// Opener is the request gate as seen by the handlers.
type Opener interface {
	Open(ctx context.Context, req gate.Request) (gate.Result, error)
}

type handler struct {
	cfg     config.Config
	log     *zap.SugaredLogger
	gate    Opener
	ident   *identity.Provider
	timeout time.Duration
}

func RegisterRoutes(r chi.Router, cfg config.Config, log *zap.SugaredLogger, g Opener, prov *identity.Provider) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	h := &handler{cfg: cfg, log: log, gate: g, ident: prov, timeout: timeout}

	r.Get("/", h.index)
	r.Get("/logout", h.logout)
	r.Get("/{gid}/raw/{key}", h.raw)
	r.Get("/{gid}/{key}", h.page)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		h.writeError(w, req, gate.ErrDocumentNotFound)
	})
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, indexPage(middleware.IdentityFrom(r.Context())))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.ident.Logout(w, r); err != nil {
		h.log.Warnw("logout failed", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		h.writeError(w, r, gate.ErrStoreUnavailable)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	res, ok := h.open(w, r)
	if !ok {
		return
	}
	h.privateCache(w)
	renderHTML(w, http.StatusOK, logPage(res.Tenant.ID.String(), res.Document))
}

func (h *handler) raw(w http.ResponseWriter, r *http.Request) {
	res, ok := h.open(w, r)
	if !ok {
		return
	}
	h.privateCache(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(PlainText(res.Document)))
}

// open runs the gate under the request timeout and writes the error response
// itself when the gate refuses.
func (h *handler) open(w http.ResponseWriter, r *http.Request) (gate.Result, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.gate.Open(ctx, gate.Request{
		GID:      chi.URLParam(r, "gid"),
		Key:      chi.URLParam(r, "key"),
		Identity: middleware.IdentityFrom(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return gate.Result{}, false
	}
	return res, true
}

// privateCache keeps gated logs out of shared caches.
func (h *handler) privateCache(w http.ResponseWriter) {
	if h.cfg.UsingOAuth() {
		w.Header().Set("Cache-Control", "private, no-store")
		w.Header().Add("Vary", "Cookie")
	}
}
