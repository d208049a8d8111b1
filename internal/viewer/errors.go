package viewer

import (
	"errors"
	"net/http"
	"strings"

	"logviewer/internal/gate"
	"logviewer/pkg/problems"
)

// FromCookie remembers where to send the user back to after login.
const FromCookie = "from"

type errorResponse struct {
	status int
	slug   string
	title  string
	detail string
}

// Both not-found kinds share one response so a caller cannot tell an unknown
// guild from an unknown key.
var notFound = errorResponse{http.StatusNotFound, "not-found", "Not found", "This log does not exist or its guild is not added to this viewer."}

func responseFor(err error) errorResponse {
	switch {
	case errors.Is(err, gate.ErrInvalidIdentifier):
		return errorResponse{http.StatusBadRequest, "invalid-identifier", "Bad request", "The guild id must be a number."}
	case errors.Is(err, gate.ErrTenantNotOnboarded), errors.Is(err, gate.ErrDocumentNotFound):
		return notFound
	case errors.Is(err, gate.ErrUnauthorized):
		return errorResponse{http.StatusUnauthorized, "unauthorized", "Unauthorized", "Your account does not have permission to view this page."}
	case errors.Is(err, gate.ErrUnauthenticated):
		return errorResponse{http.StatusUnauthorized, "unauthenticated", "Login required", "Log in to view this page."}
	default:
		return errorResponse{http.StatusServiceUnavailable, "unavailable", "Service unavailable", "The log store could not be reached. Try again shortly."}
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gate.ErrUnauthenticated) && !wantsJSON(r) {
		http.SetCookie(w, &http.Cookie{
			Name:     FromCookie,
			Value:    r.URL.RequestURI(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600,
		})
		http.Redirect(w, r, h.cfg.LoginURL, http.StatusFound)
		return
	}

	resp := responseFor(err)
	if resp.status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	if wantsJSON(r) {
		problems.Write(w, problems.New(resp.status, resp.slug, resp.title, resp.detail))
		return
	}
	renderHTML(w, resp.status, errorPage(resp.title, resp.detail))
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || strings.Contains(accept, "application/problem+json")
}
