package gate

import "errors"

var (
	ErrInvalidIdentifier  = errors.New("invalid guild id")
	ErrTenantNotOnboarded = errors.New("guild not added to this viewer")
	ErrDocumentNotFound   = errors.New("log not found")
	ErrStoreUnavailable   = errors.New("log store unavailable")
	ErrUnauthenticated    = errors.New("login required")
	ErrUnauthorized       = errors.New("your account does not have permission to view this page")
)

// Outcome is a stable label for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, ErrTenantNotOnboarded):
		return "tenant_not_onboarded"
	case errors.Is(err, ErrDocumentNotFound):
		return "document_not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "unknown"
	}
}
