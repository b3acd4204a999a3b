package domain

import "errors"

// Pipeline error taxonomy. Only the first two ever surface as HTTP
// failures; everything else degrades to an audit status.
var (
	// ErrTenantNotAuthorized covers an unmapped instance identifier or an
	// inactive tenant configuration. This is a security boundary: the
	// pipeline must never fall through to "no tenant" or "all tenants".
	ErrTenantNotAuthorized = errors.New("tenant not authorized")

	// ErrMalformedPayload is returned for requests that are not valid
	// JSON at all. Recognized-but-odd shapes normalize to EnvelopeUnknown
	// instead.
	ErrMalformedPayload = errors.New("malformed payload")
)

// UpstreamError wraps a transient failure from the gateway or directory.
// Always recovered locally via fallback, never surfaced to the caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream " + e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
