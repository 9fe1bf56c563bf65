package quickbooks

import (
	"log/slog"
	"net/http"
	"time"
)

// userAgent identifies the tool to Intuit.
const userAgent = "qbtools"

// apiTransport sets the headers every QuickBooks call needs and logs each exchange.
// Only method, path, status and timing are logged; headers carry the bearer token.
type apiTransport struct {
	Base      http.RoundTripper
	RequestID string
}

// Compile-time check that apiTransport implements http.RoundTripper.
var _ http.RoundTripper = (*apiTransport)(nil)

// RoundTrip implements http.RoundTripper interface.
func (t *apiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request
	newReq := req.Clone(req.Context())
	newReq.Header.Set("Accept", "application/json")
	newReq.Header.Set("User-Agent", userAgent)
	if t.RequestID != "" {
		newReq.Header.Set("Request-Id", t.RequestID)
	}

	start := time.Now()
	resp, err := base.RoundTrip(newReq)
	if err != nil {
		slog.DebugContext(req.Context(), "quickbooks request failed",
			"method", req.Method, "path", req.URL.Path, "duration", time.Since(start), "error", err)
		return nil, err
	}

	// intuit_tid identifies the call in Intuit support requests
	slog.DebugContext(req.Context(), "quickbooks request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"intuit_tid", resp.Header.Get("intuit_tid"),
	)
	return resp, nil
}
