package vision

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"
)

// LoggingTransport is an http.RoundTripper that logs outbound health checks
// when Debug is set.
type LoggingTransport struct {
	Base  http.RoundTripper
	Debug bool
}

func (t *LoggingTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.Debug {
		return t.base().RoundTrip(req)
	}

	log.Printf("[HTTP] ➡️  %s %s", req.Method, req.URL.Redacted())
	start := time.Now()

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		log.Printf("[HTTP] ⛔ %s %s failed after %s: %v", req.Method, req.URL.Redacted(), time.Since(start), err)
		return resp, err
	}

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	log.Printf("[HTTP] ⬅️  %d %s (%s)", resp.StatusCode, req.URL.Redacted(), time.Since(start))
	if len(body) > 0 {
		log.Printf("[HTTP] body: %s", string(body))
	}
	return resp, nil
}

// NewHTTPClient builds the client used for local service checks.
// A zero timeout means no client-side limit.
func NewHTTPClient(timeout time.Duration, debug bool) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &LoggingTransport{Debug: debug},
	}
}
