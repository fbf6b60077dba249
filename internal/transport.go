package internal

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// throttledTransport rate limits requests.
type throttledTransport struct {
	http.RoundTripper
	*rate.Limiter
}

func (t throttledTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(r.Context()); err != nil {
		return nil, err
	}
	resp, err := t.RoundTripper.RoundTrip(r)

	// Back off for a minute if we're being told to slow down.
	if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) {
		Log(r.Context()).Warn("backing off", "status", resp.StatusCode, "limit", t.Limiter.Limit(), "tokens", t.Limiter.Tokens())
		orig := t.Limiter.Limit()
		t.Limiter.SetLimit(rate.Every(time.Hour / 60))          // 1RPM
		t.Limiter.SetLimitAt(time.Now().Add(time.Minute), orig) // Restore
	}

	return resp, err
}

// ScopedTransport restricts requests to a particular host. Requests can then
// be issued with only a path.
type ScopedTransport struct {
	Host string
	http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t ScopedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r.URL.Scheme = "https"
	r.URL.Host = t.Host
	return t.RoundTripper.RoundTrip(r)
}

// errorProxyTransport turns unsuccessful responses into errors so callers
// don't need to inspect status codes. 404s become ErrNotFound and everything
// else becomes ErrUpstream, with the response status preserved.
type errorProxyTransport struct {
	http.RoundTripper
}

func (t errorProxyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.RoundTripper.RoundTrip(r)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, err), ErrUpstream)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Join(fmt.Errorf("%s %s", r.Method, r.URL.Path), ErrNotFound)
	}
	return nil, errors.Join(fmt.Errorf("%s %s", r.Method, r.URL.Path), statusErr(resp.StatusCode), ErrUpstream)
}

// newUpstreamClient creates an http.Client limited to rps requests per
// second. If host is set every request is scoped to it.
func newUpstreamClient(host string, rps float64, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if host != "" {
		base = ScopedTransport{Host: host, RoundTripper: base}
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: errorProxyTransport{throttledTransport{
			Limiter:      rate.NewLimiter(limit, 1),
			RoundTripper: base,
		}},
	}
}
