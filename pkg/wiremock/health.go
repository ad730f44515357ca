package wiremock

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
)

// HealthStatus is the outcome of a single health probe.
type HealthStatus int

const (
	// HealthReady means the server answered 200.
	HealthReady HealthStatus = iota
	// HealthNotReady means the server answered with another status, or the
	// request failed in a way that is expected while a server is starting.
	HealthNotReady
	// HealthError means the probe cannot succeed by waiting, e.g. the base
	// URL is malformed.
	HealthError
)

func (s HealthStatus) String() string {
	switch s {
	case HealthReady:
		return "ready"
	case HealthNotReady:
		return "not-ready"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}

// HealthResult describes one probe of GET /__admin/health.
type HealthResult struct {
	Status HealthStatus
	// Code is the HTTP status, zero when no response was received.
	Code int
	// Err is the transport error, if any.
	Err error
}

// Ready reports whether the probe saw a healthy server.
func (r HealthResult) Ready() bool {
	return r.Status == HealthReady
}

// IsTransient reports whether err is the kind of connectivity failure a
// server that is still starting produces: refused or reset connections,
// timeouts, DNS lookups that do not resolve yet, and truncated responses.
// Cancellation of the caller's context is not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// *url.Error implements net.Error itself; classify what it wraps.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
