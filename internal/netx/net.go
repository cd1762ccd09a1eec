// Package netx inspects transport-level failures returned by net/http.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"syscall"
)

// IsTimeout reports whether err means the request ran out of time, either via
// a context deadline or a net.Error that reports Timeout().
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsCanceled reports whether the caller abandoned the request.
func IsCanceled(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// IsUnreachable reports whether err is a connection-level failure: DNS, refused
// or reset connections, or any other *net.OpError / *url.Error from dialing.
func IsUnreachable(err error) bool {
	if err == nil || IsTimeout(err) || IsCanceled(err) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
