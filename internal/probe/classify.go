package probe

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// classifyTransportError turns a request error into a short, stable reason.
// DNS failures keep the resolver classes used in operator runbooks.
func classifyTransportError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		switch {
		case de.IsNotFound:
			return "dns: NXDOMAIN"
		case de.IsTemporary || de.Timeout():
			return "dns: SERVFAIL_or_TIMEOUT"
		}
		return "dns: " + de.Err
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	return err.Error()
}
