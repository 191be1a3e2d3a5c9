package probe

import (
	"net/http"
	"time"

	"github.com/hamed0406/httprobe/internal/domain"
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CheckResult is the outcome of one request/response cycle.
//
// StatusCode, Status, Header and Body are only set when the request completed;
// a transport failure sets Err and Reason instead.
type CheckResult struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       string
	Elapsed    time.Duration
	Err        error
	Reason     string
	CheckedAt  time.Time
}

// Failed reports whether the request never produced a usable response.
func (r CheckResult) Failed() bool { return r.Err != nil }

type ViolationKind int

const (
	TransportFailure ViolationKind = iota + 1
	StatusMismatch
	ResponseTimeExceeded
	BodyMatchFailure
)

func (k ViolationKind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case StatusMismatch:
		return "status_mismatch"
	case ResponseTimeExceeded:
		return "response_time_exceeded"
	case BodyMatchFailure:
		return "body_match_failure"
	default:
		return "unknown"
	}
}

// Violation is one reason a check cycle is unhealthy. Matches is only set for
// BodyMatchFailure.
type Violation struct {
	Kind    ViolationKind
	Message string
	Matches []domain.Match
}
