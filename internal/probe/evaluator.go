package probe

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hamed0406/httprobe/internal/domain"
)

const snapshotBodyBytes = 1024

// Evaluate applies cfg's success criteria to res. An empty result means the
// cycle was healthy. A transport failure short-circuits the other rules.
func Evaluate(cfg *Config, res CheckResult) []Violation {
	if res.Err != nil {
		reason := res.Reason
		if reason == "" {
			reason = res.Err.Error()
		}
		return []Violation{{Kind: TransportFailure, Message: "HTTP request failed: " + reason}}
	}

	var out []Violation
	if !slices.Contains(cfg.StatusCodes, res.StatusCode) {
		out = append(out, Violation{
			Kind:    StatusMismatch,
			Message: fmt.Sprintf("HTTP Status %d not in accepted set", res.StatusCode),
		})
	}

	if cfg.MaxResponseTime > 0 && res.Elapsed > cfg.MaxResponseTime {
		out = append(out, Violation{
			Kind: ResponseTimeExceeded,
			Message: fmt.Sprintf("Maximum response time %s exceeded: %s",
				cfg.MaxResponseTime, res.Elapsed.Round(time.Millisecond)),
		})
	}

	if rule := cfg.BodyMatch; rule != nil {
		matches := rule.FindAll(res.Body)
		switch {
		case rule.Invert && len(matches) > 0:
			out = append(out, Violation{
				Kind:    BodyMatchFailure,
				Message: "Body matches " + rule.String(),
				Matches: matches,
			})
		case !rule.Invert && len(matches) == 0:
			out = append(out, Violation{
				Kind:    BodyMatchFailure,
				Message: "Body does not match " + rule.String() + " (required pattern absent)",
			})
		}
	}
	return out
}

// NewAlert renders the event for a failing cycle.
func NewAlert(cfg *Config, res CheckResult, violations []Violation, now time.Time) domain.Alert {
	msgs := make([]string, 0, len(violations))
	var details domain.AlertDetails
	for _, v := range violations {
		msgs = append(msgs, v.Message)
		if len(v.Matches) > 0 {
			details.Matches = v.Matches
		}
	}
	if res.Err != nil {
		details.Error = res.Reason
	} else {
		details.Response = snapshot(res)
	}
	return domain.Alert{
		ID:      uuid.NewString(),
		Probe:   cfg.Name,
		URL:     cfg.URL,
		Message: strings.Join(msgs, "; "),
		Details: details,
		Time:    now.UTC(),
	}
}

func snapshot(res CheckResult) *domain.ResponseSnapshot {
	s := &domain.ResponseSnapshot{
		StatusCode:  res.StatusCode,
		Status:      res.Status,
		ElapsedTime: res.Elapsed.Seconds(),
		Body:        truncate(res.Body, snapshotBodyBytes),
	}
	if len(res.Header) > 0 {
		s.Headers = make(map[string]string, len(res.Header))
		for k := range res.Header {
			s.Headers[k] = res.Header.Get(k)
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
