package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAlert_JSONShape(t *testing.T) {
	a := Alert{
		ID:      "a1",
		Probe:   "homepage",
		URL:     "http://localhost:9000/",
		Message: "HTTP Status 409 not in accepted set",
		Details: AlertDetails{
			Response: &ResponseSnapshot{StatusCode: 409, ElapsedTime: 0.25},
			Matches:  []Match{{Match: "probe", Context: "nice probe."}},
		},
		Time: time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["message"] != a.Message {
		t.Fatalf("message = %v", got["message"])
	}
	details, ok := got["details"].(map[string]any)
	if !ok {
		t.Fatalf("details missing: %s", b)
	}
	resp, ok := details["response"].(map[string]any)
	if !ok {
		t.Fatalf("details.response missing: %s", b)
	}
	if code, _ := resp["statusCode"].(float64); int(code) != 409 {
		t.Fatalf("statusCode = %v", resp["statusCode"])
	}
	matches, ok := details["matches"].([]any)
	if !ok || len(matches) != 1 {
		t.Fatalf("matches = %v", details["matches"])
	}
	m := matches[0].(map[string]any)
	if m["match"] != "probe" || m["context"] != "nice probe." {
		t.Fatalf("match entry = %v", m)
	}
	if _, ok := details["error"]; ok {
		t.Fatalf("error should be omitted when empty: %s", b)
	}
}

func TestAlert_TransportFailureOmitsResponse(t *testing.T) {
	a := Alert{Message: "HTTP request failed: timeout", Details: AlertDetails{Error: "timeout"}}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := got.Details["response"]; ok {
		t.Fatalf("response should be omitted: %s", b)
	}
	if got.Details["error"] != "timeout" {
		t.Fatalf("error = %v", got.Details["error"])
	}
}
