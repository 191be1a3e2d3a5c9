package domain

import "time"

// Match is one occurrence of a body pattern. Context is a window of the body
// around the occurrence and always contains Match.
type Match struct {
	Match   string `json:"match"`
	Context string `json:"context"`
}

// ResponseSnapshot is the part of an HTTP response carried in an alert.
type ResponseSnapshot struct {
	StatusCode  int               `json:"statusCode"`
	Status      string            `json:"status,omitempty"`
	ElapsedTime float64           `json:"elapsedTime"` // seconds
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
}

type AlertDetails struct {
	Response *ResponseSnapshot `json:"response,omitempty"`
	Matches  []Match           `json:"matches,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Alert is the event raised for a failing check cycle.
type Alert struct {
	ID      string       `json:"id"`
	Probe   string       `json:"probe"`
	URL     string       `json:"url"`
	Message string       `json:"message"`
	Details AlertDetails `json:"details"`
	Time    time.Time    `json:"time"`
}
