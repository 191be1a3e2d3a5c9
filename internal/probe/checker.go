package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jmhodges/clock"
)

// Checker performs one HTTP request per call. It applies no interpretation to
// the response; see Evaluate.
type Checker struct {
	Client Doer
	Clock  clock.Clock
}

func NewChecker(client Doer, clk clock.Clock) *Checker {
	if client == nil {
		client = NewHTTPClient(HTTPClientConfig{})
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Checker{Client: client, Clock: clk}
}

// Check issues the request described by cfg, bounded by cfg.Timeout, and reads
// at most cfg.MaxBodyBytes of the response body.
func (c *Checker) Check(ctx context.Context, cfg *Config) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res := CheckResult{CheckedAt: c.Clock.Now().UTC()}

	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		res.Err = fmt.Errorf("build request: %w", err)
		res.Reason = res.Err.Error()
		return res
	}
	if h := cfg.Headers.Clone(); h != nil {
		req.Header = h
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	start := c.Clock.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		res.Elapsed = c.Clock.Now().Sub(start)
		res.Err = err
		res.Reason = classifyTransportError(err)
		return res
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBodyBytes))
	res.Elapsed = c.Clock.Now().Sub(start)
	if err != nil {
		res.Err = fmt.Errorf("read body: %w", err)
		res.Reason = "read body: " + classifyTransportError(err)
		return res
	}

	res.StatusCode = resp.StatusCode
	res.Status = resp.Status
	res.Header = resp.Header
	res.Body = string(b)
	return res
}
