package probe

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "httprobe/1.0"

type HTTPClientConfig struct {
	UserAgent       string
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// NewHTTPClient returns a client meant to be shared by all probes. Per-request
// deadlines come from each probe's context, so the client has no Timeout.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: userAgentTransport{rt: transport, userAgent: cfg.UserAgent},
	}
}

type userAgentTransport struct {
	rt        http.RoundTripper
	userAgent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.rt.RoundTrip(req)
}
