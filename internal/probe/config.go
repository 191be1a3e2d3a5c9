package probe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"
)

const (
	DefaultMethod       = http.MethodGet
	DefaultPeriod       = 300 * time.Second
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 1 << 20

	minTimeout = time.Second

	// Upper bounds keep numeric options inside time.Duration and int ranges.
	maxSeconds   = float64(math.MaxInt64/int64(time.Second)) - 1
	maxCount     = math.MaxInt32
	maxBodyBytes = 1 << 40
)

const msgInvalidURL = "config.url must be valid http(s) url"

// ErrInvalidConfiguration matches every *InvalidConfigurationError via errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

type InvalidConfigurationError struct {
	Msg string
}

func (e *InvalidConfigurationError) Error() string { return e.Msg }

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

func invalidf(format string, args ...any) error {
	return &InvalidConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// Number is a numeric option. In YAML it may be written as a number or as a
// numeric string ("300").
type Number float64

func (n *Number) UnmarshalYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*n = 0
	case int:
		*n = Number(x)
	case int64:
		*n = Number(x)
	case uint64:
		*n = Number(x)
	case float64:
		*n = Number(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", x)
		}
		*n = Number(f)
	default:
		return fmt.Errorf("not a number: %v", v)
	}
	return nil
}

type RawMatchRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Flags   string `yaml:"flags" json:"flags"`
	Invert  bool   `yaml:"invert" json:"invert"`
}

// RawConfig is a probe definition as written by an operator. Zero values mean
// "use the default".
type RawConfig struct {
	Name            string            `yaml:"name"`
	URL             string            `yaml:"url"`
	Method          string            `yaml:"method"`
	Headers         map[string]string `yaml:"headers"`
	Body            string            `yaml:"body"`
	StatusCodes     []int             `yaml:"statusCodes"`
	MaxResponseTime Number            `yaml:"maxResponseTime"` // seconds
	BodyMatch       *RawMatchRule     `yaml:"bodyMatch"`
	Username        string            `yaml:"username"`
	Password        string            `yaml:"password"`
	Period          Number            `yaml:"period"` // seconds
	Threshold       Number            `yaml:"threshold"`
	Interval        Number            `yaml:"interval"`
	MaxBodyBytes    Number            `yaml:"maxBodyBytes"`
}

// Config is a validated probe definition. It must not be modified after
// NewConfig returns it.
type Config struct {
	Name     string
	URL      string
	Hostname string
	Port     string
	Path     string
	Method   string
	Headers  http.Header
	Body     string

	StatusCodes     []int
	MaxResponseTime time.Duration
	BodyMatch       *MatchRule

	Period    time.Duration
	Threshold int
	Interval  int

	Timeout      time.Duration
	MaxBodyBytes int64
}

// RequestOptions is the connection view derived from the URL.
type RequestOptions struct {
	Hostname string
	Port     string
	Path     string
	Method   string
	Headers  http.Header
}

func (c *Config) RequestOptions() RequestOptions {
	return RequestOptions{
		Hostname: c.Hostname,
		Port:     c.Port,
		Path:     c.Path,
		Method:   c.Method,
		Headers:  c.Headers.Clone(),
	}
}

// NewConfig validates raw and derives the immutable probe configuration.
func NewConfig(raw RawConfig) (*Config, error) {
	u, err := url.Parse(strings.TrimSpace(raw.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, &InvalidConfigurationError{Msg: msgInvalidURL}
	}

	var errs error
	for _, opt := range []struct {
		name string
		v    Number
		max  float64
	}{
		{"period", raw.Period, maxSeconds},
		{"threshold", raw.Threshold, maxCount},
		{"interval", raw.Interval, maxCount},
		{"maxResponseTime", raw.MaxResponseTime, maxSeconds / 2}, // timeout is twice this
		{"maxBodyBytes", raw.MaxBodyBytes, maxBodyBytes},
	} {
		v := float64(opt.v)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = multierr.Append(errs, fmt.Errorf("config.%s must be a finite number", opt.name))
		case v < 0:
			errs = multierr.Append(errs, fmt.Errorf("config.%s must not be negative", opt.name))
		case v > opt.max:
			errs = multierr.Append(errs, fmt.Errorf("config.%s must not exceed %g", opt.name, opt.max))
		}
	}
	for _, code := range raw.StatusCodes {
		if code < 0 {
			errs = multierr.Append(errs, fmt.Errorf("config.statusCodes must not contain %d", code))
		}
	}
	if errs != nil {
		return nil, &InvalidConfigurationError{Msg: errs.Error()}
	}

	c := &Config{
		Name:     strings.TrimSpace(raw.Name),
		URL:      u.String(),
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Path:     u.RequestURI(),
		Method:   strings.ToUpper(strings.TrimSpace(raw.Method)),
		Headers:  make(http.Header, len(raw.Headers)+1),
		Body:     raw.Body,

		MaxResponseTime: seconds(raw.MaxResponseTime),
		Period:          seconds(raw.Period),
		Threshold:       int(raw.Threshold),
		Interval:        int(raw.Interval),
		MaxBodyBytes:    int64(raw.MaxBodyBytes),
	}
	if c.Name == "" {
		c.Name = c.URL
	}
	if c.Port == "" {
		c.Port = "80"
		if u.Scheme == "https" {
			c.Port = "443"
		}
	}
	if c.Method == "" {
		c.Method = DefaultMethod
	}
	for k, v := range raw.Headers {
		c.Headers.Set(k, v)
	}
	if raw.Username != "" || raw.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(raw.Username + ":" + raw.Password))
		c.Headers.Set("Authorization", "Basic "+cred)
	}

	c.StatusCodes = append([]int(nil), raw.StatusCodes...)
	if len(c.StatusCodes) == 0 {
		c.StatusCodes = []int{http.StatusOK}
	}

	if raw.BodyMatch != nil {
		rule, err := NewMatchRule(raw.BodyMatch.Pattern, raw.BodyMatch.Flags, raw.BodyMatch.Invert)
		if err != nil {
			return nil, invalidf("config.bodyMatch: %v", err)
		}
		c.BodyMatch = rule
	}

	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	if c.Threshold < 1 {
		c.Threshold = 1
	}
	if c.Interval < c.Threshold {
		c.Interval = c.Threshold
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}

	c.Timeout = DefaultTimeout
	if c.MaxResponseTime > 0 {
		c.Timeout = max(2*c.MaxResponseTime, minTimeout)
	}
	return c, nil
}

func seconds(n Number) time.Duration {
	return time.Duration(float64(n) * float64(time.Second))
}
