// Command cli runs a single check cycle and prints the verdict as JSON.
//
//	cli -url https://example.com -status 200,301 -max-response-time 0.5
//	cli -probes probes.yaml
//
// It exits 1 when any checked probe is unhealthy and 2 on usage errors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/httprobe/internal/config"
	"github.com/hamed0406/httprobe/internal/domain"
	"github.com/hamed0406/httprobe/internal/probe"
)

type headerFlags map[string]string

func (h headerFlags) String() string { return fmt.Sprint(map[string]string(h)) }

func (h headerFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, ":")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("header must look like 'Name: value', got %q", v)
	}
	h[strings.TrimSpace(k)] = strings.TrimSpace(val)
	return nil
}

type verdict struct {
	Probe       string        `json:"probe"`
	URL         string        `json:"url"`
	Healthy     bool          `json:"healthy"`
	StatusCode  int           `json:"statusCode,omitempty"`
	ElapsedTime float64       `json:"elapsedTime"`
	Violations  []string      `json:"violations,omitempty"`
	Alert       *domain.Alert `json:"alert,omitempty"`
}

func main() {
	var (
		raw       probe.RawConfig
		headers   = headerFlags{}
		probesArg = flag.String("probes", "", "check every probe in this YAML file instead of the flags below")
		statusArg = flag.String("status", "", "comma separated accepted status codes (default 200)")
		maxRT     = flag.Float64("max-response-time", 0, "response time ceiling in seconds")
		pattern   = flag.String("match", "", "body pattern (regular expression)")
		flags     = flag.String("match-flags", "", "pattern flags: i, m, s")
		invert    = flag.Bool("invert", false, "fail when the pattern is present instead of absent")
		parallel  = flag.Int("parallel", 4, "concurrent checks with -probes")
	)
	flag.StringVar(&raw.URL, "url", "", "URL to check")
	flag.StringVar(&raw.Name, "name", "", "probe name (default: the URL)")
	flag.StringVar(&raw.Method, "method", "", "HTTP method (default GET)")
	flag.StringVar(&raw.Body, "body", "", "request body")
	flag.StringVar(&raw.Username, "user", "", "basic auth username")
	flag.StringVar(&raw.Password, "password", "", "basic auth password")
	flag.Var(headers, "header", "request header 'Name: value' (repeatable)")
	flag.Parse()

	var raws []probe.RawConfig
	if *probesArg != "" {
		loaded, err := config.LoadProbes(*probesArg)
		if err != nil {
			usage(err)
		}
		raws = loaded
	} else {
		raw.Headers = headers
		raw.MaxResponseTime = probe.Number(*maxRT)
		codes, err := parseCodes(*statusArg)
		if err != nil {
			usage(err)
		}
		raw.StatusCodes = codes
		if *pattern != "" {
			raw.BodyMatch = &probe.RawMatchRule{Pattern: *pattern, Flags: *flags, Invert: *invert}
		}
		raws = []probe.RawConfig{raw}
	}

	cfgs := make([]*probe.Config, 0, len(raws))
	for _, r := range raws {
		c, err := probe.NewConfig(r)
		if err != nil {
			usage(fmt.Errorf("%s: %w", r.URL, err))
		}
		cfgs = append(cfgs, c)
	}

	checker := probe.NewChecker(nil, nil)
	out := make([]verdict, len(cfgs))
	var g errgroup.Group
	g.SetLimit(max(1, *parallel))
	for i, c := range cfgs {
		i, c := i, c
		g.Go(func() error {
			out[i] = check(context.Background(), checker, c)
			return nil
		})
	}
	_ = g.Wait()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	var v any = out
	if len(out) == 1 {
		v = out[0]
	}
	_ = enc.Encode(v)

	for _, r := range out {
		if !r.Healthy {
			os.Exit(1)
		}
	}
}

func check(ctx context.Context, checker *probe.Checker, cfg *probe.Config) verdict {
	res := checker.Check(ctx, cfg)
	violations := probe.Evaluate(cfg, res)
	v := verdict{
		Probe:       cfg.Name,
		URL:         cfg.URL,
		Healthy:     len(violations) == 0,
		StatusCode:  res.StatusCode,
		ElapsedTime: res.Elapsed.Round(time.Millisecond).Seconds(),
	}
	for _, x := range violations {
		v.Violations = append(v.Violations, x.Message)
	}
	if !v.Healthy {
		a := probe.NewAlert(cfg, res, violations, time.Now())
		v.Alert = &a
	}
	return v
}

func parseCodes(s string) ([]int, error) {
	var codes []int
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad status code %q", p)
		}
		codes = append(codes, n)
	}
	return codes, nil
}

func usage(err error) {
	fmt.Fprintln(os.Stderr, "cli:", err)
	flag.Usage()
	os.Exit(2)
}
