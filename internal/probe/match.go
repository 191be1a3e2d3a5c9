package probe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hamed0406/httprobe/internal/domain"
)

// contextRadius is how many bytes of body are kept on each side of a match.
const contextRadius = 40

// MatchRule is a compiled body pattern. Build it with NewMatchRule.
type MatchRule struct {
	Pattern string
	Flags   string
	Invert  bool

	re *regexp.Regexp
}

// NewMatchRule compiles pattern with flags. Supported flags are i
// (case-insensitive), m (multi-line anchors) and s (dot matches newline); g and
// u are accepted for compatibility and change nothing.
func NewMatchRule(pattern, flags string, invert bool) (*MatchRule, error) {
	if pattern == "" {
		return nil, errors.New("pattern is empty")
	}
	var mods []byte
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(string(mods), f) {
				mods = append(mods, byte(f))
			}
		case 'g', 'u':
		default:
			return nil, fmt.Errorf("unsupported flag %q", f)
		}
	}
	expr := pattern
	if len(mods) > 0 {
		expr = "(?" + string(mods) + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &MatchRule{Pattern: pattern, Flags: flags, Invert: invert, re: re}, nil
}

func (r *MatchRule) String() string {
	return "/" + r.Pattern + "/" + r.Flags
}

// FindAll returns every non-overlapping occurrence of the rule in body, each
// with its surrounding context. It returns nil when nothing matches.
func (r *MatchRule) FindAll(body string) []domain.Match {
	locs := r.re.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]domain.Match, 0, len(locs))
	for _, loc := range locs {
		from, to := contextBounds(body, loc[0], loc[1])
		out = append(out, domain.Match{
			Match:   body[loc[0]:loc[1]],
			Context: body[from:to],
		})
	}
	return out
}

// contextBounds widens [start,end) by contextRadius on both sides, clamped to
// the body and moved outwards onto rune boundaries.
func contextBounds(body string, start, end int) (int, int) {
	from := max(0, start-contextRadius)
	for from > 0 && !utf8.RuneStart(body[from]) {
		from--
	}
	to := min(len(body), end+contextRadius)
	for to < len(body) && !utf8.RuneStart(body[to]) {
		to++
	}
	return from, to
}
