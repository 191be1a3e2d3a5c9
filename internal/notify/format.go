package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/httprobe/internal/domain"
)

const maxMatchesInText = 5

func title(a domain.Alert) string {
	return "🔴 Probe FAILING: " + a.Probe
}

// text renders an alert for chat-style sinks.
func text(a domain.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", a.URL)
	fmt.Fprintf(&b, "Reason: %s\n", a.Message)

	httpTxt, latencyTxt := "n/a", "n/a"
	if r := a.Details.Response; r != nil {
		httpTxt = fmt.Sprintf("%d", r.StatusCode)
		latencyTxt = fmt.Sprintf("%.0f ms", r.ElapsedTime*1000)
	}
	fmt.Fprintf(&b, "HTTP: %s\nLatency: %s\n", httpTxt, latencyTxt)
	if a.Details.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", a.Details.Error)
	}
	for i, m := range a.Details.Matches {
		if i == maxMatchesInText {
			fmt.Fprintf(&b, "… %d more matches\n", len(a.Details.Matches)-i)
			break
		}
		fmt.Fprintf(&b, "Match: %q in %q\n", m.Match, m.Context)
	}
	fmt.Fprintf(&b, "Checked: %s", a.Time.Format(time.RFC3339))
	return b.String()
}
