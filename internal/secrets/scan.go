// Package secrets flags env values that look like live credentials. Committed
// env files must hold placeholders only; anything that looks real needs
// rotation, not a rewrite.
package secrets

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/tsakani-green/envkeep/internal/envfile"
	"github.com/tsakani-green/envkeep/internal/report"
	"github.com/tsakani-green/envkeep/internal/template"
	"github.com/tsakani-green/envkeep/internal/validate"
)

// Prefixes that identify real provider credentials regardless of entropy.
var livePrefixes = []string{
	"AKIA",    // AWS access key ID
	"sk-",     // OpenAI-style secret key
	"sk_live", // Stripe live key
	"AIza",    // Google API key
	"ghp_",    // GitHub personal access token
	"xoxb-",   // Slack bot token
}

const (
	entropyThreshold = 3.5
	minSecretLength  = 20
)

// Scan inspects every entry of f and reports values that look like live
// credentials.
func Scan(f *envfile.File, reg *template.Registry) *report.Report {
	rep := &report.Report{}
	for key, value := range f.Values() {
		if value == "" || validate.IsPlaceholder(value) {
			continue
		}
		if msg := inspect(key, value, reg); msg != "" {
			rep.Add(report.SeverityError, "leak", key, msg)
		}
	}
	return rep
}

func inspect(key, value string, reg *template.Registry) string {
	if user := uriUserinfo(value); user != "" && !validate.IsPlaceholder(user) {
		return "connection string embeds credentials; move them out and rotate"
	}

	for _, p := range livePrefixes {
		if strings.HasPrefix(value, p) {
			return fmt.Sprintf("value has live credential prefix %q; rotate it", p)
		}
	}

	// High-entropy values in keys the template marks secret look like the
	// real thing rather than a placeholder someone forgot to fill.
	if reg.IsSecret(key) && len(value) >= minSecretLength && shannon(value) >= entropyThreshold {
		return "value looks like a live secret; keep it out of version control and rotate"
	}
	return ""
}

// uriUserinfo returns the userinfo portion of a URL-shaped value, if any.
func uriUserinfo(v string) string {
	if !strings.Contains(v, "://") {
		return ""
	}
	u, err := url.Parse(v)
	if err != nil || u.User == nil {
		return ""
	}
	if _, hasPass := u.User.Password(); !hasPass && u.User.Username() == "" {
		return ""
	}
	return u.User.String()
}

// shannon computes bits of entropy per character.
func shannon(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]float64)
	for _, r := range s {
		freq[r]++
	}
	n := float64(len([]rune(s)))
	e := 0.0
	for _, c := range freq {
		p := c / n
		e -= p * math.Log2(p)
	}
	return e
}
