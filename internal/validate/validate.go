// Package validate checks a working env file against the documented key
// surface.
package validate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tsakani-green/envkeep/internal/envfile"
	"github.com/tsakani-green/envkeep/internal/report"
	"github.com/tsakani-green/envkeep/internal/template"
)

// placeholder markers the template writes for secrets. A required secret
// still holding one of these is not deployable.
func isPlaceholder(v string) bool {
	if v == "" {
		return true
	}
	if strings.Contains(v, "CHANGE_ME") {
		return true
	}
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "your-") && strings.HasSuffix(lower, "-here")
}

// File validates f against the registry and returns a report.
func File(f *envfile.File, reg *template.Registry) *report.Report {
	rep := &report.Report{}

	for _, key := range f.DuplicateKeys() {
		rep.Add(report.SeverityError, "duplicate", key, "key appears more than once; the last value wins")
	}

	values := f.Values()

	for _, def := range reg.Keys() {
		v, present := values[def.Name]
		if !present {
			if def.Required {
				rep.Add(report.SeverityError, "missing", def.Name, "required key is not set")
			}
			continue
		}
		if def.Required && def.Secret && isPlaceholder(v) {
			rep.Add(report.SeverityError, "placeholder", def.Name, "required secret still has its placeholder value")
			continue
		}
		if v == "" || isPlaceholder(v) {
			// Optional keys may legitimately stay empty or templated.
			continue
		}
		if msg := checkKind(def.Kind, v); msg != "" {
			rep.Add(report.SeverityError, "value", def.Name, msg)
		}
	}

	for _, key := range f.Keys() {
		if _, known := reg.Lookup(key); !known {
			rep.Add(report.SeverityWarning, "unknown", key, "key is not part of the documented surface")
		}
	}

	return rep
}

func checkKind(kind template.Kind, v string) string {
	switch kind {
	case template.KindInt:
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Sprintf("expected an integer, got %q", v)
		}
	case template.KindFloat:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Sprintf("expected a number, got %q", v)
		}
	case template.KindBool:
		switch strings.ToLower(v) {
		case "true", "false", "1", "0", "yes", "no":
		default:
			return fmt.Sprintf("expected a boolean, got %q", v)
		}
	case template.KindURL:
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Sprintf("expected an absolute URL, got %q", v)
		}
	case template.KindMongoURI:
		if !strings.HasPrefix(v, "mongodb://") && !strings.HasPrefix(v, "mongodb+srv://") {
			return fmt.Sprintf("expected a mongodb:// or mongodb+srv:// URI, got %q", v)
		}
	case template.KindOrigins:
		if msg := checkOrigins(v); msg != "" {
			return msg
		}
	case template.KindHost:
		if strings.ContainsAny(v, " /") {
			return fmt.Sprintf("expected a bare hostname, got %q", v)
		}
	}
	return ""
}

func checkOrigins(v string) string {
	any := false
	for _, o := range strings.Split(v, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		any = true
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" {
			return fmt.Sprintf("origin %q must be scheme://host[:port] with no path", o)
		}
	}
	if !any {
		return "origins list is empty"
	}
	return ""
}

// IsPlaceholder is exported for the secret scanner, which must never flag
// template markers as leaks.
func IsPlaceholder(v string) bool {
	return isPlaceholder(v)
}
