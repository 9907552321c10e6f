// Package report holds the finding/report types shared by validation,
// secret scanning, and deployment preflight.
package report

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one issue discovered by a check.
type Finding struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Key      string   `json:"key,omitempty"`
	Message  string   `json:"message"`
}

// Report is an ordered list of findings.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Add appends a finding.
func (r *Report) Add(sev Severity, check, key, message string) {
	r.Findings = append(r.Findings, Finding{Severity: sev, Check: check, Key: key, Message: message})
}

// Errors returns the number of error-level findings.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning-level findings.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// OK reports whether the report has no errors. With strict set, warnings
// also fail.
func (r *Report) OK(strict bool) bool {
	if r.Errors() > 0 {
		return false
	}
	return !strict || r.Warnings() == 0
}
