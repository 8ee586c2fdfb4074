package lint

import "strings"

// Severity indicates the importance level of a Checkstyle finding.
type Severity int

const (
	// SeverityInfo indicates informational findings.
	SeverityInfo Severity = iota
	// SeverityWarning indicates findings reported at warning level.
	SeverityWarning
	// SeverityError indicates findings reported at error level.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a Checkstyle severity attribute. Unknown values are
// treated as errors.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "ignore":
		return SeverityInfo
	case "warning":
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Issue represents a single finding.
type Issue struct {
	FilePath string   // Path reported by Checkstyle
	Severity Severity // Finding severity level
	Rule     string   // Check class, e.g. com.puppycrawl.tools.checkstyle.checks.whitespace.WhitespaceAroundCheck
	Message  string
	Line     int // 0 for file-level findings
	Column   int
}

// RuleName returns the short check name without package or Check suffix.
func (i Issue) RuleName() string {
	name := i.Rule
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, "Check")
}

// Result contains all findings of one lint pass.
type Result struct {
	Issues      []Issue
	FilesTotal  int // Files present in the report
	ToolVersion string
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.countSeverity(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.countSeverity(SeverityWarning)
}

// InfoCount returns the number of info-level issues.
func (r *Result) InfoCount() int {
	return r.countSeverity(SeverityInfo)
}

// Findings counts every issue regardless of severity. The zero-warning
// policy is enforced against this number.
func (r *Result) Findings() int {
	return len(r.Issues)
}

func (r *Result) countSeverity(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}
