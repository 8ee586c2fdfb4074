package compile

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the javac diagnostic level.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindNote    Kind = "note"
)

// CategoryDeprecation marks diagnostics about deprecated API usage.
const CategoryDeprecation = "deprecation"

// Diagnostic is one compiler message.
type Diagnostic struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Kind     Kind   `json:"kind"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

var (
	diagnosticLine = regexp.MustCompile(`^(.+?):(\d+): (error|warning): (?:\[([\w-]+)\] )?(.*)$`)
	noteLine       = regexp.MustCompile(`^Note: (.*)$`)
)

// ParseDiagnostics extracts diagnostics from javac output. Continuation
// lines (source excerpts and carets) are ignored.
func ParseDiagnostics(output string) []Diagnostic {
	var out []Diagnostic
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := diagnosticLine.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			out = append(out, Diagnostic{
				File:     m[1],
				Line:     n,
				Kind:     Kind(m[3]),
				Category: m[4],
				Message:  m[5],
			})
			continue
		}
		if m := noteLine.FindStringSubmatch(line); m != nil {
			d := Diagnostic{Kind: KindNote, Message: m[1]}
			// Without -Xlint:deprecation javac only emits a summary note.
			if strings.Contains(m[1], "deprecated API") {
				d.Category = CategoryDeprecation
			}
			out = append(out, d)
		}
	}
	return out
}

// Report is the outcome of one compilation.
type Report struct {
	Sources     int          `json:"sources"`
	Resources   int          `json:"resources"`
	ExitCode    int          `json:"exit_code"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func (r *Report) count(match func(Diagnostic) bool) int {
	n := 0
	for _, d := range r.Diagnostics {
		if match(d) {
			n++
		}
	}
	return n
}

// Errors returns the number of error diagnostics.
func (r *Report) Errors() int {
	return r.count(func(d Diagnostic) bool { return d.Kind == KindError })
}

// Warnings returns the number of warning diagnostics.
func (r *Report) Warnings() int {
	return r.count(func(d Diagnostic) bool { return d.Kind == KindWarning })
}

// Deprecations returns the number of deprecation warnings and notes.
func (r *Report) Deprecations() int {
	return r.count(func(d Diagnostic) bool { return d.Category == CategoryDeprecation })
}
