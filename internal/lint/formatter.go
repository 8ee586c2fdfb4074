package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats lint results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, maxWarnings int) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, maxWarnings int) error {
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	for _, issue := range result.Issues {
		if err := f.formatIssue(w, issue); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n  %d files checked\n", result.FilesTotal); err != nil {
		return err
	}
	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.InfoCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d info\n", n); err != nil {
			return err
		}
	}

	var final string
	switch {
	case result.Findings() > maxWarnings:
		final = fmt.Sprintf("❌ %d finding%s exceed the limit of %d.", result.Findings(), pluralize(result.Findings()), maxWarnings)
	case result.Findings() > 0:
		final = "⚠️  Findings are within the configured limit."
	default:
		final = "✨ All sources pass checkstyle!"
	}
	_, err := fmt.Fprintf(w, "\n%s\n", final)
	return err
}

func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	location := issue.FilePath
	if issue.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, issue.Line)
		if issue.Column > 0 {
			location = fmt.Sprintf("%s:%d", location, issue.Column)
		}
	}
	_, err := fmt.Fprintf(w, "%s %s\n  %s: %s [%s]\n", icon, location, issue.Severity, issue.Message, issue.RuleName())
	return err
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	MaxWarnings  int         `json:"max_warnings"`
	Passed       bool        `json:"passed"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath string `json:"file_path"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, maxWarnings int) error {
	output := JSONOutput{
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		MaxWarnings:  maxWarnings,
		Passed:       result.Findings() <= maxWarnings,
		Issues:       []JSONIssue{},
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath: issue.FilePath,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Message:  issue.Message,
			Line:     issue.Line,
			Column:   issue.Column,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
