package lint

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
)

type xmlReport struct {
	XMLName xml.Name  `xml:"checkstyle"`
	Version string    `xml:"version,attr"`
	Files   []xmlFile `xml:"file"`
}

type xmlFile struct {
	Name   string     `xml:"name,attr"`
	Errors []xmlError `xml:"error"`
}

type xmlError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

// ParseReport decodes a Checkstyle XML report. Issues are ordered by file,
// line and column.
func ParseReport(r io.Reader) (*Result, error) {
	var rep xmlReport
	if err := xml.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode checkstyle report: %w", err)
	}

	result := &Result{Issues: []Issue{}, FilesTotal: len(rep.Files), ToolVersion: rep.Version}
	for _, f := range rep.Files {
		for _, e := range f.Errors {
			result.Issues = append(result.Issues, Issue{
				FilePath: f.Name,
				Severity: ParseSeverity(e.Severity),
				Rule:     e.Source,
				Message:  e.Message,
				Line:     e.Line,
				Column:   e.Column,
			})
		}
	}
	sort.SliceStable(result.Issues, func(i, j int) bool {
		a, b := result.Issues[i], result.Issues[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return result, nil
}

// ParseReportFile reads and decodes the report at path.
func ParseReportFile(path string) (*Result, error) {
	f, err := os.Open(path) // #nosec G304 -- report path is inside the output directory
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseReport(f)
}
