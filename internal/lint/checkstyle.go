package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/process"
)

// ToolURL returns the release download URL of the all-in-one Checkstyle jar.
func ToolURL(version string) string {
	return fmt.Sprintf("https://github.com/checkstyle/checkstyle/releases/download/checkstyle-%s/checkstyle-%s-all.jar", version, version)
}

// ToolFileName returns the cache file name of the Checkstyle jar.
func ToolFileName(version string) string {
	return fmt.Sprintf("checkstyle-%s-all.jar", version)
}

// Options configures a Checkstyle run.
type Options struct {
	Java       string
	Jar        string
	ConfigFile string
	ReportPath string
	Sources    []string
	// MaxWarnings is the number of findings tolerated before failing.
	MaxWarnings int
}

// Checkstyle runs the Checkstyle command line tool.
type Checkstyle struct {
	runner process.Runner
}

// NewCheckstyle creates a runner. A nil runner uses process.ExecRunner.
func NewCheckstyle(runner process.Runner) *Checkstyle {
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &Checkstyle{runner: runner}
}

// Run lints the source directories and parses the XML report. The returned
// result is nil only when the tool could not produce a report. Threshold
// enforcement is left to Enforce.
func (c *Checkstyle) Run(ctx context.Context, opts Options) (*Result, error) {
	if _, err := os.Stat(opts.ConfigFile); err != nil {
		return nil, errors.LintError("checkstyle configuration not found").
			WithContext("config_file", opts.ConfigFile).
			Build()
	}

	var sources []string
	for _, s := range opts.Sources {
		if _, err := os.Stat(s); err == nil {
			sources = append(sources, s)
		}
	}
	if len(sources) == 0 {
		slog.Info("No sources to lint")
		return &Result{Issues: []Issue{}}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.ReportPath), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create report directory").Build()
	}
	_ = os.Remove(opts.ReportPath)

	args := []string{"-jar", opts.Jar, "-c", opts.ConfigFile, "-f", "xml", "-o", opts.ReportPath}
	args = append(args, sources...)
	res, err := c.runner.Run(ctx, process.Command{Name: opts.Java, Args: args})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryLint, "failed to run checkstyle").
			Fatal().
			WithContext("java", opts.Java).
			Build()
	}

	// Checkstyle exits with the number of error-level findings, so a
	// non-zero code is only fatal when no report was written.
	result, perr := ParseReportFile(opts.ReportPath)
	if perr != nil {
		return nil, errors.WrapError(perr, errors.CategoryLint, "checkstyle did not produce a report").
			Fatal().
			WithContext("exit_code", res.ExitCode).
			WithContext("output", res.Combined()).
			Build()
	}

	slog.Info("Checkstyle finished",
		logfields.Count(result.Findings()),
		logfields.Path(opts.ReportPath),
		slog.Int("files", result.FilesTotal))
	for _, issue := range result.Issues {
		slog.Debug(issue.Message,
			logfields.Path(issue.FilePath),
			slog.Int("line", issue.Line),
			slog.String("rule", issue.RuleName()))
	}
	return result, nil
}

// Enforce fails when result has more findings than maxWarnings.
func Enforce(result *Result, maxWarnings int) error {
	if result == nil || result.Findings() <= maxWarnings {
		return nil
	}
	return errors.LintError(fmt.Sprintf("checkstyle found %d warning(s), more than the allowed %d", result.Findings(), maxWarnings)).
		WithContext("findings", result.Findings()).
		WithContext("max_warnings", maxWarnings).
		Build()
}
