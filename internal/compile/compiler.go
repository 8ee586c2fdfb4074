// Package compile runs javac over the project sources and copies resources
// into the classes directory.
package compile

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/process"
)

// Options configures a compilation.
type Options struct {
	Javac             string
	Release           string
	Encoding          string
	Args              []string
	SourceDir         string
	ResourceDir       string
	ClassesDir        string
	Classpath         []string
	FailOnDeprecation bool
}

// Compiler invokes javac through a process.Runner.
type Compiler struct {
	runner process.Runner
}

// New creates a compiler. A nil runner uses process.ExecRunner.
func New(runner process.Runner) *Compiler {
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &Compiler{runner: runner}
}

// Compile cleans ClassesDir, compiles every .java file below SourceDir into
// it and copies resources. A source tree without .java files is not an error.
func (c *Compiler) Compile(ctx context.Context, opts Options) (*Report, error) {
	sources, err := collectSources(opts.SourceDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list sources").
			WithContext("source_dir", opts.SourceDir).
			Build()
	}

	if err := os.RemoveAll(opts.ClassesDir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean classes directory").Build()
	}
	if err := os.MkdirAll(opts.ClassesDir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create classes directory").Build()
	}

	report := &Report{Sources: len(sources)}
	if len(sources) == 0 {
		slog.Info("No Java sources found", logfields.Path(opts.SourceDir))
	} else {
		res, err := c.runner.Run(ctx, process.Command{Name: opts.Javac, Args: javacArgs(opts, sources)})
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryCompile, "failed to run javac").
				Fatal().
				WithContext("javac", opts.Javac).
				Build()
		}
		report.ExitCode = res.ExitCode
		report.Diagnostics = ParseDiagnostics(res.Combined())

		for _, d := range report.Diagnostics {
			logDiagnostic(d)
		}

		if res.ExitCode != 0 {
			return report, errors.CompileError("compilation failed").
				WithContext("exit_code", res.ExitCode).
				WithContext("errors", report.Errors()).
				WithContext("output", excerpt(res.Combined())).
				Build()
		}
		if opts.FailOnDeprecation && report.Deprecations() > 0 {
			return report, errors.CompileError("deprecation warnings are treated as errors").
				WithContext("deprecations", report.Deprecations()).
				Build()
		}
	}

	copied, err := copyTree(opts.ResourceDir, opts.ClassesDir)
	if err != nil {
		return report, errors.WrapError(err, errors.CategoryFileSystem, "failed to copy resources").
			WithContext("resource_dir", opts.ResourceDir).
			Build()
	}
	report.Resources = copied
	return report, nil
}

func javacArgs(opts Options, sources []string) []string {
	args := []string{"-d", opts.ClassesDir}
	if opts.Release != "" {
		args = append(args, "--release", opts.Release)
	}
	if opts.Encoding != "" {
		args = append(args, "-encoding", opts.Encoding)
	}
	if len(opts.Classpath) > 0 {
		args = append(args, "-classpath", strings.Join(opts.Classpath, string(filepath.ListSeparator)))
	}
	args = append(args, opts.Args...)
	return append(args, sources...)
}

func logDiagnostic(d Diagnostic) {
	attrs := []any{logfields.Path(d.File), slog.Int("line", d.Line), slog.String("category", d.Category)}
	switch d.Kind {
	case KindError:
		slog.Error(d.Message, attrs...)
	case KindWarning:
		slog.Warn(d.Message, attrs...)
	default:
		slog.Info(d.Message, attrs...)
	}
}

func excerpt(s string) string {
	const limit = 2000
	s = strings.TrimSpace(s)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func collectSources(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".java") {
			out = append(out, p)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// copyTree copies regular files from src into dst, preserving relative
// paths. A missing src copies nothing.
func copyTree(src, dst string) (int, error) {
	if src == "" {
		return 0, nil
	}
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, nil
	}
	copied := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(dst, rel)); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src) // #nosec G304 -- paths come from the project tree
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.Create(dst) // #nosec G304 -- destination is inside the output dir
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
