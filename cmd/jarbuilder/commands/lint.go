package commands

import (
	"context"
	"io"
	"os"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/lint"
	"git.home.luguber.info/inful/jarbuilder/internal/pipeline"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (l *LintCmd) Run(ctx context.Context, root *CLI) error {
	return l.run(ctx, root, os.Stdout)
}

func (l *LintCmd) run(ctx context.Context, root *CLI, out io.Writer) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if !cfg.Lint.IsEnabled() {
		return errors.ValidationError("lint is disabled in the build descriptor").Build()
	}
	rt, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, runErr := rt.run(ctx, cfg, []string{pipeline.TaskCheckstyleMain})
	if result == nil || result.Lint == nil {
		printResult(out, cfg, result)
		return runErr
	}
	if err := lint.NewFormatter(l.Format).Format(out, result.Lint, cfg.Lint.MaxWarnings); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to format lint output").Build()
	}
	return runErr
}
