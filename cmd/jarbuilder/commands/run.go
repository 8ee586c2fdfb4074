package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/jarbuilder/internal/pipeline"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Targets []string `arg:"" optional:"" help:"Task names (compileJava, jar, shadowJar, sourcesJar, checkstyleMain, build, publish)"`
}

func (r *RunCmd) Run(ctx context.Context, root *CLI) error {
	return runTargets(ctx, root, r.Targets, os.Stdout)
}

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(ctx context.Context, root *CLI) error {
	return runTargets(ctx, root, []string{pipeline.TaskBuild}, os.Stdout)
}

// PublishCmd implements the 'publish' command.
type PublishCmd struct{}

func (p *PublishCmd) Run(ctx context.Context, root *CLI) error {
	return runTargets(ctx, root, []string{pipeline.TaskPublish}, os.Stdout)
}
