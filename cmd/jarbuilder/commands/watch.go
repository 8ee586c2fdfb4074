package commands

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Targets []string `arg:"" optional:"" help:"Task names to run on each change (default: build)"`
}

func (w *WatchCmd) Run(ctx context.Context, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	watcher, err := watch.New(watch.Options{
		Dirs:     []string{cfg.Resolve(cfg.Compile.SourceDir), cfg.Resolve(cfg.Compile.ResourceDir)},
		Files:    []string{root.Config, cfg.Resolve(cfg.Lint.ConfigFile)},
		Ignore:   []string{cfg.Resolve(cfg.Output.Directory), cfg.Resolve(cfg.Output.CacheDir)},
		Debounce: cfg.Watch.Debounce,
	})
	if err != nil {
		return err
	}

	// Each run reloads the descriptor so edits apply without a restart.
	rebuild := func(ctx context.Context) {
		if err := runTargets(ctx, root, w.Targets, os.Stdout); err != nil {
			slog.Error("Build failed, waiting for changes", logfields.Error(err))
		}
	}
	rebuild(ctx)
	slog.Info("Watching for changes", logfields.Path(cfg.BaseDir))
	return watcher.Run(ctx, rebuild)
}
