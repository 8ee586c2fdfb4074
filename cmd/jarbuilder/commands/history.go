package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to show"`
	JSON  bool `help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(ctx context.Context, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return h.run(ctx, cfg, os.Stdout)
}

func (h *HistoryCmd) run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.History.Path == "" {
		return errors.ConfigError("history.path is not configured").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.Resolve(cfg.History.Path))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := eventstore.History(ctx, store, h.Limit)
	if err != nil {
		return err
	}

	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tSTATUS\tDURATION\tTARGETS\tARTIFACTS")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%d\n",
			b.BuildID,
			b.StartedAt.Local().Format(time.DateTime),
			b.Status,
			b.Duration.Round(time.Millisecond),
			b.Targets,
			len(b.Artifacts))
	}
	return tw.Flush()
}
