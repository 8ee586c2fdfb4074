package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/metrics"
	"git.home.luguber.info/inful/jarbuilder/internal/notify"
	"git.home.luguber.info/inful/jarbuilder/internal/pipeline"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "JARBUILDER_LOG_LEVEL"

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Build descriptor path" default:"jarbuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run          RunCmd          `cmd:"" help:"Run pipeline tasks (default: build)"`
	Build        BuildCmd        `cmd:"" help:"Compile, package and lint the project"`
	Publish      PublishCmd      `cmd:"" help:"Build and publish to the Maven repository"`
	Lint         LintCmd         `cmd:"" help:"Run Checkstyle and report findings"`
	Init         InitCmd         `cmd:"" help:"Initialize a new build descriptor"`
	Watch        WatchCmd        `cmd:"" help:"Rebuild when sources or the descriptor change"`
	History      HistoryCmd      `cmd:"" help:"Show recent builds from the history database"`
	CheckRelease CheckReleaseCmd `cmd:"" name:"check-release" help:"Check GitHub for a newer release"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := parseLevel(os.Getenv(LogLevelEnv))
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// session bundles a service with the optional integrations enabled in the
// descriptor. Close flushes metrics and releases connections.
type session struct {
	service  *pipeline.Service
	registry *prometheus.Registry
	textfile string
	store    *eventstore.SQLiteStore
	notifier notify.Notifier
}

func newSession(cfg *config.Config, opts ...pipeline.Option) (*session, error) {
	rt := &session{}
	if cfg.Metrics.Textfile != "" {
		rt.registry = prometheus.NewRegistry()
		rt.textfile = cfg.Resolve(cfg.Metrics.Textfile)
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(rt.registry)))
	}
	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Resolve(cfg.History.Path))
		if err != nil {
			return nil, err
		}
		rt.store = store
		opts = append(opts, pipeline.WithEventStore(store))
	}
	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			// A missing broker must not block builds.
			slog.Warn("Publish notifications disabled", logfields.Error(err))
		} else {
			rt.notifier = n
			opts = append(opts, pipeline.WithNotifier(n))
		}
	}
	rt.service = pipeline.NewService(opts...)
	return rt, nil
}

func (rt *session) run(ctx context.Context, cfg *config.Config, targets []string) (*pipeline.Result, error) {
	result, err := rt.service.Run(ctx, pipeline.Request{Config: cfg, Targets: targets})
	if rt.registry != nil {
		if werr := metrics.WriteTextfile(rt.textfile, rt.registry); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(rt.textfile), logfields.Error(werr))
		}
	}
	return result, err
}

func (rt *session) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}
	if rt.notifier != nil {
		_ = rt.notifier.Close()
	}
}

// runTargets loads the descriptor, runs targets and prints a summary.
func runTargets(ctx context.Context, root *CLI, targets []string, out io.Writer) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	rt, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.run(ctx, cfg, targets)
	printResult(out, cfg, result)
	return err
}

// printResult writes a short human readable outcome.
func printResult(w io.Writer, cfg *config.Config, r *pipeline.Result) {
	if r == nil {
		return
	}
	for _, t := range r.Tasks {
		_, _ = fmt.Fprintf(w, "> Task :%s %s\n", t.Name, strings.ToUpper(string(t.Status)))
	}
	if len(r.Artifacts) > 0 {
		base := cfg.Resolve(cfg.Output.Directory)
		_, _ = fmt.Fprintln(w)
		for _, a := range r.Artifacts {
			rel, err := filepath.Rel(base, a.Path)
			if err != nil {
				rel = a.Path
			}
			_, _ = fmt.Fprintf(w, "  %s (%d bytes)\n", rel, a.Bytes)
		}
	}
	if r.Publish != nil {
		_, _ = fmt.Fprintf(w, "\nPublished %s to %s (%d uploads)\n",
			cfg.Project.Group+":"+cfg.Project.Name+":"+cfg.Project.Version, r.Publish.Repository, len(r.Publish.Uploads))
	}

	outcome := "SUCCESSFUL"
	switch r.Status {
	case pipeline.StatusFailed:
		outcome = "FAILED"
	case pipeline.StatusCanceled:
		outcome = "CANCELED"
	}
	_, _ = fmt.Fprintf(w, "\nBUILD %s in %s\n", outcome, r.Duration.Round(time.Millisecond))
}
