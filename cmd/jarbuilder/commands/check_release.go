package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/credentials"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/releasecheck"
	"git.home.luguber.info/inful/jarbuilder/internal/scheduler"
)

// GitHubTokenKey is the credential key holding the GitHub API token.
const GitHubTokenKey = "GITHUB_TOKEN"

// CheckReleaseCmd implements the 'check-release' command.
type CheckReleaseCmd struct {
	Owner   string        `required:"" help:"Repository owner"`
	Repo    string        `required:"" help:"Repository name"`
	Current string        `help:"Version to compare against (default: project version from the descriptor)"`
	Every   time.Duration `help:"Repeat the check at this interval until interrupted"`
	Notes   bool          `help:"Print the release notes rendered as HTML"`
	APIURL  string        `name:"api-url" hidden:"" default:"https://api.github.com"`
}

func (c *CheckReleaseCmd) Run(ctx context.Context, root *CLI) error {
	token, current := c.lookup(root)
	if c.Every <= 0 {
		return c.check(ctx, os.Stdout, token, current)
	}

	s, err := scheduler.New()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.ScheduleEvery(ctx, "check-release", c.Every, func(ctx context.Context) {
		if err := c.check(ctx, os.Stdout, token, current); err != nil {
			slog.Error("Release check failed", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.Start()
	<-ctx.Done()
	return s.Stop()
}

// lookup resolves the token and the current version. The descriptor is
// optional for this command.
func (c *CheckReleaseCmd) lookup(root *CLI) (token, current string) {
	current = c.Current
	envFile := filepath.Join(filepath.Dir(root.Config), config.DefaultEnvFile)
	if cfg, err := config.Load(root.Config); err == nil {
		envFile = cfg.Resolve(cfg.Publishing.EnvFile)
		if current == "" {
			current = cfg.Project.Version
		}
	} else {
		slog.Debug("No build descriptor for release check", logfields.Error(err))
	}

	store, err := credentials.LoadEnvFile(envFile)
	if err != nil {
		slog.Warn("Ignoring unreadable env file", logfields.Path(envFile), logfields.Error(err))
	}
	return credentials.NewResolver(store).Get(GitHubTokenKey), current
}

// check runs one lookup with a fresh checker so periodic runs observe new
// releases.
func (c *CheckReleaseCmd) check(ctx context.Context, out io.Writer, token, current string) error {
	checker := releasecheck.New(c.Owner, c.Repo, token)
	checker.APIURL = c.APIURL

	repo, err := checker.RepositoryData(ctx)
	if err != nil {
		return err
	}
	release, err := checker.LatestRelease(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s: latest release %s (published %s)\n",
		repo.FullName, release.TagName, release.PublishedAt.Format(time.RFC3339))

	if current != "" {
		newer, err := checker.IsNewerVersionAvailable(ctx, current)
		if err != nil {
			return err
		}
		if newer {
			_, _ = fmt.Fprintf(out, "A newer version is available: %s -> %s\n  %s\n", current, release.TagName, release.HTMLURL)
		} else {
			_, _ = fmt.Fprintf(out, "%s is up to date\n", current)
		}
	}

	if c.Notes && release.Body != "" {
		html, err := releasecheck.RenderNotes(release.Body)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to render release notes").Build()
		}
		_, _ = fmt.Fprintln(out)
		_, _ = io.WriteString(out, html)
	}
	return nil
}
