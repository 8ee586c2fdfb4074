package commands

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/pipeline"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Bind(&Global{}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestParse_Run(t *testing.T) {
	cli, kctx := parse(t, "run", "shadowJar", "jar")
	assert.Equal(t, "run <targets>", kctx.Command())
	assert.Equal(t, []string{"shadowJar", "jar"}, cli.Run.Targets)
	assert.Equal(t, "jarbuilder.yaml", filepath.Base(cli.Config))
}

func TestParse_RunWithoutTargets(t *testing.T) {
	cli, kctx := parse(t, "run")
	assert.Equal(t, "run", kctx.Command())
	assert.Empty(t, cli.Run.Targets)
}

func TestParse_CheckRelease(t *testing.T) {
	cli, _ := parse(t, "-c", "other.yaml", "check-release", "--owner", "neziw", "--repo", "ReleaseChecker", "--every", "1h", "--notes")
	assert.Equal(t, "other.yaml", filepath.Base(cli.Config))
	assert.Equal(t, "neziw", cli.CheckRelease.Owner)
	assert.Equal(t, time.Hour, cli.CheckRelease.Every)
	assert.True(t, cli.CheckRelease.Notes)
	assert.Equal(t, "https://api.github.com", cli.CheckRelease.APIURL)
}

func TestParse_LintFormat(t *testing.T) {
	cli, _ := parse(t, "lint", "--format", "json")
	assert.Equal(t, "json", cli.Lint.Format)

	parser, err := kong.New(&CLI{}, kong.Vars{"version": "test"}, kong.Bind(&Global{}))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"lint", "--format", "xml"})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestAfterApply_EnvironmentLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "debug")
	g := &Global{}
	require.NoError(t, (&CLI{}).AfterApply(g))
	require.NotNil(t, g.Logger)
	assert.True(t, g.Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	var out bytes.Buffer

	require.NoError(t, RunInit(&out, path, false))
	assert.Contains(t, out.String(), "initialized successfully")
	_, err := os.Stat(path)
	require.NoError(t, err)

	err = RunInit(&out, path, false)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestPrintResult(t *testing.T) {
	cfg := &config.Config{BaseDir: "/work", Output: config.OutputConfig{Directory: "build"}}
	r := &pipeline.Result{
		Status: pipeline.StatusFailed,
		Tasks: []pipeline.TaskResult{
			{Name: pipeline.TaskCompileJava, Status: pipeline.TaskSuccess},
			{Name: pipeline.TaskJar, Status: pipeline.TaskFailed},
		},
		Artifacts: []pipeline.Artifact{{Task: pipeline.TaskJar, Path: "/work/build/libs/a-1.jar", Bytes: 42}},
		Duration:  1500 * time.Millisecond,
	}
	var out bytes.Buffer
	printResult(&out, cfg, r)

	s := out.String()
	assert.Contains(t, s, "> Task :compileJava SUCCESS")
	assert.Contains(t, s, "> Task :jar FAILED")
	assert.Contains(t, s, filepath.Join("libs", "a-1.jar")+" (42 bytes)")
	assert.Contains(t, s, "BUILD FAILED in 1.5s")

	out.Reset()
	printResult(&out, cfg, nil)
	assert.Empty(t, out.String())
}

func TestHistoryCmd(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{BaseDir: dir, History: config.HistoryConfig{Path: "history.db"}}

	store, err := eventstore.NewSQLiteStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	r := eventstore.NewRecorder(store)
	started, err := eventstore.NewBuildStarted("b-1", eventstore.BuildStartedData{Project: "g:n:1", Targets: []string{"build"}})
	require.NoError(t, err)
	require.NoError(t, r.Record(context.Background(), started))
	completed, err := eventstore.NewBuildCompleted("b-1", eventstore.BuildCompletedData{Status: "success", DurationMS: 1200})
	require.NoError(t, err)
	require.NoError(t, r.Record(context.Background(), completed))
	require.NoError(t, store.Close())

	var out bytes.Buffer
	require.NoError(t, (&HistoryCmd{Limit: 5}).run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "b-1")
	assert.Contains(t, out.String(), "success")

	out.Reset()
	require.NoError(t, (&HistoryCmd{Limit: 5, JSON: true}).run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), `"build_id": "b-1"`)
}

func TestHistoryCmd_NotConfigured(t *testing.T) {
	err := (&HistoryCmd{}).run(context.Background(), &config.Config{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
}

func TestCheckRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/neziw/ReleaseChecker":
			_, _ = w.Write([]byte(`{"id":1,"full_name":"neziw/ReleaseChecker"}`))
		case "/repos/neziw/ReleaseChecker/releases/latest":
			_, _ = w.Write([]byte(`{"id":2,"tag_name":"v1.0.3","html_url":"https://example.test/v1.0.3",` +
				`"body":"## Changes\n\n- faster","published_at":"2025-06-01T10:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cmd := &CheckReleaseCmd{Owner: "neziw", Repo: "ReleaseChecker", Notes: true, APIURL: srv.URL}
	var out bytes.Buffer
	require.NoError(t, cmd.check(context.Background(), &out, "", "1.0.2"))

	s := out.String()
	assert.Contains(t, s, "neziw/ReleaseChecker: latest release v1.0.3")
	assert.Contains(t, s, "A newer version is available: 1.0.2 -> v1.0.3")
	assert.Contains(t, s, "<h2>Changes</h2>")

	out.Reset()
	require.NoError(t, cmd.check(context.Background(), &out, "", "1.0.3"))
	assert.Contains(t, out.String(), "1.0.3 is up to date")
}

func TestCheckRelease_LookupUsesDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("project: {group: g, name: n, version: 2.1.0}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GITHUB_TOKEN=from-file\n"), 0o600))

	token, current := (&CheckReleaseCmd{}).lookup(&CLI{Config: path})
	assert.Equal(t, "from-file", token)
	assert.Equal(t, "2.1.0", current)

	_, current = (&CheckReleaseCmd{Current: "9.9"}).lookup(&CLI{Config: path})
	assert.Equal(t, "9.9", current)
}
