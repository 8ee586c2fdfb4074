package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/jarbuilder/internal/archive"
	"git.home.luguber.info/inful/jarbuilder/internal/compile"
	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/deps"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/git"
	"git.home.luguber.info/inful/jarbuilder/internal/lint"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/maven"
	"git.home.luguber.info/inful/jarbuilder/internal/observability"
	"git.home.luguber.info/inful/jarbuilder/internal/retry"
	"git.home.luguber.info/inful/jarbuilder/internal/version"
	"git.home.luguber.info/inful/jarbuilder/internal/workspace"
)

// Task names.
const (
	TaskCompileJava    = "compileJava"
	TaskJar            = "jar"
	TaskShadowJar      = "shadowJar"
	TaskSourcesJar     = "sourcesJar"
	TaskCheckstyleMain = "checkstyleMain"
	TaskBuild          = "build"
	TaskPublish        = "publish"
)

// checkstyleReport is the report file name below reports/checkstyle.
const checkstyleReport = "main.xml"

// run is the state of a single invocation.
type run struct {
	svc    *Service
	cfg    *config.Config
	layout workspace.Layout
	git    *git.Info
	result *Result

	fetcher  *deps.Fetcher
	depJars  []string
	resolved bool
}

func (r *run) graph() (*Graph, error) {
	return NewGraph(
		Task{Name: TaskCompileJava, Description: "Compile Java sources", Run: r.compileJava},
		Task{Name: TaskJar, Description: "Assemble the plain jar", DependsOn: []string{TaskCompileJava}, Run: r.jar},
		Task{Name: TaskShadowJar, Description: "Assemble the bundle jar", DependsOn: []string{TaskCompileJava}, Run: r.shadowJar},
		Task{Name: TaskSourcesJar, Description: "Assemble the sources jar", DependsOn: []string{TaskCompileJava}, Run: r.sourcesJar},
		Task{Name: TaskCheckstyleMain, Description: "Run Checkstyle", DependsOn: []string{TaskCompileJava}, Run: r.checkstyleMain},
		Task{
			Name:        TaskBuild,
			Description: "Assemble and check the project",
			DependsOn:   []string{TaskShadowJar, TaskJar, TaskSourcesJar, TaskCheckstyleMain},
			Run:         r.build,
		},
		Task{Name: TaskPublish, Description: "Publish to the Maven repository", DependsOn: []string{TaskBuild}, Run: r.publish},
	)
}

func (r *run) deps() *deps.Fetcher {
	if r.fetcher == nil {
		r.fetcher = deps.NewFetcher(r.cfg.Repositories, r.cfg.Resolve(r.cfg.Output.CacheDir), retry.FromConfig(r.cfg.Retry))
	}
	return r.fetcher
}

// dependencies resolves the declared jars once per run.
func (r *run) dependencies(ctx context.Context) ([]string, error) {
	if r.resolved {
		return r.depJars, nil
	}
	f := r.deps()
	for _, dep := range r.cfg.Dependencies {
		if dep.Coordinate == "" {
			continue
		}
		if c, err := maven.ParseCoordinate(dep.Coordinate); err == nil {
			_, statErr := os.Stat(f.CachePath(c))
			r.svc.recorder.IncDownload(statErr == nil)
		}
	}
	jars, err := f.ResolveAll(ctx, r.cfg)
	if err != nil {
		return nil, err
	}
	r.depJars = jars
	r.resolved = true
	return jars, nil
}

func (r *run) manifest() *archive.Manifest {
	m := archive.NewManifest(version.CreatedBy())
	m.Set("Implementation-Title", r.cfg.Project.Name)
	m.Set("Implementation-Version", r.cfg.Project.Version)
	m.Set("Implementation-Vendor", r.cfg.Project.Group)
	if r.git != nil {
		m.Set("Git-Commit", r.git.Commit)
		m.Set("Git-Branch", r.git.Branch)
	}
	return m
}

func (r *run) coordinate() maven.Coordinate {
	p := r.cfg.Project
	return maven.Coordinate{Group: p.Group, Artifact: p.Name, Version: p.Version}
}

// PlainJarName is the file name of the unshaded jar.
func PlainJarName(cfg *config.Config) string {
	return fmt.Sprintf("%s-%s.jar", cfg.Project.Name, cfg.Project.Version)
}

// SourcesJarName is the file name of the sources jar.
func SourcesJarName(cfg *config.Config) string {
	return fmt.Sprintf("%s-%s-sources.jar", cfg.Project.Name, cfg.Project.Version)
}

// ShadowJarName is the file name of the bundle jar.
func ShadowJarName(cfg *config.Config) string {
	return cfg.ExpandTemplate(cfg.Shadow.FileName)
}

func (r *run) compileJava(ctx context.Context) error {
	jars, err := r.dependencies(ctx)
	if err != nil {
		return err
	}
	c := r.cfg.Compile
	report, err := compile.New(r.svc.runner).Compile(ctx, compile.Options{
		Javac:             c.Javac,
		Release:           c.Release,
		Encoding:          c.Encoding,
		Args:              c.Args,
		SourceDir:         r.cfg.Resolve(c.SourceDir),
		ResourceDir:       r.cfg.Resolve(c.ResourceDir),
		ClassesDir:        r.layout.Classes(),
		Classpath:         jars,
		FailOnDeprecation: c.FailsOnDeprecation(),
	})
	r.result.Compile = report
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "Compiled sources",
		logfields.Count(report.Sources),
		slog.Int("resources", report.Resources),
		slog.Int("warnings", report.Warnings()))
	return nil
}

func (r *run) jar(ctx context.Context) error {
	j := archive.NewJar(r.manifest())
	if _, err := j.AddDir(r.layout.Classes()); err != nil {
		return errors.WrapError(err, errors.CategoryPackage, "failed to read classes").Build()
	}
	return r.write(ctx, TaskJar, j, PlainJarName(r.cfg))
}

func (r *run) shadowJar(ctx context.Context) error {
	filter, err := archive.NewFilter(r.cfg.Shadow.Excludes)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid shadow exclude pattern").Build()
	}
	jars, err := r.dependencies(ctx)
	if err != nil {
		return err
	}
	bundler := archive.NewBundler(archive.BundleOptions{
		Filter:            filter,
		MergeServiceFiles: r.cfg.Shadow.MergesServiceFiles(),
	})
	j, report, err := bundler.Bundle(r.manifest(), r.layout.Classes(), jars)
	if err != nil {
		return errors.WrapError(err, errors.CategoryPackage, "failed to bundle dependencies").Build()
	}
	r.result.Bundle = report
	observability.InfoContext(ctx, "Bundled dependencies",
		logfields.Count(report.Entries),
		slog.Int("inputs", report.Inputs),
		slog.Int("excluded", report.Excluded),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("service_files", report.ServiceFiles))
	return r.write(ctx, TaskShadowJar, j, ShadowJarName(r.cfg))
}

func (r *run) sourcesJar(ctx context.Context) error {
	if !r.cfg.Sources.IsEnabled() {
		return errSkipped
	}
	enc, err := archive.NewSourceEncoder(r.cfg.Compile.Encoding)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "unsupported source encoding").
			WithContext("encoding", r.cfg.Compile.Encoding).
			Build()
	}
	j, report, err := archive.BuildSources(r.manifest(), enc,
		r.cfg.Resolve(r.cfg.Compile.SourceDir),
		r.cfg.Resolve(r.cfg.Compile.ResourceDir))
	if err != nil {
		return errors.WrapError(err, errors.CategoryPackage, "failed to collect sources").Build()
	}
	r.result.Sources = report
	if report.Transcoded > 0 {
		observability.InfoContext(ctx, "Transcoded sources to UTF-8", logfields.Count(report.Transcoded))
	}
	return r.write(ctx, TaskSourcesJar, j, SourcesJarName(r.cfg))
}

func (r *run) checkstyleMain(ctx context.Context) error {
	l := r.cfg.Lint
	if !l.IsEnabled() {
		return errSkipped
	}
	jar, err := r.checkstyleJar(ctx)
	if err != nil {
		return err
	}
	result, err := lint.NewCheckstyle(r.svc.runner).Run(ctx, lint.Options{
		Java:        l.Java,
		Jar:         jar,
		ConfigFile:  r.cfg.Resolve(l.ConfigFile),
		ReportPath:  r.layout.Report("checkstyle", checkstyleReport),
		Sources:     []string{r.cfg.Resolve(r.cfg.Compile.SourceDir)},
		MaxWarnings: l.MaxWarnings,
	})
	r.result.Lint = result
	if err != nil {
		return err
	}
	return lint.Enforce(result, l.MaxWarnings)
}

// checkstyleJar returns the configured tool jar or fetches the release jar
// into the cache.
func (r *run) checkstyleJar(ctx context.Context) (string, error) {
	if r.cfg.Lint.Jar != "" {
		p := r.cfg.Resolve(r.cfg.Lint.Jar)
		if _, err := os.Stat(p); err != nil {
			return "", errors.NotFoundError("checkstyle jar not found").WithContext("path", p).Build()
		}
		return p, nil
	}
	v := r.cfg.Lint.ToolVersion
	dest := filepath.Join(r.cfg.Resolve(r.cfg.Output.CacheDir), "tools", lint.ToolFileName(v))
	if err := r.deps().FetchURL(ctx, lint.ToolURL(v), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (r *run) build(ctx context.Context) error {
	for _, a := range r.result.Artifacts {
		observability.InfoContext(ctx, "Artifact", logfields.Artifact(filepath.Base(a.Path)), slog.Int64("bytes", a.Bytes))
	}
	return nil
}

// write stores j in libs and records the artifact.
func (r *run) write(ctx context.Context, task string, j *archive.Jar, fileName string) error {
	dest := r.layout.Lib(fileName)
	if err := j.WriteFile(dest); err != nil {
		return errors.WrapError(err, errors.CategoryPackage, "failed to write jar").
			WithContext("path", dest).
			Build()
	}
	// #nosec G304 -- dest is inside the output directory
	data, err := os.ReadFile(dest)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read jar").Build()
	}
	a := Artifact{
		Task:   task,
		Path:   dest,
		Bytes:  int64(len(data)),
		SHA256: maven.Checksum("sha256", data),
	}
	r.result.Artifacts = append(r.result.Artifacts, a)
	r.svc.recorder.ObserveArtifactSize(task, a.Bytes)
	r.svc.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewArtifactProduced(r.result.BuildID, eventstore.ArtifactProducedData{
			Task:   task,
			Path:   dest,
			Bytes:  a.Bytes,
			SHA256: a.SHA256,
		})
	})
	observability.InfoContext(ctx, "Wrote jar",
		logfields.Path(dest),
		logfields.Count(j.Len()),
		slog.Int64("bytes", a.Bytes))
	return nil
}
