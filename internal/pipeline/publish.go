package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/jarbuilder/internal/credentials"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/maven"
	"git.home.luguber.info/inful/jarbuilder/internal/notify"
	"git.home.luguber.info/inful/jarbuilder/internal/observability"
	"git.home.luguber.info/inful/jarbuilder/internal/workspace"
)

func (r *run) resolver() (*credentials.Resolver, error) {
	if r.svc.credentials != nil {
		return r.svc.credentials, nil
	}
	store, err := credentials.LoadEnvFile(r.cfg.Resolve(r.cfg.Publishing.EnvFile))
	if err != nil {
		return nil, err
	}
	return credentials.NewResolver(store), nil
}

// publish uploads the bundle as the main artifact and the sources jar with
// the sources classifier, then notifies subscribers.
func (r *run) publish(ctx context.Context) error {
	pub := r.cfg.Publishing
	resolver, err := r.resolver()
	if err != nil {
		return err
	}
	creds, err := resolver.Pair(pub.UsernameKey, pub.PasswordKey)
	if err != nil {
		return err
	}

	coord := r.coordinate()
	opts := maven.POMOptions{
		Name:        r.cfg.Project.Name,
		Description: r.cfg.Project.Description,
		URL:         r.cfg.Project.URL,
		License:     r.cfg.Project.License,
		BuildID:     r.result.BuildID,
	}
	if r.git != nil {
		opts.GitCommit = r.git.Commit
		opts.GitBranch = r.git.Branch
	}
	pom, err := maven.NewPOM(coord, opts).Marshal()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to render POM").Build()
	}

	staging := workspace.NewManager(r.layout.Tmp())
	if err := staging.Create(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create staging directory").Build()
	}
	defer func() {
		if err := staging.Cleanup(); err != nil {
			observability.WarnContext(ctx, "Failed to clean staging directory", logfields.Error(err))
		}
	}()
	pomPath := filepath.Join(staging.GetPath(), coord.FileName("", "pom"))
	if err := os.WriteFile(pomPath, pom, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stage POM").Build()
	}
	observability.DebugContext(ctx, "Staged POM", logfields.Path(pomPath))

	artifacts := []maven.Artifact{{File: r.layout.Lib(ShadowJarName(r.cfg))}}
	if r.cfg.Sources.IsEnabled() {
		artifacts = append(artifacts, maven.Artifact{File: r.layout.Lib(SourcesJarName(r.cfg)), Classifier: "sources"})
	}

	observability.InfoContext(ctx, "Publishing",
		logfields.Coordinate(coord.String()),
		logfields.Repository(pub.Name),
		logfields.URL(pub.URL))
	publisher := maven.NewPublisher(pub.URL, creds, pub.Timeout)
	report, err := publisher.Publish(ctx, coord, pom, artifacts)
	r.result.Publish = report
	if report != nil {
		for range report.Uploads {
			r.svc.recorder.IncUpload(true)
		}
	}
	if err != nil {
		r.svc.recorder.IncUpload(false)
		return err
	}

	r.svc.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewArtifactPublished(r.result.BuildID, eventstore.ArtifactPublishedData{
			Coordinate: coord.String(),
			Repository: pub.URL,
			Uploads:    len(report.Uploads),
		})
	})
	observability.InfoContext(ctx, "Published",
		logfields.Coordinate(coord.String()),
		logfields.Count(len(report.Uploads)))

	event := &notify.PublishedEvent{
		BuildID:    r.result.BuildID,
		Coordinate: coord.String(),
		Repository: pub.URL,
		Timestamp:  r.svc.now().UTC(),
	}
	for _, a := range artifacts {
		event.Artifacts = append(event.Artifacts, filepath.Base(a.File))
	}
	if r.git != nil {
		event.GitCommit = r.git.Commit
	}
	// Notification failures do not undo a completed publish.
	if err := r.svc.notifier.NotifyPublished(ctx, event); err != nil {
		observability.WarnContext(ctx, "Failed to send publish notification", logfields.Error(err))
	}
	return nil
}
