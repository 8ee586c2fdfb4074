package config

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

// ValidateConfig validates the complete descriptor.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateProject(); err != nil {
		return err
	}
	if err := cv.validateDependencies(); err != nil {
		return err
	}
	if err := cv.validateRepositories(); err != nil {
		return err
	}
	if err := cv.validatePublishing(); err != nil {
		return err
	}
	return cv.validateShadow()
}

func (cv *configurationValidator) validateProject() error {
	p := cv.config.Project
	required := []struct{ field, value string }{
		{"group", p.Group},
		{"name", p.Name},
		{"version", p.Version},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.ValidationError(fmt.Sprintf("project.%s is required", r.field)).Build()
		}
	}
	// All three end up in file names and repository layout paths.
	for _, r := range required {
		if strings.ContainsAny(r.value, `/\`) {
			return errors.ValidationError(fmt.Sprintf("project.%s must not contain path separators", r.field)).
				WithContext(r.field, r.value).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateDependencies() error {
	for i, dep := range cv.config.Dependencies {
		hasCoord := dep.Coordinate != ""
		hasPath := dep.Path != ""
		if hasCoord == hasPath {
			return errors.ValidationError("dependency must set exactly one of coordinate or path").
				WithContext("index", i).
				Build()
		}
		if hasCoord && len(strings.Split(dep.Coordinate, ":")) != 3 {
			return errors.ValidationError("dependency coordinate must be group:artifact:version").
				WithContext("coordinate", dep.Coordinate).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateRepositories() error {
	for _, raw := range cv.config.Repositories {
		if err := validateHTTPURL(raw); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid repository URL").
				Fatal().
				WithContext("url", raw).
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validatePublishing() error {
	if err := validateHTTPURL(cv.config.Publishing.URL); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid publishing.url").
			Fatal().
			WithContext("url", cv.config.Publishing.URL).
			Build()
	}
	if cv.config.Publishing.Timeout < 0 {
		return errors.ValidationError("publishing.timeout cannot be negative").Build()
	}
	return nil
}

func (cv *configurationValidator) validateShadow() error {
	name := cv.config.ExpandTemplate(cv.config.Shadow.FileName)
	if strings.ContainsAny(name, `/\`) {
		return errors.ValidationError("shadow.file_name must not contain path separators").
			WithContext("file_name", name).
			Build()
	}
	if !strings.HasSuffix(name, ".jar") {
		return errors.ValidationError("shadow.file_name must end in .jar").
			WithContext("file_name", name).
			Build()
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
