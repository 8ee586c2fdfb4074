package config

import (
	"path/filepath"
	"time"
)

// Default values mirrored from the reference Gradle descriptor.
const (
	DefaultRelease        = "17"
	DefaultEncoding       = "UTF-8"
	DefaultSourceDir      = "src/main/java"
	DefaultResourceDir    = "src/main/resources"
	DefaultShadowFileName = "${name} ${version}.jar"
	DefaultLintVersion    = "10.23.0"
	DefaultLintConfigFile = "config/checkstyle/checkstyle.xml"
	DefaultRepositoryName = "neziw-repo"
	DefaultRepositoryURL  = "https://repo.neziw.ovh/releases/"
	DefaultUsernameKey    = "MVN_USER"
	DefaultPasswordKey    = "MVN_PASS"
	DefaultEnvFile        = ".env"
	DefaultOutputDir      = "build"
	DefaultCacheDir       = ".jarbuilder/cache"
	DefaultMavenCentral   = "https://repo1.maven.org/maven2/"
	DefaultNotifySubject  = "jarbuilder.published"
)

// DefaultShadowExcludes are the path globs dropped when merging dependency archives.
func DefaultShadowExcludes() []string {
	return []string{
		"org/intellij/lang/annotations/**",
		"org/jetbrains/annotations/**",
		"org/checkerframework/**",
		"META-INF/**",
		"javax/**",
	}
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ApplyDefaults runs every domain applier in a fixed order.
func ApplyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&ProjectDefaultApplier{},
		&CompileDefaultApplier{},
		&PackagingDefaultApplier{},
		&LintDefaultApplier{},
		&PublishingDefaultApplier{},
		&RuntimeDefaultApplier{},
	}
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// ProjectDefaultApplier fills the artifact name from the project directory.
type ProjectDefaultApplier struct{}

func (p *ProjectDefaultApplier) Domain() string { return "project" }

func (p *ProjectDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Project.Name == "" && cfg.BaseDir != "" {
		cfg.Project.Name = filepath.Base(cfg.BaseDir)
	}
	return nil
}

// CompileDefaultApplier handles javac defaults.
type CompileDefaultApplier struct{}

func (c *CompileDefaultApplier) Domain() string { return "compile" }

func (c *CompileDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Compile.Javac == "" {
		cfg.Compile.Javac = "javac"
	}
	if cfg.Compile.Release == "" {
		cfg.Compile.Release = DefaultRelease
	}
	// nil means omitted; an explicit empty list disables the default flag.
	if cfg.Compile.Args == nil {
		cfg.Compile.Args = []string{"-Xlint:deprecation"}
	}
	if cfg.Compile.Encoding == "" {
		cfg.Compile.Encoding = DefaultEncoding
	}
	if cfg.Compile.SourceDir == "" {
		cfg.Compile.SourceDir = DefaultSourceDir
	}
	if cfg.Compile.ResourceDir == "" {
		cfg.Compile.ResourceDir = DefaultResourceDir
	}
	return nil
}

// PackagingDefaultApplier handles shadow and dependency defaults.
type PackagingDefaultApplier struct{}

func (p *PackagingDefaultApplier) Domain() string { return "packaging" }

func (p *PackagingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Shadow.FileName == "" {
		cfg.Shadow.FileName = DefaultShadowFileName
	}
	if cfg.Shadow.Excludes == nil {
		cfg.Shadow.Excludes = DefaultShadowExcludes()
	}
	if len(cfg.Repositories) == 0 {
		cfg.Repositories = []string{DefaultMavenCentral}
	}
	return nil
}

// LintDefaultApplier handles Checkstyle defaults.
type LintDefaultApplier struct{}

func (l *LintDefaultApplier) Domain() string { return "lint" }

func (l *LintDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Lint.ToolVersion == "" {
		cfg.Lint.ToolVersion = DefaultLintVersion
	}
	if cfg.Lint.ConfigFile == "" {
		cfg.Lint.ConfigFile = DefaultLintConfigFile
	}
	if cfg.Lint.Java == "" {
		cfg.Lint.Java = "java"
	}
	if cfg.Lint.MaxWarnings < 0 {
		cfg.Lint.MaxWarnings = 0
	}
	return nil
}

// PublishingDefaultApplier handles repository defaults.
type PublishingDefaultApplier struct{}

func (p *PublishingDefaultApplier) Domain() string { return "publishing" }

func (p *PublishingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Publishing.Name == "" {
		cfg.Publishing.Name = DefaultRepositoryName
	}
	if cfg.Publishing.URL == "" {
		cfg.Publishing.URL = DefaultRepositoryURL
	}
	if cfg.Publishing.UsernameKey == "" {
		cfg.Publishing.UsernameKey = DefaultUsernameKey
	}
	if cfg.Publishing.PasswordKey == "" {
		cfg.Publishing.PasswordKey = DefaultPasswordKey
	}
	if cfg.Publishing.EnvFile == "" {
		cfg.Publishing.EnvFile = DefaultEnvFile
	}
	return nil
}

// RuntimeDefaultApplier handles output, retry, notification and watch defaults.
type RuntimeDefaultApplier struct{}

func (r *RuntimeDefaultApplier) Domain() string { return "runtime" }

func (r *RuntimeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Output.CacheDir == "" {
		cfg.Output.CacheDir = DefaultCacheDir
	}

	if mode := NormalizeRetryBackoff(string(cfg.Retry.Backoff)); mode != "" {
		cfg.Retry.Backoff = mode
	} else {
		cfg.Retry.Backoff = RetryBackoffExponential
	}
	if cfg.Retry.Initial <= 0 {
		cfg.Retry.Initial = time.Second
	}
	if cfg.Retry.Max <= 0 {
		cfg.Retry.Max = 30 * time.Second
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = 2
	}

	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	return nil
}
