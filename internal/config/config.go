package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

// DefaultConfigFile is the descriptor name looked up when no path is given.
const DefaultConfigFile = "jarbuilder.yaml"

// Config is the build configuration descriptor. It is loaded once per
// invocation and treated as immutable afterwards.
type Config struct {
	Project      Project          `yaml:"project"`
	Compile      CompileConfig    `yaml:"compile"`
	Shadow       ShadowConfig     `yaml:"shadow"`
	Sources      SourcesConfig    `yaml:"sources"`
	Lint         LintConfig       `yaml:"lint"`
	Dependencies []Dependency     `yaml:"dependencies,omitempty"`
	Repositories []string         `yaml:"repositories,omitempty"`
	Publishing   PublishingConfig `yaml:"publishing"`
	Output       OutputConfig     `yaml:"output"`
	Retry        RetryConfig      `yaml:"retry,omitempty"`
	History      HistoryConfig    `yaml:"history,omitempty"`
	Notify       NotifyConfig     `yaml:"notify,omitempty"`
	Metrics      MetricsConfig    `yaml:"metrics,omitempty"`
	Watch        WatchConfig      `yaml:"watch,omitempty"`

	// BaseDir is the directory containing the descriptor. Relative paths
	// resolve against it.
	BaseDir string `yaml:"-"`
}

// Project identifies the published artifact.
type Project struct {
	Group       string `yaml:"group"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	URL         string `yaml:"url,omitempty"`
	License     string `yaml:"license,omitempty"`
}

// CompileConfig configures the javac invocation.
type CompileConfig struct {
	Javac             string   `yaml:"javac,omitempty"`
	Release           string   `yaml:"release,omitempty"`
	Args              []string `yaml:"args,omitempty"`
	Encoding          string   `yaml:"encoding,omitempty"`
	SourceDir         string   `yaml:"source_dir,omitempty"`
	ResourceDir       string   `yaml:"resource_dir,omitempty"`
	FailOnDeprecation *bool    `yaml:"fail_on_deprecation,omitempty"`
}

// FailsOnDeprecation reports whether deprecation warnings fail compilation.
func (c CompileConfig) FailsOnDeprecation() bool {
	return c.FailOnDeprecation == nil || *c.FailOnDeprecation
}

// ShadowConfig configures the bundled (fat) archive.
type ShadowConfig struct {
	FileName          string   `yaml:"file_name,omitempty"`
	Excludes          []string `yaml:"excludes,omitempty"`
	MergeServiceFiles *bool    `yaml:"merge_service_files,omitempty"`
}

// MergesServiceFiles reports whether META-INF/services entries are concatenated.
func (s ShadowConfig) MergesServiceFiles() bool {
	return s.MergeServiceFiles == nil || *s.MergeServiceFiles
}

// SourcesConfig configures the companion sources archive.
type SourcesConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the sources archive is produced.
func (s SourcesConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LintConfig configures the Checkstyle pass.
type LintConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	ToolVersion string `yaml:"tool_version,omitempty"`
	MaxWarnings int    `yaml:"max_warnings"`
	ConfigFile  string `yaml:"config_file,omitempty"`
	Jar         string `yaml:"jar,omitempty"`
	Java        string `yaml:"java,omitempty"`
}

// IsEnabled reports whether the lint pass runs.
func (l LintConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// Dependency is a runtime dependency merged into the bundle. Exactly one of
// Coordinate or Path is set.
type Dependency struct {
	Coordinate string `yaml:"coordinate,omitempty"`
	Path       string `yaml:"path,omitempty"`
}

// String returns the coordinate or the path.
func (d Dependency) String() string {
	if d.Coordinate != "" {
		return d.Coordinate
	}
	return d.Path
}

// PublishingConfig configures the remote Maven repository.
type PublishingConfig struct {
	Name        string        `yaml:"name,omitempty"`
	URL         string        `yaml:"url,omitempty"`
	UsernameKey string        `yaml:"username_key,omitempty"`
	PasswordKey string        `yaml:"password_key,omitempty"`
	EnvFile     string        `yaml:"env_file,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// OutputConfig configures the local output directory.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	CacheDir  string `yaml:"cache_dir,omitempty"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// HistoryConfig enables the build event history database.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig enables NATS notifications after a successful publish.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MetricsConfig enables a Prometheus textfile export after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// projectPlaceholders are left untouched by environment expansion so that
// templates such as shadow.file_name keep them for later substitution.
var projectPlaceholders = map[string]bool{"name": true, "version": true, "group": true}

// envReference matches $$ and ${VAR}. A bare $ is not a reference because
// JVM class names such as Outer$Inner.class contain it.
var envReference = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with environment values and $$ with a literal $,
// preserving project placeholders.
func expandEnv(data string) string {
	return envReference.ReplaceAllStringFunc(data, func(ref string) string {
		if ref == "$$" {
			return "$"
		}
		key := ref[2 : len(ref)-1]
		if projectPlaceholders[key] {
			return ref
		}
		return os.Getenv(key)
	})
}

// Load reads, expands, defaults and validates the descriptor at configPath.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve config path").Fatal().Build()
	}
	cfg.BaseDir = filepath.Dir(absPath)

	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes descriptor YAML without applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	return &cfg, nil
}

// Resolve returns p relative to the descriptor directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// ExpandTemplate substitutes ${name}, ${version} and ${group} in tmpl.
func (c *Config) ExpandTemplate(tmpl string) string {
	r := strings.NewReplacer(
		"${name}", c.Project.Name,
		"${version}", c.Project.Version,
		"${group}", c.Project.Group,
	)
	return r.Replace(tmpl)
}

// Init creates a new descriptor with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").Build()
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const exampleConfig = `# JarBuilder build descriptor
project:
  group: ovh.neziw
  name: ReleaseChecker
  version: 1.0.2

compile:
  release: "17"
  encoding: UTF-8
  args:
    - -Xlint:deprecation

shadow:
  file_name: "${name} ${version}.jar"
  excludes:
    - org/intellij/lang/annotations/**
    - org/jetbrains/annotations/**
    - org/checkerframework/**
    - META-INF/**
    - javax/**
  merge_service_files: true

sources:
  enabled: true

lint:
  tool_version: 10.23.0
  max_warnings: 0
  config_file: config/checkstyle/checkstyle.xml

dependencies:
  - coordinate: com.google.code.gson:gson:2.13.1

repositories:
  - https://repo1.maven.org/maven2/

publishing:
  name: neziw-repo
  url: https://repo.neziw.ovh/releases/
  username_key: MVN_USER
  password_key: MVN_PASS
  env_file: .env

output:
  directory: build
`
