package version

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/jarbuilder/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// UserAgent identifies outgoing HTTP requests.
func UserAgent() string {
	return "JarBuilder/" + Version
}

// CreatedBy is the manifest Created-By value.
func CreatedBy() string {
	return "JarBuilder " + Version
}
