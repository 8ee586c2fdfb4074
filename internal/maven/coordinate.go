package maven

import (
	"fmt"
	"path"
	"strings"
)

// Coordinate identifies an artifact as group:artifact:version.
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// ParseCoordinate parses "group:artifact:version".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: want group:artifact:version", s)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, `/\ `) {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
		}
	}
	return Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}, nil
}

// String returns the group:artifact:version form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// IsSnapshot reports whether the version is a -SNAPSHOT version.
func (c Coordinate) IsSnapshot() bool {
	return strings.HasSuffix(c.Version, "-SNAPSHOT")
}

// ArtifactDir is the repository directory holding all versions.
func (c Coordinate) ArtifactDir() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact)
}

// VersionDir is the repository directory of this version.
func (c Coordinate) VersionDir() string {
	return path.Join(c.ArtifactDir(), c.Version)
}

// FileName returns artifact-version[-classifier].ext.
func (c Coordinate) FileName(classifier, ext string) string {
	name := c.Artifact + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// Path returns the repository-relative path of a file of this version.
func (c Coordinate) Path(classifier, ext string) string {
	return path.Join(c.VersionDir(), c.FileName(classifier, ext))
}

// MetadataPath returns the artifact-level maven-metadata.xml path.
func (c Coordinate) MetadataPath() string {
	return path.Join(c.ArtifactDir(), MetadataFile)
}
