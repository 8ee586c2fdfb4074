package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"time"
)

// MetadataFile is the artifact-level version index.
const MetadataFile = "maven-metadata.xml"

const lastUpdatedLayout = "20060102150405"

// Metadata is the artifact-level maven-metadata.xml document.
type Metadata struct {
	XMLName    xml.Name   `xml:"metadata"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Versioning Versioning `xml:"versioning"`
}

// Versioning lists published versions.
type Versioning struct {
	Latest      string   `xml:"latest,omitempty"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated,omitempty"`
}

// NewMetadata creates empty metadata for c's artifact.
func NewMetadata(c Coordinate) *Metadata {
	return &Metadata{GroupID: c.Group, ArtifactID: c.Artifact}
}

// ParseMetadata decodes an existing maven-metadata.xml.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", MetadataFile, err)
	}
	return &m, nil
}

// AddVersion records c.Version. The version becomes latest, and release
// unless it is a snapshot. Existing entries are kept in order.
func (m *Metadata) AddVersion(c Coordinate, now time.Time) {
	if m.GroupID == "" {
		m.GroupID = c.Group
	}
	if m.ArtifactID == "" {
		m.ArtifactID = c.Artifact
	}
	if !slices.Contains(m.Versioning.Versions, c.Version) {
		m.Versioning.Versions = append(m.Versioning.Versions, c.Version)
	}
	m.Versioning.Latest = c.Version
	if !c.IsSnapshot() {
		m.Versioning.Release = c.Version
	}
	m.Versioning.LastUpdated = now.UTC().Format(lastUpdatedLayout)
}

// Marshal renders the document with an XML declaration.
func (m *Metadata) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
