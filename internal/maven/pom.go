package maven

import (
	"bytes"
	"encoding/xml"
)

const (
	pomNamespace      = "http://maven.apache.org/POM/4.0.0"
	pomSchemaInstance = "http://www.w3.org/2001/XMLSchema-instance"
	pomSchemaLocation = "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd"
)

// POM is the subset of a Maven project model written for published
// artifacts. Dependencies are never listed since they are bundled.
type POM struct {
	XMLName        xml.Name    `xml:"project"`
	Xmlns          string      `xml:"xmlns,attr"`
	XmlnsXsi       string      `xml:"xmlns:xsi,attr"`
	SchemaLocation string      `xml:"xsi:schemaLocation,attr"`
	ModelVersion   string      `xml:"modelVersion"`
	GroupID        string      `xml:"groupId"`
	ArtifactID     string      `xml:"artifactId"`
	Version        string      `xml:"version"`
	Packaging      string      `xml:"packaging"`
	Name           string      `xml:"name,omitempty"`
	Description    string      `xml:"description,omitempty"`
	URL            string      `xml:"url,omitempty"`
	Licenses       *Licenses   `xml:"licenses,omitempty"`
	SCM            *SCM        `xml:"scm,omitempty"`
	Properties     *Properties `xml:"properties,omitempty"`
}

// Licenses wraps the license list.
type Licenses struct {
	License []License `xml:"license"`
}

// License is a single license entry.
type License struct {
	Name string `xml:"name"`
}

// SCM records the source revision the artifact was built from.
type SCM struct {
	URL string `xml:"url,omitempty"`
	Tag string `xml:"tag,omitempty"`
}

// Properties carries build metadata.
type Properties struct {
	GitCommit string `xml:"git.commit,omitempty"`
	GitBranch string `xml:"git.branch,omitempty"`
	BuildID   string `xml:"jarbuilder.build.id,omitempty"`
}

// POMOptions are the optional descriptive POM fields.
type POMOptions struct {
	Name        string
	Description string
	URL         string
	License     string
	GitCommit   string
	GitBranch   string
	BuildID     string
}

// NewPOM builds a jar-packaged POM for c.
func NewPOM(c Coordinate, opts POMOptions) *POM {
	p := &POM{
		Xmlns:          pomNamespace,
		XmlnsXsi:       pomSchemaInstance,
		SchemaLocation: pomSchemaLocation,
		ModelVersion:   "4.0.0",
		GroupID:        c.Group,
		ArtifactID:     c.Artifact,
		Version:        c.Version,
		Packaging:      "jar",
		Name:           opts.Name,
		Description:    opts.Description,
		URL:            opts.URL,
	}
	if opts.License != "" {
		p.Licenses = &Licenses{License: []License{{Name: opts.License}}}
	}
	if opts.GitCommit != "" {
		p.SCM = &SCM{URL: opts.URL, Tag: opts.GitCommit}
	}
	if opts.GitCommit != "" || opts.GitBranch != "" || opts.BuildID != "" {
		p.Properties = &Properties{GitCommit: opts.GitCommit, GitBranch: opts.GitBranch, BuildID: opts.BuildID}
	}
	return p
}

// Marshal renders the POM with an XML declaration.
func (p *POM) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
