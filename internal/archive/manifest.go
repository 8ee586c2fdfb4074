package archive

import (
	"bytes"
	"strings"
)

// ManifestPath is the location of the jar manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// maxManifestLine is the byte limit per manifest line, excluding the line break.
const maxManifestLine = 72

// Attribute is a single manifest header.
type Attribute struct {
	Name  string
	Value string
}

// Manifest is an ordered list of main-section attributes.
type Manifest struct {
	attrs []Attribute
}

// NewManifest creates a manifest with Manifest-Version and Created-By set.
func NewManifest(createdBy string) *Manifest {
	m := &Manifest{}
	m.Set("Manifest-Version", "1.0")
	if createdBy != "" {
		m.Set("Created-By", createdBy)
	}
	return m
}

// Set adds or replaces an attribute, keeping first-insertion order.
// Empty values are ignored.
func (m *Manifest) Set(name, value string) *Manifest {
	if value == "" {
		return m
	}
	for i := range m.attrs {
		if strings.EqualFold(m.attrs[i].Name, name) {
			m.attrs[i].Value = value
			return m
		}
	}
	m.attrs = append(m.attrs, Attribute{Name: name, Value: value})
	return m
}

// Get returns the value of an attribute.
func (m *Manifest) Get(name string) (string, bool) {
	for _, a := range m.attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes returns a copy of the attributes in order.
func (m *Manifest) Attributes() []Attribute {
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Bytes renders the manifest with CRLF line endings, wrapping lines longer
// than 72 bytes with single-space continuation lines.
func (m *Manifest) Bytes() []byte {
	var buf bytes.Buffer
	for _, a := range m.attrs {
		writeManifestLine(&buf, a.Name+": "+a.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeManifestLine(buf *bytes.Buffer, line string) {
	limit := maxManifestLine
	for len(line) > limit {
		cut := limit
		// Never split a multi-byte UTF-8 sequence.
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxManifestLine - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// ParseManifest reads main-section attributes from manifest bytes.
func ParseManifest(data []byte) *Manifest {
	m := &Manifest{}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var current string
	flush := func() {
		if current == "" {
			return
		}
		if name, value, ok := strings.Cut(current, ": "); ok {
			m.attrs = append(m.attrs, Attribute{Name: name, Value: value})
		}
		current = ""
	}
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			// End of the main section.
			break
		}
		if strings.HasPrefix(line, " ") {
			current += line[1:]
			continue
		}
		flush()
		current = line
	}
	flush()
	return m
}
