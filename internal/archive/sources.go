package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// textExtensions are checked against the declared source encoding. Other
// files are copied byte for byte.
var textExtensions = map[string]bool{
	".java":       true,
	".properties": true,
	".txt":        true,
	".xml":        true,
	".json":       true,
	".yml":        true,
	".yaml":       true,
	".md":         true,
	".html":       true,
	".css":        true,
	".js":         true,
	".sql":        true,
	".csv":        true,
	".kt":         true,
	".groovy":     true,
}

// IsTextFile reports whether name has a known text extension.
func IsTextFile(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// EncodingError reports a source file that does not decode in the declared encoding.
type EncodingError struct {
	Path     string
	Encoding string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s is not valid %s", e.Path, e.Encoding)
}

// SourceEncoder validates text sources in a declared encoding and converts
// them to UTF-8.
type SourceEncoder struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// NewSourceEncoder looks up an IANA encoding name such as "UTF-8" or "ISO-8859-1".
func NewSourceEncoder(name string) (*SourceEncoder, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return &SourceEncoder{name: name, enc: enc, utf8: enc == unicode.UTF8}, nil
}

// ToUTF8 decodes data from the declared encoding.
func (s *SourceEncoder) ToUTF8(filePath string, data []byte) ([]byte, error) {
	if s.utf8 {
		if !utf8.Valid(data) {
			return nil, &EncodingError{Path: filePath, Encoding: s.name}
		}
		return data, nil
	}
	out, err := s.enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, &EncodingError{Path: filePath, Encoding: s.name}
	}
	// Decoders substitute U+FFFD for unmapped bytes.
	if bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
		return nil, &EncodingError{Path: filePath, Encoding: s.name}
	}
	return out, nil
}

// SourcesReport summarizes a sources jar.
type SourcesReport struct {
	Entries    int
	Transcoded int
}

// BuildSources collects every file under dirs into a sources jar. Text files
// are validated against the encoder and stored as UTF-8. Missing directories
// are skipped. When two dirs contain the same relative path the first wins.
func BuildSources(manifest *Manifest, enc *SourceEncoder, dirs ...string) (*Jar, *SourcesReport, error) {
	out := NewJar(manifest)
	report := &SourcesReport{}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		tree := NewJar(nil)
		if _, err := tree.AddDir(dir); err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, name := range tree.Names() {
			data := tree.files[name]
			if enc != nil && IsTextFile(name) {
				converted, err := enc.ToUTF8(filepath.Join(dir, filepath.FromSlash(name)), data)
				if err != nil {
					return nil, nil, err
				}
				if !bytes.Equal(converted, data) {
					report.Transcoded++
				}
				data = converted
			}
			out.Add(name, data)
		}
	}

	report.Entries = out.Len()
	return out, report, nil
}
