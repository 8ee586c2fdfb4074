package releasecheck

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var notesRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderNotes converts a release body written in GitHub-flavored markdown to HTML.
func RenderNotes(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := notesRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
