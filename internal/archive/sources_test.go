package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSources_UTF8(t *testing.T) {
	src := writeTree(t, map[string]string{"ovh/neziw/A.java": "class A { String s = \"żółw\"; }"})
	res := writeTree(t, map[string]string{"app.properties": "a=1", "logo.png": "\xff\xfe"})

	enc, err := NewSourceEncoder("UTF-8")
	require.NoError(t, err)

	jar, report, err := BuildSources(NewManifest("test"), enc, src, res, filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.properties", "logo.png", "ovh/neziw/A.java"}, jar.Names())
	assert.Equal(t, 3, report.Entries)
	assert.Equal(t, 0, report.Transcoded)
}

func TestBuildSources_InvalidUTF8(t *testing.T) {
	src := writeTree(t, map[string]string{"A.java": "class A { /* \xe9 */ }"})
	enc, err := NewSourceEncoder("UTF-8")
	require.NoError(t, err)

	_, _, err = BuildSources(nil, enc, src)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "UTF-8", encErr.Encoding)
}

func TestBuildSources_TranscodesLatin1(t *testing.T) {
	src := writeTree(t, map[string]string{"A.java": "class A { /* caf\xe9 */ }"})
	enc, err := NewSourceEncoder("ISO-8859-1")
	require.NoError(t, err)

	jar, report, err := BuildSources(nil, enc, src)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transcoded)

	dest := filepath.Join(t.TempDir(), "s.jar")
	require.NoError(t, jar.WriteFile(dest))
	entries, err := ReadEntries(dest)
	require.NoError(t, err)
	assert.Equal(t, "class A { /* café */ }", string(entries["A.java"]))
}

func TestNewSourceEncoder_Unknown(t *testing.T) {
	_, err := NewSourceEncoder("NOT-AN-ENCODING")
	assert.Error(t, err)
}

func TestIsTextFile(t *testing.T) {
	assert.True(t, IsTextFile("a/B.JAVA"))
	assert.False(t, IsTextFile("logo.png"))
}
