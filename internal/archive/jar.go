package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReproducibleTime is the modification time stamped on every entry.
var ReproducibleTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

// Jar is an in-memory jar under construction.
type Jar struct {
	manifest *Manifest
	files    map[string][]byte
}

// NewJar creates an empty jar with the given manifest.
func NewJar(manifest *Manifest) *Jar {
	if manifest == nil {
		manifest = NewManifest("")
	}
	return &Jar{manifest: manifest, files: make(map[string][]byte)}
}

// Manifest returns the jar manifest.
func (j *Jar) Manifest() *Manifest { return j.manifest }

// Add stores data at name. It returns false without modifying the jar if an
// entry already exists. The manifest path is reserved.
func (j *Jar) Add(name string, data []byte) bool {
	name = cleanEntryName(name)
	if name == "" || name == ManifestPath {
		return false
	}
	if _, exists := j.files[name]; exists {
		return false
	}
	j.files[name] = data
	return true
}

// Put stores data at name, replacing any existing entry.
func (j *Jar) Put(name string, data []byte) {
	name = cleanEntryName(name)
	if name == "" || name == ManifestPath {
		return
	}
	j.files[name] = data
}

// Has reports whether name is present.
func (j *Jar) Has(name string) bool {
	_, ok := j.files[cleanEntryName(name)]
	return ok
}

// Len returns the number of file entries, excluding the manifest.
func (j *Jar) Len() int { return len(j.files) }

// Names returns file entry names in sorted order.
func (j *Jar) Names() []string {
	names := make([]string, 0, len(j.files))
	for name := range j.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddDir adds every regular file below root, named by its slash path
// relative to root. Existing entries are kept. It returns the number of files added.
func (j *Jar) AddDir(root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if j.Add(filepath.ToSlash(rel), data) {
			added++
		}
		return nil
	})
	return added, err
}

// Write serializes the jar: manifest first, then directories and files in
// sorted order.
func (j *Jar) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	written := make(map[string]bool)

	writeDirs := func(name string) error {
		dir := path.Dir(name)
		if dir == "." {
			return nil
		}
		var parents []string
		for d := dir; d != "." && d != "/"; d = path.Dir(d) {
			parents = append(parents, d)
		}
		for i := len(parents) - 1; i >= 0; i-- {
			entry := parents[i] + "/"
			if written[entry] {
				continue
			}
			if _, err := zw.CreateHeader(newHeader(entry, zip.Store)); err != nil {
				return err
			}
			written[entry] = true
		}
		return nil
	}

	writeFile := func(name string, data []byte) error {
		if err := writeDirs(name); err != nil {
			return err
		}
		fw, err := zw.CreateHeader(newHeader(name, zip.Deflate))
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	}

	if err := writeFile(ManifestPath, j.manifest.Bytes()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	for _, name := range j.Names() {
		if err := writeFile(name, j.files[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// WriteFile writes the jar to path atomically, creating parent directories.
func (j *Jar) WriteFile(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".jar-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := j.Write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func newHeader(name string, method uint16) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: method, Modified: ReproducibleTime}
	if strings.HasSuffix(name, "/") {
		h.SetMode(fs.ModeDir | 0o755)
	} else {
		h.SetMode(0o644)
	}
	return h
}

func cleanEntryName(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if name == "" || strings.HasSuffix(name, "/") {
		return ""
	}
	return path.Clean(name)
}

// ReadEntries returns the file entries of a jar keyed by name. Directory
// entries are skipped.
func ReadEntries(jarPath string) (map[string][]byte, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s in %s: %w", f.Name, jarPath, err)
		}
		out[f.Name] = data
	}
	return out, nil
}

// ListEntries returns every entry name in archive order, including directories.
func ListEntries(jarPath string) ([]string, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = zr.Close()
	}()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}
