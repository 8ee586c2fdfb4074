package archive

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
)

// BundleOptions configures shadow bundling.
type BundleOptions struct {
	// Filter drops matching entries from every input.
	Filter *Filter
	// MergeServiceFiles concatenates META-INF/services files instead of
	// keeping the first one. Merged service files are not subject to Filter.
	MergeServiceFiles bool
}

// BundleReport summarizes what a bundle run did.
type BundleReport struct {
	Entries      int
	Excluded     int
	Duplicates   int
	ServiceFiles int
	Inputs       int
}

// Bundler merges a compiled output directory and dependency jars into one jar.
type Bundler struct {
	opts BundleOptions
}

// NewBundler creates a bundler.
func NewBundler(opts BundleOptions) *Bundler {
	return &Bundler{opts: opts}
}

// Bundle builds the merged jar. Inputs are processed in order: classesDir
// first, then each dependency jar. For duplicate non-service entries the
// first occurrence wins. Input manifests are discarded.
func (b *Bundler) Bundle(manifest *Manifest, classesDir string, jars []string) (*Jar, *BundleReport, error) {
	out := NewJar(manifest)
	report := &BundleReport{}
	services := newServiceMerger()

	accept := func(name string, data []byte, origin string) {
		if name == ManifestPath || strings.HasSuffix(name, "/") {
			return
		}
		if b.opts.MergeServiceFiles && IsServiceFile(name) {
			services.add(name, data)
			return
		}
		if b.opts.Filter.Excluded(name) {
			report.Excluded++
			return
		}
		if !out.Add(name, data) {
			report.Duplicates++
			slog.Debug("Duplicate bundle entry skipped", logfields.Path(name), logfields.Source(origin))
		}
	}

	if classesDir != "" {
		project := NewJar(nil)
		if _, err := project.AddDir(classesDir); err != nil {
			return nil, nil, fmt.Errorf("read compiled output %s: %w", classesDir, err)
		}
		for _, name := range project.Names() {
			accept(name, project.files[name], classesDir)
		}
		report.Inputs++
	}

	for _, jarPath := range jars {
		if err := eachZipEntry(jarPath, func(name string, data []byte) {
			accept(name, data, jarPath)
		}); err != nil {
			return nil, nil, fmt.Errorf("read dependency %s: %w", jarPath, err)
		}
		report.Inputs++
	}

	for name, data := range services.files() {
		out.Put(name, data)
		report.ServiceFiles++
	}

	report.Entries = out.Len()
	return out, report, nil
}

func eachZipEntry(jarPath string, fn func(name string, data []byte)) error {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		fn(f.Name, data)
	}
	return nil
}
