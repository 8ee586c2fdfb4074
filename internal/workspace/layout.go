package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
)

// Layout resolves paths inside the output directory.
type Layout struct {
	root string
}

// NewLayout creates a layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// Root returns the output directory.
func (l Layout) Root() string { return l.root }

// Classes is the javac destination directory.
func (l Layout) Classes() string { return filepath.Join(l.root, "classes") }

// Libs holds the produced jars.
func (l Layout) Libs() string { return filepath.Join(l.root, "libs") }

// Lib returns the path of a jar in Libs.
func (l Layout) Lib(fileName string) string { return filepath.Join(l.Libs(), fileName) }

// Report returns the path of a report file for tool, e.g. reports/checkstyle/main.xml.
func (l Layout) Report(tool, fileName string) string {
	return filepath.Join(l.root, "reports", tool, fileName)
}

// Tmp is the scratch directory.
func (l Layout) Tmp() string { return filepath.Join(l.root, "tmp") }

// Prepare creates the output directories. With clean set the output
// directory is removed first.
func (l Layout) Prepare(clean bool) error {
	if clean {
		if err := os.RemoveAll(l.root); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
		slog.Info("Cleaned output directory", logfields.Path(l.root))
	}
	for _, dir := range []string{l.Classes(), l.Libs(), l.Tmp()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Artifacts lists the jars in Libs in name order.
func (l Layout) Artifacts() ([]string, error) {
	entries, err := os.ReadDir(l.Libs())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jar") {
			out = append(out, filepath.Join(l.Libs(), e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
