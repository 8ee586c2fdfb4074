package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_Lifecycle(t *testing.T) {
	tempBase := filepath.Join(t.TempDir(), "tmp")
	mgr := NewManager(tempBase)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.GetPath()
	if !strings.HasPrefix(filepath.Base(wsPath), "jarbuilder-") {
		t.Errorf("Expected timestamped directory, got: %s", wsPath)
	}

	sub, err := mgr.CreateSubdir("publish")
	if err != nil {
		t.Fatalf("CreateSubdir() failed: %v", err)
	}
	if _, err := os.Stat(sub); err != nil {
		t.Errorf("Subdirectory missing: %v", err)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("Workspace directory still exists after cleanup: %s", wsPath)
	}
	if mgr.GetPath() != "" {
		t.Errorf("GetPath() should be empty after cleanup")
	}
}

func TestManager_CreateSubdirWithoutWorkspace(t *testing.T) {
	mgr := NewManager(t.TempDir())
	if _, err := mgr.CreateSubdir("x"); err == nil {
		t.Error("expected error before Create()")
	}
	if err := mgr.Cleanup(); err != nil {
		t.Errorf("Cleanup() on empty manager failed: %v", err)
	}
}

func TestLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "build")
	l := NewLayout(root)

	if err := l.Prepare(false); err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	for _, dir := range []string{l.Classes(), l.Libs(), l.Tmp()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}

	if got := l.Report("checkstyle", "main.xml"); got != filepath.Join(root, "reports", "checkstyle", "main.xml") {
		t.Errorf("unexpected report path %s", got)
	}

	for _, name := range []string{"b.jar", "a.jar", "notes.txt"} {
		if err := os.WriteFile(l.Lib(name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	jars, err := l.Artifacts()
	if err != nil {
		t.Fatalf("Artifacts() failed: %v", err)
	}
	if len(jars) != 2 || filepath.Base(jars[0]) != "a.jar" || filepath.Base(jars[1]) != "b.jar" {
		t.Errorf("unexpected artifacts %v", jars)
	}

	stale := filepath.Join(root, "stale.txt")
	if err := os.WriteFile(stale, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := l.Prepare(true); err != nil {
		t.Fatalf("Prepare(clean) failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("clean did not remove stale file")
	}
	if jars, _ := l.Artifacts(); len(jars) != 0 {
		t.Errorf("expected no artifacts after clean, got %v", jars)
	}
}
