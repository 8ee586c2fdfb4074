package compile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/process"
)

func projectTree(t *testing.T) (src, res, classes string) {
	t.Helper()
	root := t.TempDir()
	src = filepath.Join(root, "src", "main", "java")
	res = filepath.Join(root, "src", "main", "resources")
	classes = filepath.Join(root, "build", "classes")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "ovh", "neziw"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "ovh", "neziw", "B.java"), []byte("class B {}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "ovh", "neziw", "A.java"), []byte("class A {}"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(res, "conf"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(res, "conf", "app.properties"), []byte("a=1"), 0o600))
	return src, res, classes
}

func options(src, res, classes string) Options {
	return Options{
		Javac:             "javac",
		Release:           "17",
		Encoding:          "UTF-8",
		Args:              []string{"-Xlint:deprecation"},
		SourceDir:         src,
		ResourceDir:       res,
		ClassesDir:        classes,
		Classpath:         []string{"/cache/gson.jar"},
		FailOnDeprecation: true,
	}
}

func TestCompile_Success(t *testing.T) {
	src, res, classes := projectTree(t)
	runner := &process.FakeRunner{}

	report, err := New(runner).Compile(context.Background(), options(src, res, classes))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sources)
	assert.Equal(t, 1, report.Resources)
	assert.FileExists(t, filepath.Join(classes, "conf", "app.properties"))

	require.Len(t, runner.Commands, 1)
	args := runner.Commands[0].Args
	assert.Equal(t, []string{"-d", classes, "--release", "17", "-encoding", "UTF-8", "-classpath", "/cache/gson.jar", "-Xlint:deprecation"}, args[:9])
	assert.Equal(t, filepath.Join(src, "ovh", "neziw", "A.java"), args[9])
	assert.Equal(t, filepath.Join(src, "ovh", "neziw", "B.java"), args[10])
}

func TestCompile_DeprecationFails(t *testing.T) {
	src, res, classes := projectTree(t)
	runner := &process.FakeRunner{Handler: func(process.Command) (process.Result, error) {
		return process.Result{Stderr: "A.java:3: warning: [deprecation] stop() in Thread has been deprecated\n    t.stop();\n     ^\n1 warning\n"}, nil
	}}

	report, err := New(runner).Compile(context.Background(), options(src, res, classes))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryCompile, errors.GetCategory(err))
	assert.Equal(t, 1, report.Deprecations())
}

func TestCompile_DeprecationAllowed(t *testing.T) {
	src, res, classes := projectTree(t)
	runner := &process.FakeRunner{Handler: func(process.Command) (process.Result, error) {
		return process.Result{Stderr: "Note: A.java uses or overrides a deprecated API.\n"}, nil
	}}
	opts := options(src, res, classes)
	opts.FailOnDeprecation = false

	report, err := New(runner).Compile(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deprecations())
}

func TestCompile_ErrorExit(t *testing.T) {
	src, res, classes := projectTree(t)
	runner := &process.FakeRunner{Handler: func(process.Command) (process.Result, error) {
		return process.Result{ExitCode: 1, Stderr: "A.java:1: error: cannot find symbol\n1 error\n"}, nil
	}}

	report, err := New(runner).Compile(context.Background(), options(src, res, classes))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryCompile, errors.GetCategory(err))
	assert.Equal(t, 1, report.Errors())
	assert.Equal(t, 1, report.ExitCode)
}

func TestCompile_NoSources(t *testing.T) {
	root := t.TempDir()
	runner := &process.FakeRunner{}
	report, err := New(runner).Compile(context.Background(), Options{
		Javac:      "javac",
		SourceDir:  filepath.Join(root, "missing"),
		ClassesDir: filepath.Join(root, "classes"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sources)
	assert.Empty(t, runner.Commands)
	assert.DirExists(t, filepath.Join(root, "classes"))
}

func TestParseDiagnostics(t *testing.T) {
	out := `src/A.java:3: warning: [deprecation] stop() in Thread has been deprecated
        t.stop();
         ^
src/B.java:10: error: ';' expected
src/C.java:7: warning: [unchecked] unchecked call
Note: Some input files use unchecked or unsafe operations.
2 warnings
1 error`

	diags := ParseDiagnostics(out)
	require.Len(t, diags, 4)
	assert.Equal(t, Diagnostic{File: "src/A.java", Line: 3, Kind: KindWarning, Category: "deprecation", Message: "stop() in Thread has been deprecated"}, diags[0])
	assert.Equal(t, Diagnostic{File: "src/B.java", Line: 10, Kind: KindError, Message: "';' expected"}, diags[1])
	assert.Equal(t, "unchecked", diags[2].Category)
	assert.Equal(t, KindNote, diags[3].Kind)
	assert.Empty(t, diags[3].Category)
}
