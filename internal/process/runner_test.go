package process

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	assert.Equal(t, "javac --release 17", Command{Name: "javac", Args: []string{"--release", "17"}}.String())
}

func TestResultCombined(t *testing.T) {
	assert.Equal(t, "err", Result{Stderr: "err"}.Combined())
	assert.Equal(t, "out", Result{Stdout: "out"}.Combined())
	assert.Equal(t, "out\nerr", Result{Stdout: "out", Stderr: "err"}.Combined())
}

func TestExecRunner_ToolNotFound(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{Name: "jarbuilder-definitely-missing-tool"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestFakeRunner(t *testing.T) {
	f := &FakeRunner{Handler: func(cmd Command) (Result, error) {
		return Result{ExitCode: 3}, nil
	}}
	res, err := f.Run(context.Background(), Command{Name: "java"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	require.Len(t, f.Commands, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Run(ctx, Command{Name: "java"})
	assert.ErrorIs(t, err, context.Canceled)
}
