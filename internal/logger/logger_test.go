package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Cleanup(func() {
		writer = nil
		console = nil
		errConsole = nil
		debugMode = false
	})
}

func TestDebugOnlyWhenEnabled(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "ccline.log")

	Init(path, false)
	Debug("hidden")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no entry should create the file")

	Init(path, true)
	Debug("shown")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] shown")
	assert.NotContains(t, string(data), "hidden")
}

func TestConsoleMirrorsInfoAndError(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "ccline.log")
	Init(path, false)

	var out, errOut bytes.Buffer
	SetConsole(&out, &errOut)
	Info("installed")
	Error("failed")
	Debug("quiet")

	assert.Equal(t, "installed\n", out.String())
	assert.Equal(t, "failed\n", errOut.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] installed")
	assert.Contains(t, string(data), "[ERROR] failed")
}

func TestUninitializedIsSilent(t *testing.T) {
	reset(t)
	var errOut bytes.Buffer
	errConsole = &errOut
	assert.NotPanics(t, func() {
		Info("nothing")
		Error("nothing")
		Debug("nothing")
	})
	assert.Equal(t, "nothing\n", errOut.String())
}
