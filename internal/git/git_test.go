package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGitRepo creates a repository with one commit on branch "main".
func setupTestGitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"checkout", "-q", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
		{"config", "commit.gpgsign", "false"},
	} {
		gitCmd(t, dir, args...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644))
	gitCmd(t, dir, "add", "README.md")
	gitCmd(t, dir, "commit", "-q", "-m", "initial")
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestBranchInRepo(t *testing.T) {
	dir := setupTestGitRepo(t)
	in := NewInspector(5 * time.Second)

	got, ok := in.Branch(context.Background(), dir).Get()
	assert.True(t, ok)
	assert.Equal(t, "main", got)
}

func TestBranchFromSubdirectory(t *testing.T) {
	dir := setupTestGitRepo(t)
	sub := filepath.Join(dir, "pkg", "inner")
	require.NoError(t, os.MkdirAll(sub, 0755))
	gitCmd(t, dir, "checkout", "-q", "-b", "feature/x")

	got, ok := NewInspector(5*time.Second).Branch(context.Background(), sub).Get()
	assert.True(t, ok)
	assert.Equal(t, "feature/x", got)
}

func TestBranchDetachedHead(t *testing.T) {
	dir := setupTestGitRepo(t)
	gitCmd(t, dir, "checkout", "-q", "--detach")

	got, ok := NewInspector(5*time.Second).Branch(context.Background(), dir).Get()
	assert.True(t, ok)
	assert.NotEmpty(t, got)
}

func TestBranchNotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	assert.False(t, NewInspector(5*time.Second).Branch(context.Background(), dir).IsSet())
}

func TestBranchMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	assert.False(t, NewInspector(time.Second).Branch(context.Background(), dir).IsSet())
}

func TestBranchEmptyDirSkipsRunner(t *testing.T) {
	called := false
	in := &Inspector{Timeout: time.Second, Run: func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}}
	assert.False(t, in.Branch(context.Background(), "").IsSet())
	assert.False(t, called)
}

func TestBranchTrimsWhitespace(t *testing.T) {
	in := &Inspector{Timeout: time.Second, Run: func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return []byte("  develop \n"), nil
	}}
	assert.Equal(t, "develop", in.Branch(context.Background(), "/repo").Or(""))
}

func TestBranchRunnerError(t *testing.T) {
	in := &Inspector{Timeout: time.Second, Run: func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 128")
	}}
	assert.False(t, in.Branch(context.Background(), "/repo").IsSet())
}

func TestBranchTimeoutIsBounded(t *testing.T) {
	in := &Inspector{Timeout: 50 * time.Millisecond, Run: func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	start := time.Now()
	got := in.Branch(context.Background(), "/repo")
	assert.False(t, got.IsSet())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewInspectorDefaultsTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewInspector(0).Timeout)
	assert.Equal(t, time.Second, NewInspector(time.Second).Timeout)
}

func TestBranchKillsHungGit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub needs a POSIX shell")
	}
	bin := t.TempDir()
	// The grandchild keeps stdout open after git itself is killed.
	stub := "#!/bin/sh\nsleep 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "git"), []byte(stub), 0755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	inspector := NewInspector(200 * time.Millisecond)
	start := time.Now()
	branch := inspector.Branch(context.Background(), t.TempDir())

	assert.False(t, branch.IsSet())
	assert.Less(t, time.Since(start), 2*time.Second)
}
