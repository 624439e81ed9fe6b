package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Seraphli/ccline/internal/logger"
	"github.com/Seraphli/ccline/internal/optional"
)

// DefaultTimeout bounds the whole branch lookup, fallback included.
const DefaultTimeout = 500 * time.Millisecond

// RunFunc runs git with args inside dir and returns stdout.
type RunFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

// Inspector discovers the current branch of a working directory.
type Inspector struct {
	Timeout time.Duration
	Run     RunFunc
}

func NewInspector(timeout time.Duration) *Inspector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Inspector{Timeout: timeout, Run: runGit}
}

// Branch returns the branch checked out in dir, or the short commit hash
// on a detached HEAD. Any failure, including the timeout, yields absent.
func (in *Inspector) Branch(ctx context.Context, dir string) optional.Value[string] {
	if dir == "" {
		return optional.None[string]()
	}
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	out, err := in.Run(ctx, dir, "branch", "--show-current")
	if err != nil {
		logger.Debug(fmt.Sprintf("git branch in %s: %v", dir, err))
		return optional.None[string]()
	}
	if branch := strings.TrimSpace(string(out)); branch != "" {
		return optional.Some(branch)
	}

	out, err = in.Run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		logger.Debug(fmt.Sprintf("git rev-parse in %s: %v", dir, err))
		return optional.None[string]()
	}
	if commit := strings.TrimSpace(string(out)); commit != "" {
		return optional.Some(commit)
	}
	return optional.None[string]()
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	// A child that inherits the pipe could keep Wait blocked past the kill.
	cmd.WaitDelay = 100 * time.Millisecond
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("git %s: %w", args[0], ctx.Err())
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out.Bytes(), nil
}
