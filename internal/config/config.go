package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Seraphli/ccline/internal/git"
)

const appName = "ccline"

var ConfigDir string // Set by root command PersistentPreRun

// GetConfigDir returns the host configuration directory, ~/.claude unless
// overridden by --config-dir.
func GetConfigDir() string {
	if ConfigDir != "" {
		return ConfigDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// SettingsPath is the host settings file the installer patches.
func SettingsPath() string {
	return filepath.Join(GetConfigDir(), "settings.json")
}

func InstallDir() string {
	return filepath.Join(GetConfigDir(), appName)
}

// InstallBinPath is where install copies the binary.
func InstallBinPath() string {
	name := appName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(InstallDir(), name)
}

func LogPath() string {
	return filepath.Join(InstallDir(), appName+".log")
}

// ColorMode selects when escape sequences are emitted.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Options are the runtime knobs of the render path. They come from the
// environment and are overridden by flags; no file is read.
type Options struct {
	Color       ColorMode
	GitTimeout  time.Duration
	MaxWidth    int
	ContextSize int64
	Debug       bool
}

// DefaultOptions returns the options used when nothing is set.
func DefaultOptions() Options {
	return Options{
		Color:      ColorAuto,
		GitTimeout: git.DefaultTimeout,
	}
}

// LoadOptions reads CCLINE_* variables through getenv. Malformed values
// keep their default and are reported in the returned slice so the caller
// can log them.
func LoadOptions(getenv func(string) string) (Options, []error) {
	opts := DefaultOptions()
	var problems []error

	if v := getenv("CCLINE_COLOR"); v != "" {
		if m, err := ParseColorMode(v); err == nil {
			opts.Color = m
		} else {
			problems = append(problems, fmt.Errorf("CCLINE_COLOR: %w", err))
		}
	}
	if v := getenv("CCLINE_GIT_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err == nil && d > 0 {
			opts.GitTimeout = d
		} else {
			problems = append(problems, fmt.Errorf("CCLINE_GIT_TIMEOUT: invalid duration %q", v))
		}
	}
	if v := getenv("CCLINE_MAX_WIDTH"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			opts.MaxWidth = n
		} else {
			problems = append(problems, fmt.Errorf("CCLINE_MAX_WIDTH: invalid width %q", v))
		}
	}
	if v := getenv("CCLINE_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			opts.ContextSize = n
		} else {
			problems = append(problems, fmt.Errorf("CCLINE_CONTEXT_SIZE: invalid size %q", v))
		}
	}
	if v := getenv("CCLINE_DEBUG"); v != "" {
		opts.Debug, _ = strconv.ParseBool(v)
	}
	return opts, problems
}

// parseDuration accepts Go durations and bare milliseconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// ResolveColor decides the color capability once per invocation. NO_COLOR
// always wins; in auto mode a dumb terminal disables color. Hosts read
// stdout through a pipe and render ANSI themselves, so auto does not
// require a TTY.
func ResolveColor(mode ColorMode, getenv func(string) string) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return getenv("TERM") != "dumb"
}
