package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Seraphli/ccline/internal/config"
	"github.com/Seraphli/ccline/internal/logger"
	"github.com/Seraphli/ccline/internal/settings"
	"github.com/spf13/cobra"
)

var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the binary and register it as statusLine in settings.json",
	RunE:  runInstall,
}

var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the statusLine registration and the installed binary",
	RunE:  runUninstall,
}

var (
	installNoCopyFlag  bool
	installPaddingFlag int
)

func init() {
	InstallCmd.Flags().BoolVar(&installNoCopyFlag, "no-copy", false, "Register the running binary in place instead of copying it")
	InstallCmd.Flags().IntVar(&installPaddingFlag, "padding", 0, "statusLine padding")
}

// copyFile copies src to dst through a temp file so a running binary at dst
// is replaced, not truncated.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	os.Chmod(tmp, 0755)
	return os.Rename(tmp, dst)
}

func executablePath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	return filepath.Abs(exePath)
}

// readSettings returns the settings file content, or nil if it does not
// exist yet.
func readSettings(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeSettings backs up the previous content, if any, then replaces the
// file.
func writeSettings(path string, previous, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if previous != nil {
		backupPath := path + ".backup"
		if err := os.WriteFile(backupPath, previous, 0644); err != nil {
			return fmt.Errorf("back up settings: %w", err)
		}
		logger.Info(fmt.Sprintf("Backed up settings to %s", backupPath))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	logger.Init(config.LogPath(), false)
	logger.SetConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())

	exePath, err := executablePath()
	if err != nil {
		return err
	}
	binPath := exePath
	if !installNoCopyFlag {
		binPath = config.InstallBinPath()
		if binPath != exePath {
			logger.Info(fmt.Sprintf("Copying binary to %s...", binPath))
			if err := copyFile(exePath, binPath); err != nil {
				return fmt.Errorf("copy binary: %w", err)
			}
		}
	}

	settingsPath := config.SettingsPath()
	previous, err := readSettings(settingsPath)
	if err != nil {
		return err
	}
	entry := settings.NewStatusLine(binPath, installPaddingFlag)
	data, err := settings.Merge(previous, entry)
	if err != nil {
		return fmt.Errorf("%s: %w", settingsPath, err)
	}
	if err := writeSettings(settingsPath, previous, data); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("statusLine installed to %s", settingsPath))
	logger.Info(fmt.Sprintf("Command: %s", entry.Command))
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	logger.Init(config.LogPath(), false)
	logger.SetConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())

	owned := []string{config.InstallBinPath()}
	if exePath, err := executablePath(); err == nil {
		owned = append(owned, exePath)
	}

	settingsPath := config.SettingsPath()
	previous, err := readSettings(settingsPath)
	if err != nil {
		return err
	}
	if previous != nil {
		data, changed, err := settings.Remove(previous, owned...)
		if err != nil {
			return fmt.Errorf("%s: %w", settingsPath, err)
		}
		if changed {
			if err := writeSettings(settingsPath, previous, data); err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("statusLine removed from %s", settingsPath))
		} else {
			logger.Info("statusLine is not registered to ccline; settings left unchanged")
		}
	}

	binPath := config.InstallBinPath()
	if err := os.Remove(binPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", binPath, err)
	}
	logger.Info(fmt.Sprintf("Removed %s", binPath))
	return nil
}
