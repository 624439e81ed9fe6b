package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Seraphli/ccline/internal/colors"
	"github.com/Seraphli/ccline/internal/config"
	"github.com/Seraphli/ccline/internal/git"
	"github.com/Seraphli/ccline/internal/logger"
	"github.com/Seraphli/ccline/internal/metrics"
	"github.com/Seraphli/ccline/internal/optional"
	"github.com/Seraphli/ccline/internal/session"
	"github.com/Seraphli/ccline/internal/statusline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// StatuslineCmd is the root command: with no subcommand it renders one
// status line from stdin. It never fails; bad input renders fewer segments.
var StatuslineCmd = &cobra.Command{
	Use:           "ccline",
	Short:         "Claude Code status line: reads session JSON on stdin, prints one line",
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Hosts may pass flags from a newer release.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.ConfigDir = configDirFlag
	},
	RunE: runStatusline,
}

var (
	configDirFlag   string
	colorFlag       string
	gitTimeoutFlag  time.Duration
	maxWidthFlag    int
	contextSizeFlag int64
	debugFlag       bool
)

func init() {
	StatuslineCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Host config directory (default ~/.claude)")
	StatuslineCmd.Flags().StringVar(&colorFlag, "color", string(config.ColorAuto), "Color output: auto, always or never")
	StatuslineCmd.Flags().DurationVar(&gitTimeoutFlag, "git-timeout", git.DefaultTimeout, "Upper bound for the git branch lookup")
	StatuslineCmd.Flags().IntVar(&maxWidthFlag, "max-width", 0, "Truncate the line to this many cells (0 = terminal width or unlimited)")
	StatuslineCmd.Flags().Int64Var(&contextSizeFlag, "context-size", 0, "Context window size used when the input carries none")
	StatuslineCmd.Flags().BoolVar(&debugFlag, "debug", false, "Write debug entries to the log file")
	StatuslineCmd.SetFlagErrorFunc(rootFlagError)

	StatuslineCmd.AddCommand(InstallCmd)
	StatuslineCmd.AddCommand(UninstallCmd)
	StatuslineCmd.AddCommand(VersionCmd)
}

// Execute runs the command tree and returns the process exit code. The
// status line itself always exits 0; only subcommands fail.
func Execute() int {
	executed, err := StatuslineCmd.ExecuteC()
	if err == nil || executed == StatuslineCmd {
		return 0
	}
	logger.Error(fmt.Sprintf("%s: %v", executed.CommandPath(), err))
	return 1
}

// rootFlagError still renders the line when a root flag has a bad value;
// flags parsed before it keep their values, the rest their defaults.
// Subcommands report flag errors as usual.
func rootFlagError(cmd *cobra.Command, err error) error {
	if cmd != StatuslineCmd {
		return err
	}
	config.ConfigDir = configDirFlag
	return renderFromProcess(cmd, []error{err})
}

// renderEnv is what one invocation resolved before rendering.
type renderEnv struct {
	Options     config.Options
	Color       bool
	FallbackDir string
	Inspector   *git.Inspector
}

func runStatusline(cmd *cobra.Command, args []string) error {
	return renderFromProcess(cmd, nil)
}

// renderFromProcess renders from the command's stdin to its stdout. It
// always returns nil.
func renderFromProcess(cmd *cobra.Command, problems []error) error {
	opts, optProblems := resolveOptions(cmd)
	logger.Init(config.LogPath(), opts.Debug)
	for _, p := range append(problems, optProblems...) {
		logger.Debug(fmt.Sprintf("option ignored: %v", p))
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		// Nobody is piping a payload; render the empty document.
		in = bytes.NewReader(nil)
	}
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && opts.MaxWidth == 0 && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			opts.MaxWidth = width
		}
	}
	fallbackDir, err := os.Getwd()
	if err != nil {
		logger.Debug(fmt.Sprintf("getwd: %v", err))
	}

	env := renderEnv{
		Options:     opts,
		Color:       config.ResolveColor(opts.Color, os.Getenv),
		FallbackDir: fallbackDir,
		Inspector:   git.NewInspector(opts.GitTimeout),
	}
	if err := renderStatusline(cmd.Context(), in, out, env); err != nil {
		logger.Debug(fmt.Sprintf("write status line: %v", err))
	}
	return nil
}

// resolveOptions layers flags over environment over defaults.
func resolveOptions(cmd *cobra.Command) (config.Options, []error) {
	opts, problems := config.LoadOptions(os.Getenv)
	flags := cmd.Flags()
	if flags.Changed("color") {
		if m, err := config.ParseColorMode(colorFlag); err == nil {
			opts.Color = m
		} else {
			problems = append(problems, err)
		}
	}
	if flags.Changed("git-timeout") && gitTimeoutFlag > 0 {
		opts.GitTimeout = gitTimeoutFlag
	}
	if flags.Changed("max-width") && maxWidthFlag >= 0 {
		opts.MaxWidth = maxWidthFlag
	}
	if flags.Changed("context-size") && contextSizeFlag >= 0 {
		opts.ContextSize = contextSizeFlag
	}
	if flags.Changed("debug") {
		opts.Debug = debugFlag
	}
	return opts, problems
}

// renderStatusline is the whole pipeline: read, inspect, derive, render,
// write. Only the final write can fail.
func renderStatusline(ctx context.Context, in io.Reader, out io.Writer, env renderEnv) error {
	if ctx == nil {
		ctx = context.Background()
	}
	info, err := session.Read(in)
	if err != nil {
		logger.Debug(fmt.Sprintf("session input: %v", err))
	}
	info = info.WithDefaultCapacity(env.Options.ContextSize)

	branch := optional.None[string]()
	if dir, ok := info.Cwd.Get(); ok && env.Inspector != nil {
		branch = env.Inspector.Branch(ctx, dir)
	}

	segs := statusline.Build(statusline.Input{
		Info:        info,
		Branch:      branch,
		Metrics:     metrics.Derive(info),
		FallbackDir: env.FallbackDir,
	})
	line := statusline.Render(segs, statusline.Options{
		Painter:  colors.NewPainter(env.Color),
		MaxWidth: env.Options.MaxWidth,
	})
	return writeLine(out, line)
}

func writeLine(w io.Writer, line string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(line)
	bw.WriteByte('\n')
	return bw.Flush()
}
