package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	debugMode  bool
	writer     io.Writer
	console    io.Writer
	errConsole io.Writer
)

// Init initializes the logger with a lumberjack rotating file writer.
// lumberjack opens the file lazily, so a run that logs nothing touches
// nothing on disk.
func Init(logPath string, debug bool) {
	debugMode = debug
	writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		Compress:   false,
	}
}

// SetConsole mirrors Info entries to out and Error entries to errOut. The
// render path never calls it because stdout belongs to the status line.
func SetConsole(out, errOut io.Writer) {
	console = out
	errConsole = errOut
}

func formatEntry(level, message string) string {
	ts := time.Now().Format(time.RFC3339)
	pid := os.Getpid()
	return fmt.Sprintf("[%s] [PID=%d] [%s] %s", ts, pid, level, message)
}

func writeLog(entry string) {
	if writer == nil {
		return
	}
	writer.Write([]byte(entry + "\n"))
}

func Info(message string) {
	if console != nil {
		fmt.Fprintln(console, message)
	}
	writeLog(formatEntry("INFO", message))
}

func Debug(message string) {
	if !debugMode {
		return
	}
	writeLog(formatEntry("DEBUG", message))
}

// Error also goes to stderr when no error console is set.
func Error(message string) {
	w := errConsole
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, message)
	writeLog(formatEntry("ERROR", message))
}
