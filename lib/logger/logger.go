package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

var levelStrings = map[LogLevel]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

func (l LogLevel) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

type Logger struct {
	loggers    map[LogLevel]*log.Logger
	level      LogLevel
	moduleName string
}

// New builds a logger writing every level to w. Tests pass a bytes.Buffer here.
func New(moduleName string, w io.Writer, minLevel LogLevel) *Logger {
	loggers := make(map[LogLevel]*log.Logger)
	for level, prefix := range levelStrings {
		loggers[level] = log.New(w, fmt.Sprintf("[%s] [%s] ", prefix, moduleName), log.LstdFlags)
	}

	return &Logger{
		loggers:    loggers,
		level:      minLevel,
		moduleName: moduleName,
	}
}

// NewLogger writes to a rotated log file and to stdout.
func NewLogger(moduleName, logPath string, maxSize, maxBackups, maxAge int, minLevel LogLevel) (*Logger, error) {
	// Create log directory if it doesn't exist
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,    // megabytes
		MaxBackups: maxBackups, // number of backups
		MaxAge:     maxAge,     // days
		Compress:   true,
	}

	return New(moduleName, io.MultiWriter(rotator, os.Stdout), minLevel), nil
}

// Discard is a logger that drops everything.
func Discard() *Logger {
	return New("", io.Discard, ERROR+1)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level <= DEBUG {
		l.loggers[DEBUG].Printf(format, v...)
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.level <= INFO {
		l.loggers[INFO].Printf(format, v...)
	}
}

func (l *Logger) Warning(format string, v ...interface{}) {
	if l.level <= WARNING {
		l.loggers[WARNING].Printf(format, v...)
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.level <= ERROR {
		l.loggers[ERROR].Printf(format, v...)
	}
}

// ParseLogLevel accepts DEBUG, INFO, WARNING (or WARN) and ERROR, in any case.
func ParseLogLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARNING", "WARN":
		return WARNING, true
	case "ERROR":
		return ERROR, true
	default:
		return INFO, false
	}
}

// Printf logs at INFO. It lets the logger stand in where a Printf-style logger is expected.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Info(format, v...)
}
