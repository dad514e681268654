// Package logging sets up the charmbracelet logger the whole program writes
// to. The TUI owns the terminal, so logs go to a temp file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	cblog "github.com/charmbracelet/log"
	appcontext "github.com/darksworm/kubeportal/pkg/context"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
)

const (
	// EnvLogFile is set to the log file path once Setup ran.
	EnvLogFile = "KUBEPORTAL_LOG_FILE"
	// EnvLogLevel selects DEBUG, INFO, WARN, ERROR or FATAL.
	EnvLogLevel = "KUBEPORTAL_LOG_LEVEL"
)

// ParseLevel maps a level name to a cblog level, defaulting to info.
func ParseLevel(s string) cblog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return cblog.DebugLevel
	case "WARN":
		return cblog.WarnLevel
	case "ERROR":
		return cblog.ErrorLevel
	case "FATAL":
		return cblog.FatalLevel
	default:
		return cblog.InfoLevel
	}
}

// Setup creates a temp log file, exposes its path via EnvLogFile and makes
// it the default destination of both cblog and the standard log package.
// The caller closes the returned file on exit.
func Setup() (*os.File, error) {
	f, err := os.CreateTemp("", "kubeportal-*.log")
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	_ = os.Setenv(EnvLogFile, f.Name())

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cblog.SetDefault(New(f, os.Getenv(EnvLogLevel)))
	return f, nil
}

// New returns a timestamped logger writing to w at the named level.
func New(w io.Writer, level string) *cblog.Logger {
	logger := cblog.NewWithOptions(w, cblog.Options{ReportTimestamp: true})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// LogError logs err with its structured fields when it is a PortalError.
func LogError(logger *cblog.Logger, err error) {
	if err == nil {
		return
	}
	pe, ok := apperrors.As(err)
	if !ok {
		logger.Error(err.Error())
		return
	}
	kv := []interface{}{"code", pe.Code, "category", string(pe.Category)}
	if pe.Details != "" {
		kv = append(kv, "details", pe.Details)
	}
	if pe.Cause != nil {
		kv = append(kv, "cause", pe.Cause.Error())
	}
	for k, v := range pe.Context {
		kv = append(kv, k, v)
	}
	logger.Error(pe.Message, kv...)
}

// LogOperation logs how long operation took and whether it failed.
// Cancelled operations are routine and stay at debug level.
func LogOperation(logger *cblog.Logger, operation string, took time.Duration, err error) {
	if err != nil && appcontext.IsCanceled(err) {
		logger.Debug("operation canceled", "op", operation, "took", took)
		return
	}
	if err != nil {
		logger.Warn("operation failed", "op", operation, "took", took, "err", err)
		return
	}
	logger.Debug("operation done", "op", operation, "took", took)
}
