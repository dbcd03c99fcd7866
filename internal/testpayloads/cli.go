package testpayloads

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/wxgrid/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`wxgrid payload smoke tool
=========================

Generates synthetic forecast payloads, posts them to a running wxgrid
server and checks status codes and content types.

Usage:
  go run ./cmd/payload-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -location string
        Location name written into payloads (default "臺北市")
  -days int
        Days covered by the short-horizon payload (default 3)
  -rounds int
        Times every case is submitted (default 10)
  -workers int
        Number of concurrent workers (default CPU cores)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Seed for synthetic values (default 1)
  -output string
        Directory to write the generated payloads to
  -log string
        Log file for test output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/payload-smoke -rounds 100 -workers 8
  go run ./cmd/payload-smoke -output ./payloads -rounds 1
`)
}
