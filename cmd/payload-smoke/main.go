package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/wxgrid/internal/testpayloads"
)

// Default configuration constants.
const (
	defaultDays        = 3
	defaultRounds      = 10
	defaultSeed        = 1
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		location  = flag.String("location", "臺北市", "Location name written into payloads")
		days      = flag.Int("days", defaultDays, "Days covered by the short-horizon payload")
		rounds    = flag.Int("rounds", defaultRounds, "Times every case is submitted")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", defaultSeed, "Seed for synthetic values")
		outputDir = flag.String("output", "", "Directory to write the generated payloads to")
		logFile   = flag.String("log", "", "Log file for test output (default: smoke_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testpayloads.ShowHelp()
		return
	}

	if err := testpayloads.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testpayloads.Config{
		BaseURL:   *baseURL,
		Location:  *location,
		Days:      *days,
		Rounds:    *rounds,
		Workers:   *workers,
		Timeout:   *timeout,
		OutputDir: *outputDir,
		LogFile:   *logFile,
		Verbose:   *verbose,
		Seed:      *seed,
	}

	if err := testpayloads.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
