package testpayloads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/wxgrid/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete smoke test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime:      time.Now(),
		FailureReasons: make(map[string]int),
	}

	logger.Get().Info(ctx, "starting wxgrid smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.String("location", config.Location),
		logger.Int("days", config.Days),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	g := NewGenerator(WithSeed(config.Seed), WithLocationName(config.Location))
	payloads, err := Generate(g, config.Days)
	if err != nil {
		return fmt.Errorf("payload generation failed: %w", err)
	}
	cases := BuildCases(payloads)
	stats.CasesBuilt = len(cases)

	// Step 3: Save payloads for replay
	if config.OutputDir != "" {
		if err := savePayloads(ctx, config.OutputDir, payloads); err != nil {
			logger.Get().Warn(ctx, "failed to save payloads", logger.Error(err))
		}
	}

	// Step 4: Submit and verify
	if err := submitCases(ctx, config, cases, stats); err != nil {
		return fmt.Errorf("case submission failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d requests failed: %v", stats.Failed, stats.Submitted, stats.FailureReasons)
	}
	logger.Get().Info(ctx, "smoke test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePayloads writes each generated document to dir.
func savePayloads(ctx context.Context, dir string, p Payloads) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	files := map[string][]byte{
		"short.json":   p.Short,
		"long.json":    p.Long,
		"windows.json": p.Windows,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, filePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	logger.Get().Info(ctx, "payloads saved", logger.String("dir", dir))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Passed) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("casesBuilt", stats.CasesBuilt),
		logger.Int("submitted", stats.Submitted),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Any("bytesReceived", stats.BytesReceived),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
