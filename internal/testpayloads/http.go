package testpayloads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wxgrid/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Do submits one case.
func (c *HTTPClient) Do(ctx context.Context, baseURL string, tc Case) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, tc.Method, baseURL+tc.Path, bytes.NewReader(tc.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if len(tc.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.Accept != "" {
		req.Header.Set("Accept", tc.Accept)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitCases sends every case Rounds times using a worker pool and checks
// each response.
func submitCases(ctx context.Context, config *Config, cases []Case, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "submitting cases",
		logger.Int("cases", len(cases)), logger.Int("rounds", config.Rounds), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	jobs := make(chan Case, config.Workers*WorkerChannelMultiplier)

	var (
		passed, failed, received int64
		mu                       sync.Mutex
		wg                       sync.WaitGroup
	)

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tc := range jobs {
				n, err := runCase(ctx, client, config.BaseURL, tc)
				atomic.AddInt64(&received, int64(n))
				if err != nil {
					atomic.AddInt64(&failed, 1)
					mu.Lock()
					stats.FailureReasons[tc.Name]++
					mu.Unlock()
					log.Warn(ctx, "case failed", logger.String("case", tc.Name), logger.Error(err))
					continue
				}
				atomic.AddInt64(&passed, 1)
				if config.Verbose {
					log.Debug(ctx, "case passed", logger.String("case", tc.Name), logger.Int("bytes", n))
				}
			}
		}()
	}

	submitted := 0
loop:
	for r := 0; r < config.Rounds; r++ {
		for _, tc := range cases {
			select {
			case <-ctx.Done():
				break loop
			case jobs <- tc:
				submitted++
			}
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = submitted
	stats.Passed = int(passed)
	stats.Failed = int(failed)
	stats.BytesReceived = received

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func runCase(ctx context.Context, client *HTTPClient, baseURL string, tc Case) (int, error) {
	resp, err := client.Do(ctx, baseURL, tc)
	if err != nil {
		return 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	return len(body), verifyResponse(tc, resp, body)
}
