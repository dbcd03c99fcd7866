package testpayloads

import "time"

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Location  string        // Location name written into payloads
	Days      int           // Days covered by the short-horizon payload
	Rounds    int           // How many times every case is submitted
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	OutputDir string        // Directory the generated payloads are written to
	LogFile   string        // Log file for test output
	Verbose   bool          // Enable verbose logging
	Seed      uint64        // Seed for synthetic values
}

// Case is one request the runner submits and the response it expects.
type Case struct {
	Name            string
	Method          string
	Path            string
	Body            []byte
	Accept          string
	WantStatus      int
	WantContentType string
}

// Stats holds run statistics.
type Stats struct {
	CasesBuilt     int
	Submitted      int
	Passed         int
	Failed         int
	BytesReceived  int64
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	FailureReasons map[string]int
}
