package testpayloads

import "time"

// HTTP status code constants.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnprocessableEntity = 422
)

// Runner configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
	HealthCheckTimeout      = 10 * time.Second
)

// Timestamp layouts used by the two upstream payload shapes.
const (
	elementTimeLayout = "2006-01-02T15:04:05-07:00"
	windowTimeLayout  = "2006-01-02 15:04:05"
)
