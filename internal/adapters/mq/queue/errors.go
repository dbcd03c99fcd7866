package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrBusy reports a job refused because the queue is full or closed.
	ErrBusy = errors.New("render queue busy")
)
