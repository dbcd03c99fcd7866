package service

import (
	"errors"

	"github.com/okian/wxgrid/internal/adapters/mq/queue"
)

// Sentinel errors for the service lifecycle.
var (
	ErrNotStarted = errors.New("service not started")
	// ErrBusy reports an image render refused because the render queue is
	// full.
	ErrBusy = queue.ErrBusy
)
