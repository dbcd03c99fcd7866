// Package service wires the pipeline stages into the operations served by
// the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wxgrid/internal/adapters/mq/queue"
	"github.com/okian/wxgrid/internal/adapters/mq/worker"
	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/extract"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/internal/domain/payload"
	"github.com/okian/wxgrid/internal/domain/render"
	"github.com/okian/wxgrid/internal/domain/snapshot"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

// Service runs forecast and summary requests. Requests share no mutable
// state besides the counters.
type Service struct {
	mu sync.RWMutex

	// Pipeline stages
	extractor *extract.Extractor
	aligner   *align.Aligner
	snapshots *snapshot.Builder
	text      *render.TextRenderer
	image     *render.ImageRenderer
	jobs      *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	loc              *time.Location
	shortBucket      time.Duration
	longBucket       time.Duration
	policy           snapshot.Policy
	imageWidth       int
	imagePanelHeight int
	imageBackground  string
	imagePast        string
	imageFuture      string
	renderWorkers    int
	renderQueueSize  int
	now              func() time.Time

	// State
	started   bool
	forecasts atomic.Int64
	summaries atomic.Int64
	failures  atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		loc:         time.UTC,
		shortBucket: model.DefaultShortBucket,
		longBucket:  model.DefaultLongBucket,
		policy:      snapshot.PolicyContaining,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline stages.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.extractor = extract.New(extract.WithLogger(s.logger.Named("extract")))
	s.aligner = align.New(align.WithLocation(s.loc), align.WithLogger(s.logger.Named("align")))
	s.snapshots = snapshot.New(
		snapshot.WithLocation(s.loc),
		snapshot.WithPolicy(s.policy),
		snapshot.WithClock(s.now),
		snapshot.WithLogger(s.logger.Named("snapshot")),
	)
	s.text = render.NewText()
	s.image = render.NewImage(
		render.WithSize(s.imageWidth, s.imagePanelHeight),
		render.WithColors(s.imageBackground, s.imagePast, s.imageFuture),
		render.WithClock(s.now),
		render.WithLogger(s.logger.Named("render")),
	)

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.renderQueueSize))
	s.pool = worker.NewPool(s.renderWorkers, s.jobs, s.image, s.logger.Named("render-pool"))
	// Workers outlive the start request; Stop ends them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "forecast service started",
		logger.String("timezone", s.loc.String()),
		logger.Duration("shortBucket", s.shortBucket),
		logger.Duration("longBucket", s.longBucket),
		logger.String("windowPolicy", string(s.policy)),
		logger.Int("renderWorkers", s.pool.Size()),
	)
	return nil
}

// Stop marks the service as stopped. Queued image renders are drained
// before it returns.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	ctx := context.Background()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "render pool shutdown", logger.Error(err))
	}
	s.logger.Info(ctx, "forecast service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// renderImage hands t to the render pool and waits for the PNG.
func (s *Service) renderImage(ctx context.Context, t align.Table, h model.Horizon) ([]byte, error) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()

	job := queue.NewJob(RequestID(ctx), t, h)
	if !jobs.Enqueue(ctx, job) {
		return nil, fmt.Errorf("render.image: %w", queue.ErrBusy)
	}
	select {
	case res := <-job.Reply:
		return res.Body, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("render.image: %w", ctx.Err())
	}
}

// Forecast extracts, aligns and renders req.Payload.
func (s *Service) Forecast(ctx context.Context, req Request) (Result, error) {
	if !s.running() {
		return Result{}, ErrNotStarted
	}
	s.forecasts.Add(1)
	start := time.Now()
	log := s.logger.With(logger.String("requestId", RequestID(ctx)))

	res, err := s.forecast(ctx, req)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		s.failures.Add(1)
		metrics.RecordErrorByComponent("forecast", failure.Label(err))
		log.Error(ctx, "forecast failed",
			logger.String("horizon", req.Horizon.String()),
			logger.String("mode", string(req.Mode)),
			logger.Error(err))
	} else {
		log.Info(ctx, "forecast rendered",
			logger.String("horizon", req.Horizon.String()),
			logger.String("mode", string(req.Mode)),
			logger.Int("rows", res.Rows),
			logger.Int("bytes", len(res.Body)),
			logger.Duration("took", time.Since(start)))
	}
	_ = metrics.RecordPipelineRun(req.Horizon.String(), string(req.Mode), outcome)
	return res, err
}

func (s *Service) forecast(ctx context.Context, req Request) (Result, error) {
	const op = "forecast"
	bucket, err := s.bucketFor(req.Horizon)
	if err != nil {
		return Result{}, failure.Wrap(op, failure.ErrInvalidInput, err)
	}
	if req.Mode == ModeImage && req.Horizon != model.Short {
		return Result{}, failure.Wrap(op, failure.ErrUnsupported, fmt.Errorf("image mode for %s horizon", req.Horizon))
	}

	var doc any
	err = stage("decode", func() (err error) {
		doc, err = payload.DecodeBytes(req.Payload)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	var series []model.ElementSeries
	err = stage("extract", func() (err error) {
		series, err = s.extractor.Extract(ctx, doc, req.Horizon)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	var table align.Table
	err = stage("align", func() (err error) {
		table, err = s.aligner.Align(ctx, series, bucket)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{Rows: table.Rows(), Columns: len(table.Columns)}
	err = stage("render", func() error {
		switch req.Mode {
		case ModeText:
			out, err := s.text.Render(table, req.Horizon)
			res.ContentType, res.Body = "text/plain; charset=utf-8", []byte(out)
			return err
		case ModeImage:
			out, err := s.renderImage(ctx, table, req.Horizon)
			res.ContentType, res.Body = "image/png", out
			return err
		default:
			return failure.Wrap(op, failure.ErrInvalidInput, fmt.Errorf("mode %q", req.Mode))
		}
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Summary decodes a window-major payload and returns the summary of the
// selected window.
func (s *Service) Summary(ctx context.Context, raw []byte) (string, error) {
	if !s.running() {
		return "", ErrNotStarted
	}
	s.summaries.Add(1)
	log := s.logger.With(logger.String("requestId", RequestID(ctx)))

	var out string
	err := stage("summary", func() error {
		doc, err := payload.DecodeBytes(raw)
		if err != nil {
			return err
		}
		out, err = s.snapshots.Summarize(ctx, doc)
		return err
	})
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		s.failures.Add(1)
		metrics.RecordErrorByComponent("summary", failure.Label(err))
		log.Error(ctx, "summary failed", logger.Error(err))
	} else {
		log.Info(ctx, "summary rendered", logger.Int("bytes", len(out)))
	}
	_ = metrics.RecordPipelineRun("window", "summary", outcome)
	return out, err
}

func (s *Service) bucketFor(h model.Horizon) (time.Duration, error) {
	switch h {
	case model.Short:
		return s.shortBucket, nil
	case model.Long:
		return s.longBucket, nil
	default:
		return 0, fmt.Errorf("unknown horizon %q", h)
	}
}

// stage runs fn and records its latency in milliseconds.
func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStageLatency(name, float64(time.Since(start).Microseconds())/1000)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"timezone":     s.loc.String(),
		"windowPolicy": string(s.policy),
		"shortBucket":  s.shortBucket.String(),
		"longBucket":   s.longBucket.String(),
		"forecasts":    s.forecasts.Load(),
		"summaries":    s.summaries.Load(),
		"failures":     s.failures.Load(),
	}
	if s.started {
		stats["renderWorkers"] = s.pool.Size()
		stats["renderQueueLength"] = s.jobs.Len()
	}
	return stats
}
