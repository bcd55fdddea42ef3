package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
)

// Pipeline is the generation surface the scheduler drives.
type Pipeline interface {
	PendingCount(ctx context.Context) (int64, error)
	GenerateOne(ctx context.Context) (*models.Suggestion, error)
}

// Handle owns the single recurring auto-generation timer. Start and Stop are
// idempotent; starting cancels any previously running timer so only one is
// ever active. Stopping only prevents new ticks; an in-flight generation
// completes on its own schedule.
type Handle struct {
	mu         sync.Mutex
	pipeline   Pipeline
	interval   time.Duration
	maxPending int
	stop       chan struct{}
}

func NewHandle(pipeline Pipeline, interval time.Duration, maxPending int) *Handle {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if maxPending <= 0 {
		maxPending = 15
	}
	return &Handle{
		pipeline:   pipeline,
		interval:   interval,
		maxPending: maxPending,
	}
}

// Start begins the recurring timer, stopping any previous one first.
func (h *Handle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		close(h.stop)
	}
	stop := make(chan struct{})
	h.stop = stop

	go h.run(stop)

	logger.Get().Info().
		Dur("interval", h.interval).
		Msg("Suggestion scheduler started")
}

// Stop halts the timer. Safe to call when not running.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop == nil {
		return
	}
	close(h.stop)
	h.stop = nil

	logger.Get().Info().Msg("Suggestion scheduler stopped")
}

// Running reports whether a timer is active.
func (h *Handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

func (h *Handle) run(stop chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Tick(context.Background())
		case <-stop:
			return
		}
	}
}

// Tick runs one scheduled generation. It skips under backpressure and
// absorbs every pipeline error; a failed tick waits for the next interval.
func (h *Handle) Tick(ctx context.Context) bool {
	log := logger.Get()

	pending, err := h.pipeline.PendingCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler tick: failed to count pending suggestions")
		return false
	}
	if pending >= int64(h.maxPending) {
		log.Info().
			Int64("pending", pending).
			Int("limit", h.maxPending).
			Msg("Scheduler tick skipped: too many pending suggestions")
		return false
	}

	sg, err := h.pipeline.GenerateOne(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler tick: generation failed")
		return false
	}

	log.Info().
		Str("id", sg.ID.Hex()).
		Str("title", sg.Title).
		Msg("Scheduler tick: suggestion generated")
	return true
}
