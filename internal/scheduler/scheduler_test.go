package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

type stubPipeline struct {
	mu         sync.Mutex
	pending    int64
	pendingErr error
	genErr     error
	genCalls   int
}

func (p *stubPipeline) PendingCount(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending, p.pendingErr
}

func (p *stubPipeline) GenerateOne(context.Context) (*models.Suggestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.genCalls++
	if p.genErr != nil {
		return nil, p.genErr
	}
	return &models.Suggestion{
		ID:     primitive.NewObjectID(),
		Title:  "Scheduled Suggestion",
		Status: models.SuggestionPending,
	}, nil
}

func (p *stubPipeline) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.genCalls
}

func TestTickGenerates(t *testing.T) {
	p := &stubPipeline{pending: 0}
	h := NewHandle(p, time.Minute, 15)

	if !h.Tick(context.Background()) {
		t.Error("tick with no backpressure should generate")
	}
	if p.calls() != 1 {
		t.Errorf("expected 1 generation, got %d", p.calls())
	}
}

func TestTickBackpressure(t *testing.T) {
	p := &stubPipeline{pending: 15}
	h := NewHandle(p, time.Minute, 15)

	if h.Tick(context.Background()) {
		t.Error("tick at the pending limit must skip")
	}
	if p.calls() != 0 {
		t.Errorf("no generation expected under backpressure, got %d", p.calls())
	}
}

func TestTickJustBelowLimit(t *testing.T) {
	p := &stubPipeline{pending: 14}
	h := NewHandle(p, time.Minute, 15)

	if !h.Tick(context.Background()) {
		t.Error("tick below the limit should generate")
	}
}

func TestTickAbsorbsErrors(t *testing.T) {
	p := &stubPipeline{genErr: errors.New("upstream down")}
	h := NewHandle(p, time.Minute, 15)

	if h.Tick(context.Background()) {
		t.Error("failed generation must report false, not panic or propagate")
	}

	p2 := &stubPipeline{pendingErr: errors.New("store down")}
	h2 := NewHandle(p2, time.Minute, 15)
	if h2.Tick(context.Background()) {
		t.Error("failed pending count must report false")
	}
	if p2.calls() != 0 {
		t.Error("generation must not run when the pending count fails")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	p := &stubPipeline{}
	h := NewHandle(p, time.Hour, 15)

	if h.Running() {
		t.Error("new handle must not be running")
	}

	h.Start()
	if !h.Running() {
		t.Error("handle should be running after Start")
	}

	// A second Start replaces the timer instead of leaking one.
	h.Start()
	if !h.Running() {
		t.Error("handle should still be running after restart")
	}

	h.Stop()
	if h.Running() {
		t.Error("handle should be stopped after Stop")
	}

	// Stopping again is a no-op.
	h.Stop()
	if h.Running() {
		t.Error("double Stop must stay stopped")
	}
}

func TestRunTicksOnInterval(t *testing.T) {
	p := &stubPipeline{}
	h := NewHandle(p, 10*time.Millisecond, 15)

	h.Start()
	time.Sleep(55 * time.Millisecond)
	h.Stop()

	if p.calls() == 0 {
		t.Error("expected at least one tick while running")
	}

	settled := p.calls()
	time.Sleep(30 * time.Millisecond)
	if p.calls() != settled {
		t.Error("ticks must stop after Stop")
	}
}
