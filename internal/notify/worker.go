package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

// Listener is told about every delivered trigger.
type Listener func(ctx context.Context, t alarm.Trigger)

// Worker polls a Memory center and fans deliveries out to listeners.
type Worker struct {
	center *Memory
	tick   time.Duration
	clock  func() time.Time
	logger *logger.Logger

	mu        sync.RWMutex
	listeners []Listener
}

func NewWorker(center *Memory, tick time.Duration, clock func() time.Time, l *logger.Logger) *Worker {
	if clock == nil {
		clock = time.Now
	}
	if tick <= 0 {
		tick = time.Second
	}
	return &Worker{
		center: center,
		tick:   tick,
		clock:  clock,
		logger: l.Component("notify/worker"),
	}
}

func (w *Worker) Subscribe(fn Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.listeners = append(w.listeners, fn)
}

// Run ticks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.logger.Info("delivery worker started", slog.String("tick", w.tick.String()))

	for {
		select {
		case <-ticker.C:
			w.Tick(ctx, w.clock())
		case <-ctx.Done():
			w.logger.Info("delivery worker stopped")
			return nil
		}
	}
}

// Tick delivers everything due at now and notifies listeners in fire order.
func (w *Worker) Tick(ctx context.Context, now time.Time) []alarm.Trigger {
	fired := w.center.Deliver(now)
	if len(fired) == 0 {
		return nil
	}

	w.mu.RLock()
	listeners := append([]Listener(nil), w.listeners...)
	w.mu.RUnlock()

	for _, t := range fired {
		w.logger.Debug("trigger delivered",
			slog.String("trigger_id", t.ID),
			slog.String("category", string(t.Payload.Category)),
		)
		for _, fn := range listeners {
			fn(ctx, t)
		}
	}
	return fired
}
