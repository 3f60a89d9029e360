// Package usecase is the single owner of alarm and creature state. It ties
// the stores, the progression engine, the trigger scheduler and the widget
// summary together; every mutation goes through one Service.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/widget"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

type Service struct {
	mu sync.Mutex

	store     Store
	scheduler *alarm.Scheduler
	engine    *creature.Engine
	publisher widget.Publisher
	logger    *logger.Logger

	clock        func() time.Time
	creatureName string
}

// Option -.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithCreatureName sets the name given to a freshly hatched creature.
func WithCreatureName(name string) Option {
	return func(s *Service) {
		s.creatureName = name
	}
}

// WithPublisher sets where the widget summary goes after each change.
func WithPublisher(p widget.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(store Store, scheduler *alarm.Scheduler, engine *creature.Engine, l *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		scheduler:    scheduler,
		engine:       engine,
		publisher:    widget.Discard{},
		logger:       l.Component("usecase"),
		clock:        time.Now,
		creatureName: creature.DefaultName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().In(s.scheduler.Location())
}

// loadCreature returns the singleton, creating and storing it on first use.
func (s *Service) loadCreature(ctx context.Context) (*creature.Creature, error) {
	c, err := s.store.GetCreature(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("usecase - loadCreature - GetCreature: %w", err)
	}

	c = creature.New(s.creatureName, s.now())
	if err := s.store.SaveCreature(ctx, c); err != nil {
		return nil, fmt.Errorf("usecase - loadCreature - SaveCreature: %w", err)
	}
	s.logger.Info("creature hatched", slog.String("name", c.Name))
	return c, nil
}

// publish pushes a fresh summary. A failure is logged and never undoes the
// change that triggered it.
func (s *Service) publish(ctx context.Context, c *creature.Creature) {
	sum, err := s.summary(ctx, c)
	if err != nil {
		s.logger.Warn("summary not built", logger.Err(err))
		return
	}
	if err := s.publisher.Publish(ctx, sum); err != nil {
		s.logger.Warn("summary not published", logger.Err(err))
	}
}

func (s *Service) summary(ctx context.Context, c *creature.Creature) (widget.Summary, error) {
	alarms, err := s.store.ListAlarms(ctx)
	if err != nil {
		return widget.Summary{}, fmt.Errorf("usecase - summary - ListAlarms: %w", err)
	}
	now := s.now()
	_, next, ok := alarm.Next(alarms, now, s.scheduler.Location())
	return widget.Build(c, s.engine.Progression().Kind(), alarm.NextAlarmText(next, ok, now)), nil
}

// Summary returns what the widget currently shows.
func (s *Service) Summary(ctx context.Context) (widget.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCreature(ctx)
	if err != nil {
		return widget.Summary{}, err
	}
	return s.summary(ctx, c)
}

// publishCurrent loads the creature and publishes; used after alarm changes.
func (s *Service) publishCurrent(ctx context.Context) {
	c, err := s.loadCreature(ctx)
	if err != nil {
		s.logger.Warn("summary not published", logger.Err(err))
		return
	}
	s.publish(ctx, c)
}
