package reminder

import (
	"context"
	"log"
	"time"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
)

// Source yields pending tasks whose reminder fell inside the window ending
// at now. task.Handler satisfies it with locking.
type Source interface {
	DueReminders(now time.Time, window time.Duration) []model.Task
}

// Notifier delivers a single reminder.
type Notifier interface {
	Notify(ctx context.Context, t model.Task) error
}

type NotifierFunc func(ctx context.Context, t model.Task) error

func (f NotifierFunc) Notify(ctx context.Context, t model.Task) error { return f(ctx, t) }

type Options struct {
	Interval time.Duration
	Window   time.Duration
	Clock    clock.Clock
	Logger   *log.Logger
}

// Poller periodically asks a Source for due reminders and hands each to a
// Notifier. Delivery is approximate: with Interval < Window a reminder can
// fire on more than one tick.
type Poller struct {
	source   Source
	notifier Notifier
	interval time.Duration
	window   time.Duration
	clock    clock.Clock
	logger   *log.Logger
}

func NewPoller(source Source, notifier Notifier, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Poller{
		source:   source,
		notifier: notifier,
		interval: opts.Interval,
		window:   opts.Window,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

// Run ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Printf("[reminder] poller started (interval %s, window %s)", p.interval, p.window)
	for {
		select {
		case <-ctx.Done():
			p.logger.Printf("[reminder] poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll and returns how many reminders were delivered.
func (p *Poller) Tick(ctx context.Context) int {
	sent := 0
	for _, t := range p.source.DueReminders(p.clock.Now(), p.window) {
		if err := p.notifier.Notify(ctx, t); err != nil {
			p.logger.Printf("[reminder] notify %s failed: %v", t.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// LogNotifier writes reminders to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(_ context.Context, t model.Task) error {
	l := n.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("[reminder] %s (%s priority)", t.Title, t.Priority)
	return nil
}

// Fanout delivers to every notifier and reports the first error.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, t model.Task) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, t); err != nil && first == nil {
			first = err
		}
	}
	return first
}
