package alert

import (
	"context"
	"time"

	"dexswap/pkg/poller"

	"github.com/sirupsen/logrus"
)

const (
	DefaultCheckInterval = 30 * time.Second // Check prices every 30 seconds
	MinCheckInterval     = 10 * time.Second // Minimum interval to avoid rate limiting

	taskName = "alerts"
)

// Event is emitted when an alert fires
type Event struct {
	Alert Alert
	Price float64
}

// Watcher checks pending alerts on a schedule
type Watcher struct {
	manager   *Manager
	pricer    *Pricer
	scheduler *poller.Scheduler
	interval  time.Duration
	notify    func(Event)
	log       logrus.FieldLogger
}

func NewWatcher(manager *Manager, pricer *Pricer, scheduler *poller.Scheduler, notify func(Event), log logrus.FieldLogger) *Watcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{
		manager:   manager,
		pricer:    pricer,
		scheduler: scheduler,
		interval:  DefaultCheckInterval,
		notify:    notify,
		log:       log,
	}
}

// SetInterval sets the check interval, clamped to MinCheckInterval
func (w *Watcher) SetInterval(interval time.Duration) {
	if interval < MinCheckInterval {
		interval = MinCheckInterval
	}
	w.interval = interval
}

func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Start schedules the check loop
func (w *Watcher) Start() error {
	return w.scheduler.Every(taskName, w.interval, func(ctx context.Context) {
		if _, err := w.Check(ctx); err != nil {
			w.log.WithError(err).Warn("alert check failed")
		}
	})
}

func (w *Watcher) Stop() {
	w.scheduler.Cancel(taskName)
}

// Check prices every pending alert once and marks those whose condition
// holds. Pricing failures skip the alert until the next check.
func (w *Watcher) Check(ctx context.Context) ([]Event, error) {
	pending, err := w.manager.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var fired []Event
	for i := range pending {
		a := &pending[i]
		logger := w.log.WithFields(logrus.Fields{"alert": a.ID, "pair": a.Token + "/" + a.QuoteToken})

		ok, price, err := w.pricer.ShouldTrigger(ctx, a)
		if err != nil {
			logger.WithError(err).Debug("failed to price alert")
			continue
		}
		if !ok {
			continue
		}

		if err := w.manager.MarkTriggered(ctx, a.ID, price); err != nil {
			logger.WithError(err).Error("failed to mark alert triggered")
			continue
		}
		a.Triggered = true
		ev := Event{Alert: *a, Price: price}
		fired = append(fired, ev)
		logger.WithField("price", price).Info("alert triggered")
		if w.notify != nil {
			w.notify(ev)
		}
	}
	return fired, nil
}
