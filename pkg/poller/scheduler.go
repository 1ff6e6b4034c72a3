// Package poller runs named fixed-interval tasks, such as balance and price
// refreshes, with explicit cancellation.
package poller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one run of a periodic job. ctx is cancelled on teardown.
type Task func(ctx context.Context)

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
	busy   atomic.Bool
	runs   atomic.Int64
	skips  atomic.Int64
}

// Scheduler owns a set of named tasks. Each task runs immediately and then
// on every tick; a tick is skipped while the previous run is in progress.
// There is no backoff: a failed run does not delay the next one.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	log    logrus.FieldLogger
	closed bool
}

func New(log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{tasks: make(map[string]*task), log: log}
}

// Every registers and starts fn under name
func (s *Scheduler) Every(name string, interval time.Duration, fn Task) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("scheduler is stopped")
	}
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("task %s is already scheduled", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	s.tasks[name] = t

	go s.loop(ctx, name, t, interval, fn)
	return nil
}

// Cancel stops the named task and waits for its current run to return.
// It reports whether the task existed.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	t, ok := s.tasks[name]
	delete(s.tasks, name)
	s.mu.Unlock()

	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	return true
}

// Stop cancels every task and waits for them to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
	for _, t := range tasks {
		<-t.done
	}
}

// Names lists the scheduled tasks
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns how often the named task ran and how many ticks it skipped
func (s *Scheduler) Stats(name string) (runs, skips int64, ok bool) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return t.runs.Load(), t.skips.Load(), true
}

func (s *Scheduler) loop(ctx context.Context, name string, t *task, interval time.Duration, fn Task) {
	defer close(t.done)

	var inflight sync.WaitGroup
	defer inflight.Wait()

	logger := s.log.WithField("task", name)
	tick := func() {
		if !t.busy.CompareAndSwap(false, true) {
			t.skips.Add(1)
			logger.Debug("previous run still in progress, skipping tick")
			return
		}
		t.runs.Add(1)
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			defer t.busy.Store(false)
			defer func() {
				if r := recover(); r != nil {
					logger.WithField("panic", r).Error("task panicked")
				}
			}()
			fn(ctx)
		}()
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
