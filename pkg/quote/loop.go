package quote

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is how long the loop waits after an input change before it
// recomputes
const DefaultDelay = 500 * time.Millisecond

// Result is delivered for every input that was not superseded. A nil Quote
// with a nil Err clears the displayed output.
type Result struct {
	Seq     uint64
	Request Request
	Quote   *Quote
	Err     error
}

// QuoteFunc is satisfied by (*Quoter).Quote
type QuoteFunc func(ctx context.Context, req Request) (*Quote, error)

// Loop recomputes the quote whenever the input changes. Each Update cancels
// the computation in flight, and a result is only delivered while its
// sequence number is still the latest one.
type Loop struct {
	quote QuoteFunc
	delay time.Duration
	log   logrus.FieldLogger

	mu      sync.Mutex
	seq     uint64
	last    Request
	hasLast bool
	cancel  context.CancelFunc
	timer   *time.Timer
	subs    []chan Result
	closed  bool
}

func NewLoop(quote QuoteFunc, delay time.Duration, log logrus.FieldLogger) *Loop {
	if delay < 0 {
		delay = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loop{quote: quote, delay: delay, log: log}
}

// Subscribe returns a channel of results. Slow subscribers lose the older of
// two undelivered results, never the newer.
func (l *Loop) Subscribe() <-chan Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Result, 8)
	if l.closed {
		close(ch)
		return ch
	}
	l.subs = append(l.subs, ch)
	return ch
}

// Update records a new input and schedules a recompute
func (l *Loop) Update(req Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	l.stopLocked()
	l.seq++
	l.last = req
	l.hasLast = true
	seq := l.seq

	if req.Blank() {
		l.publishLocked(Result{Seq: seq, Request: req})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.timer = time.AfterFunc(l.delay, func() { l.run(ctx, seq, req) })
}

// Refresh recomputes the last input, as if it had been entered again
func (l *Loop) Refresh() {
	l.mu.Lock()
	req, ok := l.last, l.hasLast
	l.mu.Unlock()

	if ok {
		l.Update(req)
	}
}

// Close cancels pending work and closes every subscription
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.stopLocked()
	for _, ch := range l.subs {
		close(ch)
	}
	l.subs = nil
}

func (l *Loop) run(ctx context.Context, seq uint64, req Request) {
	q, err := l.quote(ctx, req)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || seq != l.seq {
		l.log.WithField("seq", seq).Debug("dropping superseded quote")
		return
	}
	l.publishLocked(Result{Seq: seq, Request: req, Quote: q, Err: err})
}

func (l *Loop) stopLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loop) publishLocked(r Result) {
	for _, ch := range l.subs {
		select {
		case ch <- r:
			continue
		default:
		}
		// full: drop the oldest pending result to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- r:
		default:
		}
	}
}
