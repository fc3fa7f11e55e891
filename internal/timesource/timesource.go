// Package timesource samples the wall clock once per second, aligned to
// real second boundaries.
package timesource

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// NextDelay returns the time until the next whole second after now. A
// sample taken exactly on a boundary waits a full second. Instants before
// the Unix epoch align the same way as later ones.
func NextDelay(now time.Time) time.Duration {
	ms := (now.UnixMilli()%1000 + 1000) % 1000
	return time.Second - time.Duration(ms)*time.Millisecond
}

// Observer is notified of each aligned firing. lateness is how far past the
// targeted boundary the sample was taken.
type Observer func(lateness time.Duration)

// Source delivers boundary-aligned samples on Ticks. Start and Stop must be
// called from one goroutine (the consumer's event loop).
type Source struct {
	clock    clockwork.Clock
	observer Observer
	ticks    chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Option customises a Source.
type Option func(*Source)

// WithObserver registers a callback invoked on every aligned firing.
func WithObserver(o Observer) Option {
	return func(s *Source) { s.observer = o }
}

// New creates a stopped Source on the given clock.
func New(clock clockwork.Clock, opts ...Option) *Source {
	s := &Source{
		clock: clock,
		ticks: make(chan time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ticks returns the channel of aligned samples. It is never closed.
func (s *Source) Ticks() <-chan time.Time {
	return s.ticks
}

// Start stops any running schedule, arms a new one and returns the
// immediate first sample, which the caller renders without waiting for a
// boundary.
func (s *Source) Start() time.Time {
	s.Stop()

	now := s.clock.Now()

	s.mu.Lock()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(now, s.stop, s.done)
	s.mu.Unlock()

	return now
}

// Stop halts scheduling and waits for the scheduling goroutine to exit.
// It is safe to call repeatedly.
func (s *Source) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether a schedule is armed.
func (s *Source) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Source) run(from time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		delay := NextDelay(from)
		target := from.Add(delay).Truncate(time.Second)
		timer := s.clock.NewTimer(delay)

		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.Chan():
		}

		now := s.clock.Now()
		if s.observer != nil {
			s.observer(now.Sub(target))
		}

		select {
		case <-stop:
			return
		case s.ticks <- now:
		}
		from = now
	}
}
