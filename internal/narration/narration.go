// Package narration serializes spoken messages through a single consumer.
//
// Say with priority clears the backlog and interrupts the utterance in
// progress; otherwise messages play in FIFO order. A message's onComplete
// callback runs once when that message finishes, on the queue goroutine.
// Interrupted or discarded messages never report completion.
package narration

import (
	"context"
	"io"
	"log"
	"sync"
)

// Speaker renders one utterance, returning when it has finished or ctx is
// cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger for speaker failures.
func WithLogger(l *log.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.log = l
		}
	}
}

type item struct {
	text       string
	onComplete func()
}

// Queue is the narration channel.
type Queue struct {
	speaker Speaker
	log     *log.Logger

	mu          sync.Mutex
	cond        *sync.Cond
	items       []item
	cancel      context.CancelFunc
	interrupted bool
	closed      bool
	done        chan struct{}

	// spoke runs between Speak returning and the queue lock being retaken.
	spoke func()
}

// New starts a queue speaking through s.
func New(s Speaker, opts ...Option) *Queue {
	q := &Queue{
		speaker: s,
		log:     log.New(io.Discard, "", 0),
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	go q.loop()
	return q
}

// Say queues text. With priority the backlog is dropped and the current
// utterance is interrupted first.
func (q *Queue) Say(text string, priority bool, onComplete func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	if priority {
		q.items = q.items[:0]
		if q.cancel != nil {
			q.interrupted = true
			q.cancel()
		}
	}
	q.items = append(q.items, item{text: text, onComplete: onComplete})
	q.cond.Signal()
}

// Pending returns the number of queued messages, excluding the one being
// spoken.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Speaking reports whether an utterance is in progress.
func (q *Queue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}

// Close interrupts the current utterance, drops the backlog and stops the
// consumer.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.items = nil
	if q.cancel != nil {
		q.interrupted = true
		q.cancel()
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		it := q.items[0]
		q.items = q.items[1:]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.interrupted = false
		q.mu.Unlock()

		err := q.speaker.Speak(ctx, it.text)
		// An interrupt that lands after Speak returned does not undo a
		// finished utterance.
		finished := err == nil && ctx.Err() == nil
		if q.spoke != nil {
			q.spoke()
		}

		q.mu.Lock()
		interrupted := q.interrupted
		q.cancel = nil
		q.mu.Unlock()
		cancel()

		if interrupted && !finished {
			continue
		}
		// A failing speaker still completes the message so sequences
		// chained on onComplete keep moving.
		if err != nil {
			q.log.Printf("narration: %v", err)
		}
		if it.onComplete != nil {
			it.onComplete()
		}
	}
}
