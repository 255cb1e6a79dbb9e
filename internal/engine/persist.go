package engine

import (
	"errors"
	"fmt"
	"log"
)

// ErrPersistenceFailure wraps errors from the Persister. In-memory state
// stays authoritative when it is reported.
var ErrPersistenceFailure = errors.New("failed to persist bindings")

// Persister writes the full ordered binding list to durable storage.
type Persister interface {
	Save(bindings []Binding) error
}

// persistQueue runs saves on its own goroutine so registry mutations never
// wait for disk. Only the newest pending snapshot is kept.
type persistQueue struct {
	p       Persister
	onErr   func(error)
	pending chan []Binding
	done    chan struct{}
}

func newPersistQueue(p Persister, onErr func(error)) *persistQueue {
	q := &persistQueue{
		p:       p,
		onErr:   onErr,
		pending: make(chan []Binding, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// enqueue replaces any snapshot still waiting to be written.
// Callers serialize enqueue calls (Engine holds its lock).
func (q *persistQueue) enqueue(snapshot []Binding) {
	for {
		select {
		case q.pending <- snapshot:
			return
		default:
		}
		select {
		case <-q.pending:
		default:
		}
	}
}

func (q *persistQueue) run() {
	defer close(q.done)
	for snapshot := range q.pending {
		q.save(snapshot)
	}
}

func (q *persistQueue) save(snapshot []Binding) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Engine: recovered from panic while persisting bindings: %v", r)
		}
	}()
	if q.p == nil {
		return
	}
	if err := q.p.Save(snapshot); err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		log.Printf("Engine: warning: %v", wrapped)
		if q.onErr != nil {
			q.onErr(wrapped)
		}
	}
}

// close writes the last pending snapshot and waits for the worker to exit.
func (q *persistQueue) close() {
	close(q.pending)
	<-q.done
}
