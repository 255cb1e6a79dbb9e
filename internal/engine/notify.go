package engine

import (
	"log"
	"sync"
)

// ChangeKind identifies what a Change notification reports.
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Removed
	ChordReplaced
	Reloaded
	RecordingStarted
	RecordingEnded
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case ChordReplaced:
		return "ChordReplaced"
	case Reloaded:
		return "Reloaded"
	case RecordingStarted:
		return "RecordingStarted"
	case RecordingEnded:
		return "RecordingEnded"
	default:
		return "ChangeKind(?)"
	}
}

// Change describes one registry mutation or engine mode transition.
type Change struct {
	Kind ChangeKind
	// Index is the registry slot involved, or -1 for whole-registry and
	// capture notifications.
	Index   int
	Binding Binding
	// Capture is set on recording notifications for a chord capture that is
	// not tied to an existing binding.
	Capture bool
	// Cancelled is set on RecordingEnded when no chord was recorded.
	Cancelled bool
}

type subscriber struct {
	id int
	fn func(Change)
}

// notifier delivers changes to subscribers on a single goroutine, in the
// order they were queued.
type notifier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Change
	subs   []subscriber
	nextID int
	closed bool
	done   chan struct{}
}

func newNotifier() *notifier {
	n := &notifier{done: make(chan struct{})}
	n.cond = sync.NewCond(&n.mu)
	go n.run()
	return n
}

func (n *notifier) subscribe(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscriber{id: id, fn: fn})
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier) publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.queue = append(n.queue, c)
	n.cond.Signal()
}

func (n *notifier) run() {
	defer close(n.done)
	for {
		n.mu.Lock()
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if len(n.queue) == 0 && n.closed {
			n.mu.Unlock()
			return
		}
		c := n.queue[0]
		n.queue = n.queue[1:]
		subs := append([]subscriber(nil), n.subs...)
		n.mu.Unlock()

		for _, s := range subs {
			deliver(s.fn, c)
		}
	}
}

func deliver(fn func(Change), c Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Engine: recovered from panic in change subscriber (%s): %v", c.Kind, r)
		}
	}()
	fn(c)
}

// close delivers everything already queued, then stops the goroutine.
func (n *notifier) close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		n.cond.Broadcast()
	}
	n.mu.Unlock()
	<-n.done
}
