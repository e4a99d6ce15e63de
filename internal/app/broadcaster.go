package app

import (
	"sync"

	"github.com/relabs-tech/tiltframe/internal/orientation"
)

// snapshotBroadcaster fans out orientation snapshots to websocket clients.
// It keeps the most recent value so new subscribers get an immediate one.
type snapshotBroadcaster struct {
	mu       sync.RWMutex
	subs     map[int]chan orientation.Snapshot
	nextID   int
	last     orientation.Snapshot
	haveLast bool
}

func newSnapshotBroadcaster() *snapshotBroadcaster {
	return &snapshotBroadcaster{
		subs: make(map[int]chan orientation.Snapshot),
	}
}

func (b *snapshotBroadcaster) Subscribe(buffer int) (int, <-chan orientation.Snapshot) {
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan orientation.Snapshot, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.haveLast {
		ch <- b.last
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return id, ch
}

func (b *snapshotBroadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Latest returns the last published snapshot.
func (b *snapshotBroadcaster) Latest() (orientation.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.haveLast
}

// Publish stores s and offers it to every subscriber. Slow subscribers
// miss snapshots instead of blocking the publisher.
func (b *snapshotBroadcaster) Publish(s orientation.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = s
	b.haveLast = true
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
