package app

import (
	"sync"

	"kombio/internal/domain"

	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 128

// Stream is the observable, read-only feed of game state snapshots.
// Every reducer-produced snapshot is delivered to each subscriber exactly
// once, in order, provided the subscriber keeps draining its channel; a
// subscriber that falls more than the buffer behind loses snapshots and is
// warned about in the log.
type Stream struct {
	mu     sync.Mutex
	subs   map[uint64]chan *domain.GameState
	nextID uint64
	log    *logrus.Entry
}

// NewStream builds an empty stream.
func NewStream(log *logrus.Entry) *Stream {
	return &Stream{subs: make(map[uint64]chan *domain.GameState), log: log}
}

// Subscribe registers a new observer. The returned cancel function removes
// the subscription and closes the channel.
func (st *Stream) Subscribe() (<-chan *domain.GameState, func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextID
	st.nextID++
	ch := make(chan *domain.GameState, subscriberBuffer)
	st.subs[id] = ch

	cancel := func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if sub, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans a snapshot out to every subscriber.
func (st *Stream) Publish(s *domain.GameState) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, ch := range st.subs {
		select {
		case ch <- s:
		default:
			st.log.WithField("subscriber", id).Warn("state stream subscriber too slow, dropping snapshot")
		}
	}
}
