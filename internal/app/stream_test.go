package app

import (
	"testing"

	"kombio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeliversInOrder(t *testing.T) {
	stream := NewStream(testLogger())
	updates, cancel := stream.Subscribe()
	defer cancel()

	a := &domain.GameState{Phase: domain.PhaseLobby}
	b := &domain.GameState{Phase: domain.PhasePlaying}
	stream.Publish(a)
	stream.Publish(b)

	require.Same(t, a, <-updates)
	require.Same(t, b, <-updates)
	assert.Empty(t, updates)
}

func TestStreamFansOut(t *testing.T) {
	stream := NewStream(testLogger())
	first, cancelFirst := stream.Subscribe()
	second, cancelSecond := stream.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	s := &domain.GameState{Phase: domain.PhasePlaying}
	stream.Publish(s)

	require.Same(t, s, <-first)
	require.Same(t, s, <-second)
}

func TestStreamCancelClosesChannel(t *testing.T) {
	stream := NewStream(testLogger())
	updates, cancel := stream.Subscribe()
	cancel()

	_, ok := <-updates
	assert.False(t, ok)

	// Publishing after cancel reaches nobody and does not panic.
	stream.Publish(&domain.GameState{})
}

func TestStreamDropsWhenSubscriberLags(t *testing.T) {
	stream := NewStream(testLogger())
	updates, cancel := stream.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		stream.Publish(&domain.GameState{})
	}
	// The buffer holds the first snapshots; the overflow is dropped rather
	// than blocking the publisher.
	assert.Len(t, updates, subscriberBuffer)
}
