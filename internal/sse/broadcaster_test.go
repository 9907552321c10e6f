package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribePublish(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	events, unsub := b.Subscribe()
	defer unsub()

	b.Publish(Event{Type: EventEnvUpdated, Data: map[string]string{"file": ".env"}})

	ev := <-events
	assert.Equal(t, EventEnvUpdated, ev.Type)
}

func TestPublish_FanOut(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch1, unsub1 := b.Subscribe()
	ch2, unsub2 := b.Subscribe()
	defer unsub1()
	defer unsub2()

	assert.Equal(t, 2, b.ClientCount())

	b.Publish(Event{Type: EventBackupCreated})
	assert.Equal(t, EventBackupCreated, (<-ch1).Type)
	assert.Equal(t, EventBackupCreated, (<-ch2).Type)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	_, unsub := b.Subscribe()
	unsub()
	assert.Equal(t, 0, b.ClientCount())

	// Publishing after unsubscribe must not panic or block.
	b.Publish(Event{Type: EventKeySet})
}

func TestPublish_SlowClientDropped(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	events, unsub := b.Subscribe()
	defer unsub()

	// Fill the buffer past capacity; extra events are dropped, not blocking.
	for i := 0; i < 200; i++ {
		b.Publish(Event{Type: EventEnvChanged})
	}

	received := 0
	for {
		select {
		case <-events:
			received++
		default:
			assert.Equal(t, 64, received)
			return
		}
	}
}

func TestClose(t *testing.T) {
	b := NewBroadcaster()
	events, _ := b.Subscribe()

	b.Close()
	_, ok := <-events
	assert.False(t, ok, "channel closed")
	assert.Equal(t, 0, b.ClientCount())
}
