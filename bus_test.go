package snitray

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishAndSubscribe(t *testing.T) {
	b := newEventBus()
	ch, _, cancel := b.subscribe()
	defer cancel()

	b.publish(addEvent("addr1", StatusNotifierItem{ID: "foo"}))

	select {
	case e := <-ch:
		assert.Equal(t, EventAdd, e.Kind)
		assert.Equal(t, "addr1", e.Address)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBusDropsOldestOnFullChannel(t *testing.T) {
	b := newEventBus()
	ch, lag, cancel := b.subscribe()
	defer cancel()

	// Publish one more than capacity: addr0 is the oldest and must be the
	// one evicted, since the bus keeps the newest events, not the first-N.
	total := eventBusCapacity + 1
	for i := 0; i < total; i++ {
		b.publish(addEvent(addressForIndex(i), StatusNotifierItem{}))
	}

	assert.EqualValues(t, 1, lag(), "exactly one event should have been dropped to make room")

	var got []string
drain:
	for {
		select {
		case e := <-ch:
			got = append(got, e.Address)
		default:
			break drain
		}
	}

	require.Len(t, got, eventBusCapacity)
	assert.Equal(t, addressForIndex(1), got[0], "oldest surviving event is index 1; index 0 was dropped")
	assert.Equal(t, addressForIndex(total-1), got[len(got)-1], "newest event must survive")
}

func addressForIndex(i int) string {
	return "addr" + strconv.Itoa(i)
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	b := newEventBus()
	ch, _, cancel := b.subscribe()
	cancel()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestEventBusMultipleSubscribersIndependent(t *testing.T) {
	b := newEventBus()
	ch1, _, cancel1 := b.subscribe()
	defer cancel1()
	ch2, _, cancel2 := b.subscribe()
	defer cancel2()

	b.publish(removeEvent("addr1"))

	require.Len(t, ch1, 1)
	require.Len(t, ch2, 1)
}
