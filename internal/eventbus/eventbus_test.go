package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Publish(Incumbent{Objective: 600, Nodes: 12})

	ev := <-sub
	inc, ok := ev.(Incumbent)
	require.True(t, ok)
	assert.Equal(t, 600.0, inc.Objective)
	assert.Equal(t, 12, inc.Nodes)
}

func TestBusFanOut(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish(NodeProgress{Nodes: 100, BestBound: 50})

	assert.Equal(t, NodeProgress{Nodes: 100, BestBound: 50}, <-a)
	assert.Equal(t, NodeProgress{Nodes: 100, BestBound: 50}, <-b)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := New()
	defer bus.Close()

	bus.Subscribe() // never drained
	for i := 0; i < 200; i++ {
		bus.Publish(NodeProgress{Nodes: i})
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	bus.Close()

	_, open := <-sub
	assert.False(t, open)

	// Publishing and closing again are harmless after Close.
	bus.Publish(Incumbent{})
	bus.Close()

	late := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
