package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesPeersNotSelf(t *testing.T) {
	bus := NewBus()

	var aGot, bGot []Message
	a := bus.Open("app", func(m Message) { aGot = append(aGot, m) })
	b := bus.Open("app", func(m Message) { bGot = append(bGot, m) })
	defer a.Close()
	defer b.Close()

	err := a.Publish(Message{Kind: KindSet, Path: "x", Value: 1})
	require.NoError(t, err)

	require.Len(t, bGot, 1)
	assert.Equal(t, KindSet, bGot[0].Kind)
	assert.Equal(t, "x", bGot[0].Path)
	assert.Equal(t, float64(1), bGot[0].Value, "values cross the channel with JSON typing")
	assert.Equal(t, a.ID(), bGot[0].Sender)

	assert.Empty(t, aGot, "publisher must not receive its own message")
}

func TestBus_ChannelsAreIsolatedByName(t *testing.T) {
	bus := NewBus()

	var got []Message
	a := bus.Open("app-a", func(m Message) {})
	b := bus.Open("app-b", func(m Message) { got = append(got, m) })
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Publish(Message{Kind: KindSet, Path: "x", Value: 1}))
	assert.Empty(t, got, "message leaked across channel names")
}

func TestBus_ValueIsIsolatedPerReceiver(t *testing.T) {
	bus := NewBus()

	var received map[string]any
	a := bus.Open("app", func(m Message) {})
	b := bus.Open("app", func(m Message) { received = m.Value.(map[string]any) })
	defer a.Close()
	defer b.Close()

	original := map[string]any{"name": "ada"}
	require.NoError(t, a.Publish(Message{Kind: KindSet, Path: "user", Value: original}))

	received["name"] = "mutated"
	assert.Equal(t, "ada", original["name"], "receiver mutation visible to sender")
}

func TestEndpoint_CloseStopsDeliveryAndPublish(t *testing.T) {
	bus := NewBus()

	var got []Message
	a := bus.Open("app", func(m Message) {})
	b := bus.Open("app", func(m Message) { got = append(got, m) })

	require.NoError(t, b.Close())
	require.NoError(t, a.Publish(Message{Kind: KindSet, Path: "x", Value: 1}))
	assert.Empty(t, got, "closed endpoint received a message")

	require.NoError(t, b.Close(), "Close must be idempotent")

	require.NoError(t, a.Close())
	assert.Error(t, a.Publish(Message{Kind: KindSet, Path: "x"}), "publish after close must fail")
}

func TestBus_ClearAppMessage(t *testing.T) {
	bus := NewBus()

	var got []Message
	a := bus.Open("app", func(m Message) {})
	b := bus.Open("app", func(m Message) { got = append(got, m) })
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Publish(Message{Kind: KindClearApp, AppStorageKey: "app"}))
	require.Len(t, got, 1)
	assert.Equal(t, KindClearApp, got[0].Kind)
	assert.Equal(t, "app", got[0].AppStorageKey)
}
