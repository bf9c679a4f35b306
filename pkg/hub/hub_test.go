package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

func addClient(h *Hub, buf int) *Client {
	c := &Client{hub: h, send: make(chan Message, buf)}
	h.register <- c
	return c
}

func TestHub_BroadcastJSON(t *testing.T) {
	h, _ := startHub(t)
	a := addClient(h, 4)
	b := addClient(h, 4)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.BroadcastJSON(map[string]int{"total": 100}))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, JSONMessage, msg.Type)
			assert.JSONEq(t, `{"total":100}`, string(msg.Data))
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	slow := addClient(h, 0)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	h.BroadcastBinary([]byte{1, 2, 3})
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)

	_, ok := <-slow.send
	assert.False(t, ok, "slow client's channel is closed")
}

func TestHub_Unregister(t *testing.T) {
	h, _ := startHub(t)
	c := addClient(h, 1)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := addClient(h, 1)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-h.Done()

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount())
}
