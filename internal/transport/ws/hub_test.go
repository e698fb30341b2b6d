package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastFansOutToSessionClients(t *testing.T) {
	h := NewHub()
	c1 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: h}
	c2 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: h}
	other := &Connection{SessionID: "s2", Send: make(chan []byte, 4), Hub: h}
	h.Register(c1)
	h.Register(c2)
	h.Register(other)

	h.BroadcastToSession("s1", "chat_delta", map[string]string{"delta": "hi"})

	for _, conn := range []*Connection{c1, c2} {
		select {
		case data := <-conn.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, MsgChatDelta, msg.Type)
			assert.JSONEq(t, `{"delta":"hi"}`, string(msg.Payload))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("message leaked to another session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 1), Hub: h}
	h.Register(conn)
	h.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
