package realtime

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"denti-chat/errors"
	"denti-chat/observability"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *Hub) {
	t.Helper()
	hub := NewHub()
	return NewDispatcher(hub, slog.Default(), observability.NewMetrics(prometheus.NewRegistry())), hub
}

func drain(t *testing.T, conn *Conn) map[string]any {
	t.Helper()
	select {
	case frame := <-conn.Out:
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(frame, &decoded))
		return decoded
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestDispatcher_Send(t *testing.T) {
	t.Run("queues the serialized payload on the connection", func(t *testing.T) {
		req := require.New(t)
		dispatcher, hub := newTestDispatcher(t)

		conn := NewConn("conn-1")
		hub.Add(conn)

		req.NoError(dispatcher.Send("conn-1", map[string]string{"type": "ping"}))
		req.Equal("ping", drain(t, conn)["type"])
	})

	t.Run("reports a missing connection as gone", func(t *testing.T) {
		dispatcher, _ := newTestDispatcher(t)
		err := dispatcher.Send("never-registered", map[string]string{"type": "ping"})
		require.ErrorIs(t, err, errors.ErrConnectionGone)
	})

	t.Run("reports a closed connection as gone", func(t *testing.T) {
		req := require.New(t)
		dispatcher, hub := newTestDispatcher(t)

		conn := NewConn("conn-1")
		hub.Add(conn)
		conn.Close()

		err := dispatcher.Send("conn-1", map[string]string{"type": "ping"})
		req.ErrorIs(err, errors.ErrConnectionGone)
	})

	t.Run("reports a full outbound queue without classifying it gone", func(t *testing.T) {
		req := require.New(t)
		dispatcher, hub := newTestDispatcher(t)

		conn := NewConn("conn-1")
		hub.Add(conn)
		for i := 0; i < sendBuffer; i++ {
			req.NoError(conn.Enqueue([]byte("{}")))
		}

		err := dispatcher.Send("conn-1", map[string]string{"type": "ping"})
		req.Error(err)
		req.NotErrorIs(err, errors.ErrConnectionGone)
	})
}

func TestDispatcher_FanoutCollectsIndependentResults(t *testing.T) {
	req := require.New(t)
	dispatcher, hub := newTestDispatcher(t)

	live := NewConn("live")
	hub.Add(live)
	dead := NewConn("dead")
	hub.Add(dead)
	dead.Close()

	results := dispatcher.Fanout([]string{"dead", "live", "unknown"}, map[string]string{"type": "message"})
	req.Len(results, 3)

	byID := make(map[string]DeliveryResult, len(results))
	for _, result := range results {
		byID[result.ConnectionID] = result
	}
	req.Equal(Stale, byID["dead"].Status)
	req.Equal(Delivered, byID["live"].Status)
	req.Equal(Stale, byID["unknown"].Status)

	// The live sibling still got the frame.
	req.Equal("message", drain(t, live)["type"])
}

func TestConn_CloseIsIdempotentAndWakesTheWritePump(t *testing.T) {
	req := require.New(t)
	conn := NewConn("conn-1")

	req.NoError(conn.Enqueue([]byte("{}")))
	conn.Close()
	conn.Close()

	// Queued frames drain, then the channel reports closed.
	_, open := <-conn.Out
	req.True(open)
	_, open = <-conn.Out
	req.False(open)

	req.ErrorIs(conn.Enqueue([]byte("{}")), errors.ErrConnectionGone)
}

func TestHub_AddRemoveGet(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	conn := NewConn("conn-1")
	hub.Add(conn)
	req.Equal(1, hub.Len())

	got, ok := hub.Get("conn-1")
	req.True(ok)
	req.Same(conn, got)

	hub.Remove("conn-1")
	req.Equal(0, hub.Len())
	_, ok = hub.Get("conn-1")
	req.False(ok)
}
