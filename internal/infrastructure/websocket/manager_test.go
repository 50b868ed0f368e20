package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m.Start(ctx)
	return m
}

func register(t *testing.T, m *Manager, userID string) *Client {
	t.Helper()
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 8),
	}
	m.Register <- client
	require.Eventually(t, func() bool {
		return m.JoinRoom("probe-"+userID, userID)
	}, time.Second, time.Millisecond)
	m.LeaveRoom("probe-"+userID, userID)
	return client
}

func TestJoinRoomRequiresConnection(t *testing.T) {
	m := startManager(t)

	require.False(t, m.JoinRoom("room1", "nobody"))

	register(t, m, "alice")
	require.True(t, m.JoinRoom("room1", "alice"))
	require.True(t, m.IsMember("room1", "alice"))
}

func TestBroadcastToRoomExcludesSender(t *testing.T) {
	m := startManager(t)

	alice := register(t, m, "alice")
	bob := register(t, m, "bob")
	carol := register(t, m, "carol")

	require.True(t, m.JoinRoom("room1", "alice"))
	require.True(t, m.JoinRoom("room1", "bob"))
	// carol never joins room1

	payload := NewEvent(EventMessage, "room1", map[string]string{"body": "hi"})
	m.BroadcastToRoom("room1", payload, "alice")

	select {
	case got := <-bob.Send:
		var event Event
		require.NoError(t, json.Unmarshal(got, &event))
		require.Equal(t, EventMessage, event.Type)
		require.Equal(t, "room1", event.RoomID)
	case <-time.After(time.Second):
		t.Fatal("bob did not receive the broadcast")
	}

	select {
	case <-alice.Send:
		t.Fatal("sender should not receive its own broadcast")
	default:
	}
	select {
	case <-carol.Send:
		t.Fatal("non-member should not receive the broadcast")
	default:
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	m := startManager(t)

	bob := register(t, m, "bob")
	require.True(t, m.JoinRoom("room1", "bob"))

	m.LeaveRoom("room1", "bob")
	require.False(t, m.IsMember("room1", "bob"))

	m.BroadcastToRoom("room1", []byte("hi"), "")
	select {
	case <-bob.Send:
		t.Fatal("bob left the room but still received a broadcast")
	default:
	}
}

func TestSendToUser(t *testing.T) {
	m := startManager(t)

	bob := register(t, m, "bob")
	m.SendToUser("bob", []byte("direct"))

	select {
	case got := <-bob.Send:
		require.Equal(t, []byte("direct"), got)
	case <-time.After(time.Second):
		t.Fatal("bob did not receive the direct payload")
	}

	// Unknown users are a no-op.
	m.SendToUser("nobody", []byte("direct"))
}

func TestBroadcastDuringUnregisterDoesNotPanic(t *testing.T) {
	m := startManager(t)

	for i := 0; i < 200; i++ {
		bob := register(t, m, "bob")
		require.True(t, m.JoinRoom("room1", "bob"))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 10; j++ {
				m.BroadcastToRoom("room1", []byte("hi"), "")
			}
		}()
		m.Unregister <- bob
		<-done

		require.Eventually(t, func() bool {
			return !m.IsMember("room1", "bob")
		}, time.Second, time.Millisecond)
	}
}

func TestTrySendAfterCloseReportsFailure(t *testing.T) {
	client := &Client{UserID: "bob", Send: make(chan []byte, 1)}

	require.True(t, client.trySend([]byte("hi")))
	client.closeSend()
	client.closeSend()
	require.False(t, client.trySend([]byte("late")))
}

func TestUnregisterRemovesRoomMembership(t *testing.T) {
	m := startManager(t)

	bob := register(t, m, "bob")
	require.True(t, m.JoinRoom("room1", "bob"))

	m.Unregister <- bob
	require.Eventually(t, func() bool {
		return !m.IsMember("room1", "bob")
	}, time.Second, time.Millisecond)

	_, open := <-bob.Send
	require.False(t, open)
}
