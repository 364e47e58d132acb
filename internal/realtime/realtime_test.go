package realtime

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.allClients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.unicast)
	assert.NotNil(t, hub.metrics)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(MessageTypeNotification, map[string]string{"test": "data"})

	assert.Equal(t, MessageTypeNotification, msg.Type)
	assert.NotNil(t, msg.Payload)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("test_error", "Something went wrong")

	assert.Equal(t, MessageTypeError, msg.Type)

	payload, ok := msg.Payload.(ErrorPayload)
	assert.True(t, ok)
	assert.Equal(t, "test_error", payload.Code)
	assert.Equal(t, "Something went wrong", payload.Message)
}

func TestMessageParsePayload(t *testing.T) {
	msg := NewMessage(MessageTypePing, map[string]interface{}{
		"client_time": float64(1234567890),
	})

	var ping PingPayload
	err := msg.ParsePayload(&ping)
	assert.NoError(t, err)
	assert.Equal(t, int64(1234567890), ping.ClientTime)
}

func TestFlexibleTimeUnmarshal(t *testing.T) {
	// Unix milliseconds
	var ft FlexibleTime
	require.NoError(t, json.Unmarshal([]byte("1700000000000"), &ft))
	assert.Equal(t, time.UnixMilli(1700000000000), ft.Time)

	// RFC3339 string
	require.NoError(t, json.Unmarshal([]byte(`"2026-01-02T15:04:05Z"`), &ft))
	assert.Equal(t, 2026, ft.Year())

	// Garbage
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ft))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ft))
}

func TestMessageJSONRoundTrip(t *testing.T) {
	msg := NewMessage(MessageTypeLikeCountUpdate, CountUpdatePayload{
		TargetID:   "post-123",
		TargetKind: "post",
		Count:      7,
	})
	msg.ID = "msg-id"

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var parsed Message
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, MessageTypeLikeCountUpdate, parsed.Type)
	assert.Equal(t, "msg-id", parsed.ID)

	var payload CountUpdatePayload
	require.NoError(t, parsed.ParsePayload(&payload))
	assert.Equal(t, "post-123", payload.TargetID)
	assert.Equal(t, int64(7), payload.Count)
}

func TestHubMetricsStartEmpty(t *testing.T) {
	hub := NewHub()

	metrics := hub.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalConnections)
	assert.Equal(t, int64(0), metrics.ActiveConnections)
	assert.Equal(t, int64(0), metrics.MessagesSent)
}

func TestHubTracksOnlineUsers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	assert.False(t, hub.IsUserOnline("user-1"))

	client := NewClient(hub, nil, "user-1", "alice")
	hub.Register(client)

	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1")
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool {
		return !hub.IsUserOnline("user-1")
	}, time.Second, 5*time.Millisecond)
}

func TestHubUnicastReachesOnlyTarget(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := NewClient(hub, nil, "user-1", "alice")
	bob := NewClient(hub, nil, "user-2", "bob")
	hub.Register(alice)
	hub.Register(bob)

	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1") && hub.IsUserOnline("user-2")
	}, time.Second, 5*time.Millisecond)

	hub.SendToUser("user-1", NewMessage(MessageTypeSystem, SystemPayload{Event: "hello"}))

	select {
	case data := <-alice.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeSystem, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("alice never received the unicast")
	}

	select {
	case <-bob.send:
		t.Fatal("bob received a message addressed to alice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := NewClient(hub, nil, "user-1", "alice")
	bob := NewClient(hub, nil, "user-2", "bob")
	hub.Register(alice)
	hub.Register(bob)

	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1") && hub.IsUserOnline("user-2")
	}, time.Second, 5*time.Millisecond)

	hub.Broadcast(NewMessage(MessageTypeLikeCountUpdate, CountUpdatePayload{
		TargetID: "post-1", TargetKind: "post", Count: 3,
	}))

	for _, client := range []*Client{alice, bob} {
		select {
		case data := <-client.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, MessageTypeLikeCountUpdate, msg.Type)
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the broadcast", client.UserID)
		}
	}
}

func TestPusherDeliversNotificationFrame(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "user-1", "alice")
	hub.Register(client)
	assert.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1")
	}, time.Second, 5*time.Millisecond)

	pusher := NewPusher(hub)
	err := pusher.Push("user-1", &models.Notification{
		ID:          "notif-1",
		RecipientID: "user-1",
		Type:        models.NotificationLike,
		Title:       "New like",
	})
	require.NoError(t, err)

	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeNotification, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("notification frame never arrived")
	}
}
