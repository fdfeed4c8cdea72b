package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-relief-server/models"
)

// register sends a client to the hub and waits until it is tracked
func registerViewer(t *testing.T, hub *Hub, userID, deliveryID string) *Client {
	t.Helper()
	client := &Client{
		Hub:        hub,
		UserID:     userID,
		DeliveryID: deliveryID,
		Send:       make(chan []byte, 8),
	}
	hub.Register <- client
	return client
}

func receiveUpdate(t *testing.T, client *Client) Update {
	t.Helper()
	select {
	case data := <-client.Send:
		var update Update
		require.NoError(t, json.Unmarshal(data, &update))
		return update
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestHubFansOutToDeliveryViewers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	viewerA := registerViewer(t, hub, "user-a", "delivery-1")
	viewerB := registerViewer(t, hub, "user-b", "delivery-1")
	other := registerViewer(t, hub, "user-c", "delivery-2")

	hub.PublishLocation("delivery-1", models.DeliveryLocation{
		Lat:        33.50,
		Lng:        36.30,
		ReportedAt: time.Now().UTC(),
	})

	for _, viewer := range []*Client{viewerA, viewerB} {
		update := receiveUpdate(t, viewer)
		assert.Equal(t, "location", update.Type)
		assert.Equal(t, "delivery-1", update.DeliveryID)
	}

	// Viewers of other deliveries see nothing
	select {
	case <-other.Send:
		t.Fatal("viewer of another delivery received the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishesStatusChanges(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	viewer := registerViewer(t, hub, "user-a", "delivery-1")

	hub.PublishStatus("delivery-1", models.StatusOutForDelivery)

	update := receiveUpdate(t, viewer)
	assert.Equal(t, "status", update.Type)

	data, ok := update.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.StatusOutForDelivery), data["status"])
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	viewer := registerViewer(t, hub, "user-a", "delivery-1")
	hub.Unregister <- viewer

	select {
	case _, open := <-viewer.Send:
		assert.False(t, open, "send channel should be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send channel to close")
	}

	// Publishing afterwards must not panic or block
	hub.PublishLocation("delivery-1", models.DeliveryLocation{Lat: 1, Lng: 1, ReportedAt: time.Now().UTC()})
	time.Sleep(20 * time.Millisecond)
}

func TestHubDropsUpdatesForSlowViewers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{
		Hub:        hub,
		UserID:     "slow",
		DeliveryID: "delivery-1",
		Send:       make(chan []byte), // no buffer, never drained
	}
	hub.Register <- slow

	// The hub must keep running even though the viewer never reads
	for i := 0; i < 10; i++ {
		hub.PublishLocation("delivery-1", models.DeliveryLocation{
			Lat:        float64(i),
			Lng:        float64(i),
			ReportedAt: time.Now().UTC(),
		})
	}

	fast := registerViewer(t, hub, "fast", "delivery-1")
	hub.PublishLocation("delivery-1", models.DeliveryLocation{Lat: 99, Lng: 99, ReportedAt: time.Now().UTC()})

	update := receiveUpdate(t, fast)
	assert.Equal(t, "location", update.Type)
}
