package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client still registered after unregister")
	}
}

func TestBroadcastOrderReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("order.created", map[string]string{"order_id": "test-123"})

	for i, client := range []*Client{client1, client2} {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("failed to unmarshal message: %v", err)
			}
			if received.Type != "order.created" {
				t.Errorf("expected type 'order.created', got '%s'", received.Type)
			}
			var payload map[string]string
			if err := json.Unmarshal(received.Payload, &payload); err != nil {
				t.Fatalf("failed to unmarshal payload: %v", err)
			}
			if payload["order_id"] != "test-123" {
				t.Errorf("expected order_id 'test-123', got '%s'", payload["order_id"])
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastWithFullBufferDropsClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Client with no buffer space
	client := &Client{
		hub:  hub,
		send: make(chan []byte),
	}

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Nobody reads from client.send, so the broadcast cannot be delivered
	hub.BroadcastOrder("order.created", map[string]string{"order_id": "test-456"})
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client with full send buffer should have been dropped")
	}
}

func TestBroadcastNoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Should not panic or block with no registered clients
	hub.BroadcastOrder("order.status_changed", map[string]string{"order_id": "test-789"})
	time.Sleep(10 * time.Millisecond)
}
