package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestBroadcasterRegisterUnregister(t *testing.T) {
	b := NewBroadcaster()

	c1 := b.Register("session1")
	c2 := b.Register("session1")
	c3 := b.Register("session2")

	if b.ClientCount("session1") != 2 {
		t.Fatalf("expected 2 clients for session1, got %d", b.ClientCount("session1"))
	}
	if b.ClientCount("session2") != 1 {
		t.Fatalf("expected 1 client for session2, got %d", b.ClientCount("session2"))
	}

	b.Unregister(c1)
	if b.ClientCount("session1") != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", b.ClientCount("session1"))
	}

	b.Unregister(c2)
	b.Unregister(c3)
	if b.ClientCount("session1") != 0 || b.ClientCount("session2") != 0 {
		t.Fatal("expected 0 clients after full unregister")
	}
}

func TestBroadcasterDoubleUnregister(t *testing.T) {
	b := NewBroadcaster()
	c := b.Register("session1")
	b.Unregister(c)
	b.Unregister(c) // should not panic
}

func TestPublishRoutesBySession(t *testing.T) {
	b := NewBroadcaster()

	c1 := b.Register("session1")
	c2 := b.Register("session1")
	c3 := b.Register("session2")

	b.Publish("session1", Event{Type: "cell_update", Data: map[string]string{"square": "1,0"}})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.ch:
			var ev Event
			if err := json.Unmarshal([]byte(msg), &ev); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Type != "cell_update" {
				t.Fatalf("expected a cell_update event, got %q", ev.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("client did not receive the event")
		}
	}

	// c3 is on session2, should not receive.
	select {
	case <-c3.ch:
		t.Fatal("session2 should not see session1 events")
	case <-time.After(50 * time.Millisecond):
		// ok
	}

	b.Unregister(c1)
	b.Unregister(c2)
	b.Unregister(c3)
}

func TestPublishSkipsFullChannel(t *testing.T) {
	b := NewBroadcaster()
	c := b.Register("session1")

	// Fill the channel.
	for range channelBuffer {
		b.Publish("session1", Event{Type: "fill"})
	}

	// This should not block.
	b.Publish("session1", Event{Type: "overflow"})

	b.Unregister(c)
}

func TestBroadcasterConcurrent(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := "session1"
			if i%2 == 0 {
				sessionID = "session2"
			}
			c := b.Register(sessionID)
			b.Publish(sessionID, Event{Type: "msg"})
			b.ClientCount(sessionID)
			b.Unregister(c)
		}(i)
	}
	wg.Wait()

	if b.ClientCount("session1") != 0 || b.ClientCount("session2") != 0 {
		t.Fatal("expected 0 clients after concurrent test")
	}
}

func TestServeSSEDeliversEvents(t *testing.T) {
	b := NewBroadcaster()
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	var disconnected bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.ServeSSE(rec, req, "session1", func(c *Client) {
			c.Send(Event{Type: "snapshot"})
		}, func() {
			disconnected = true
		})
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount("session1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(time.Millisecond)
	}
	b.Publish("session1", Event{Type: "cell_update"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, `"type":"snapshot"`) {
		t.Fatalf("expected the connect snapshot in %q", body)
	}
	if !strings.Contains(body, `"type":"cell_update"`) {
		t.Fatalf("expected the published event in %q", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !disconnected {
		t.Fatal("expected the disconnect hook to run")
	}
	if b.ClientCount("session1") != 0 {
		t.Fatal("expected the subscriber to be unregistered")
	}
}
