package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

func recvEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func TestHubDeliversInOrderAndCleansUp(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, ChannelActivity)

	_ = hub.Publish(context.Background(), Activity(EventClientCreated, map[string]any{"seq": 1}))
	_ = hub.Publish(context.Background(), Activity(EventClientUpdated, map[string]any{"seq": 2}))

	if got := recvEvent(t, client.Outbound, time.Second); got.Type != EventClientCreated {
		t.Fatalf("first event: %s", got.Type)
	}
	if got := recvEvent(t, client.Outbound, time.Second); got.Type != EventClientUpdated {
		t.Fatalf("second event: %s", got.Type)
	}

	hub.CloseClient(client)
	hub.CloseClient(client)
	if hub.Subscribers(ChannelActivity) != 0 {
		t.Fatalf("client not removed from channel")
	}
	if _, ok := <-client.Outbound; ok {
		t.Fatalf("outbound should be closed")
	}
	hub.Broadcast(Activity(EventClientDeleted, nil))
}

func TestHubRoutesByChannel(t *testing.T) {
	hub := NewHub(logger.Nop())
	alice, bob := uuid.New(), uuid.New()
	a := hub.NewClient(alice)
	b := hub.NewClient(bob)
	hub.AddChannel(a, UserChannel(alice))
	hub.AddChannel(b, UserChannel(bob))

	hub.Broadcast(Event{Channel: UserChannel(alice), Type: EventBugCreated})
	if got := recvEvent(t, a.Outbound, time.Second); got.Type != EventBugCreated {
		t.Fatalf("alice: %s", got.Type)
	}
	select {
	case ev := <-b.Outbound:
		t.Fatalf("bob received %v", ev)
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, ChannelActivity)
	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(Activity(EventBugUpdated, i))
	}
	if len(c.Outbound) != outboundBuffer {
		t.Fatalf("expected full buffer, got %d", len(c.Outbound))
	}
}

func TestHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, ChannelActivity)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r, client)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}

	hub.Broadcast(Activity(EventVersionReleased, map[string]string{"version": "1.2.0"}))

	reader := bufio.NewReader(resp.Body)
	deadline := time.After(2 * time.Second)
	lines := make(chan string)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- line
		}
	}()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed early")
			}
			if strings.HasPrefix(line, "data: ") && strings.Contains(line, `"version.released"`) {
				hub.CloseClient(client)
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for streamed event")
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	if _, err := decodeEvent(`{"channel":"activity","type":"bug.created"}`); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := decodeEvent(`{"channel":"activity"}`); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := decodeEvent(`not json`); err == nil {
		t.Fatalf("expected error for bad json")
	}
}

func TestHubCloseAllEndsStreams(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, ChannelActivity)

	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(done)
		hub.ServeHTTP(w, r, client)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	hub.CloseAll()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream still open after CloseAll")
	}

	late := hub.NewClient(uuid.New())
	hub.AddChannel(late, ChannelActivity)
	if hub.Subscribers(ChannelActivity) != 0 {
		t.Fatalf("draining hub accepted a subscription")
	}
	if _, ok := <-late.Outbound; ok {
		t.Fatalf("late client should be closed")
	}
}
