package http

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

func TestShutdownEndsOpenStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub(logger.Nop())
	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) {
		client := hub.NewClient(uuid.New())
		hub.AddChannel(client, realtime.ChannelActivity)
		hub.ServeHTTP(c.Writer, c.Request, client)
		hub.CloseClient(client)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := NewServer(engine, ln.Addr().String())
	s.OnShutdown(hub.CloseAll)
	go func() { _ = s.srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/stream")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	started := time.Now()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if waited := time.Since(started); waited > 2*time.Second {
		t.Fatalf("shutdown waited %v on an open stream", waited)
	}
}
