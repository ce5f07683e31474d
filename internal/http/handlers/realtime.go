package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/events/stream
// Every stream joins the caller's own channel and the global activity feed.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID := callerID(c)
	if userID == uuid.Nil {
		response.RespondError(c, apierr.Unauthorized("unauthorized", "not authenticated"))
		return
	}
	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.hub.AddChannel(client, realtime.ChannelActivity)
	h.log.Info("SSE stream open", "user_id", userID.String(), "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "client_id", client.ID.String())
}
