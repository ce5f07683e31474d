package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/http/routes"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type SystemHandler struct {
	systemService services.SystemService
	manifest      *routes.Manifest
}

func NewSystemHandler(systemService services.SystemService, manifest *routes.Manifest) *SystemHandler {
	return &SystemHandler{systemService: systemService, manifest: manifest}
}

// GET /api/endpoints
func (h *SystemHandler) Endpoints(c *gin.Context) {
	response.RespondOK(c, h.manifest.Listing())
}

// GET /api/environment
func (h *SystemHandler) Environment(c *gin.Context) {
	response.RespondOK(c, h.systemService.Environment(c.Request.Context()))
}

// GET /api/integrations/status
func (h *SystemHandler) Integrations(c *gin.Context) {
	response.RespondOK(c, h.systemService.Integrations(c.Request.Context()))
}

// GET /api/coding/stats
func (h *SystemHandler) CodingStats(c *gin.Context) {
	stats, err := h.systemService.CodingStats(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/database/schema
func (h *SystemHandler) DatabaseSchema(c *gin.Context) {
	schema, err := h.systemService.DatabaseSchema(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, schema)
}
