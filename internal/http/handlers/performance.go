package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type PerformanceTestHandler struct {
	perfService services.PerformanceTestService
}

func NewPerformanceTestHandler(perfService services.PerformanceTestService) *PerformanceTestHandler {
	return &PerformanceTestHandler{perfService: perfService}
}

// GET /api/performance-tests
func (h *PerformanceTestHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	list, page, err := h.perfService.List(c.Request.Context(), services.PerformanceListQuery{
		Status:    c.Query("status"),
		ProjectID: projectID,
		Page:      pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/performance-tests/:id
func (h *PerformanceTestHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pt, err := h.perfService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, pt)
}

// POST /api/performance-tests
func (h *PerformanceTestHandler) Create(c *gin.Context) {
	var in services.PerformanceTestInput
	if !bindJSON(c, &in) {
		return
	}
	pt, err := h.perfService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, pt)
}

// DELETE /api/performance-tests/:id
func (h *PerformanceTestHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.perfService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Performance test deleted")
}
