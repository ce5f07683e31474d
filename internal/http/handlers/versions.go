package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type VersionHistoryHandler struct {
	versionService services.VersionHistoryService
}

func NewVersionHistoryHandler(versionService services.VersionHistoryService) *VersionHistoryHandler {
	return &VersionHistoryHandler{versionService: versionService}
}

// GET /api/version-history
func (h *VersionHistoryHandler) List(c *gin.Context) {
	list, page, err := h.versionService.List(c.Request.Context(), services.VersionListQuery{
		ReleaseType: c.Query("releaseType"),
		Page:        pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/version-history/latest
func (h *VersionHistoryHandler) Latest(c *gin.Context) {
	v, err := h.versionService.Latest(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// GET /api/version-history/:id
func (h *VersionHistoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	v, err := h.versionService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// POST /api/version-history
func (h *VersionHistoryHandler) Create(c *gin.Context) {
	var in services.VersionInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.versionService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, v)
}

// PUT /api/version-history/:id
func (h *VersionHistoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.VersionInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.versionService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, v)
}

// DELETE /api/version-history/:id
func (h *VersionHistoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.versionService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Version deleted")
}
