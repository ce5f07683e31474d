package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type BugHandler struct {
	bugService services.BugService
}

func NewBugHandler(bugService services.BugService) *BugHandler {
	return &BugHandler{bugService: bugService}
}

// GET /api/bugs
func (h *BugHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	assignedTo, ok := queryID(c, "assignedTo")
	if !ok {
		return
	}
	list, page, err := h.bugService.List(c.Request.Context(), services.BugListQuery{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Severity:   c.Query("severity"),
		ProjectID:  projectID,
		AssignedTo: assignedTo,
		Search:     c.Query("search"),
		Page:       pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/bugs/stats
func (h *BugHandler) Stats(c *gin.Context) {
	stats, err := h.bugService.Stats(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/bugs/:id
func (h *BugHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	bug, err := h.bugService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, bug)
}

// POST /api/bugs
func (h *BugHandler) Create(c *gin.Context) {
	var in services.BugInput
	if !bindJSON(c, &in) {
		return
	}
	bug, err := h.bugService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, bug)
}

// PUT /api/bugs/:id
func (h *BugHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.BugInput
	if !bindJSON(c, &in) {
		return
	}
	bug, err := h.bugService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, bug)
}

// PATCH /api/bugs/:id/status
func (h *BugHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	bug, err := h.bugService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, bug)
}

// DELETE /api/bugs/:id
func (h *BugHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.bugService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Bug deleted")
}
