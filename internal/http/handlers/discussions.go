package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type DiscussionHandler struct {
	discussionService services.DiscussionService
}

func NewDiscussionHandler(discussionService services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

// GET /api/discussions
func (h *DiscussionHandler) List(c *gin.Context) {
	list, page, err := h.discussionService.List(c.Request.Context(), services.DiscussionListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/discussions/:id
func (h *DiscussionHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	thread, err := h.discussionService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, thread)
}

// POST /api/discussions
func (h *DiscussionHandler) Create(c *gin.Context) {
	var in services.DiscussionInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.discussionService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, d)
}

// PUT /api/discussions/:id
func (h *DiscussionHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.DiscussionInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.discussionService.Update(c.Request.Context(), callerID(c), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// DELETE /api/discussions/:id
func (h *DiscussionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.discussionService.Delete(c.Request.Context(), callerID(c), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Discussion deleted")
}

// GET /api/discussions/:id/replies
func (h *DiscussionHandler) Replies(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	replies, err := h.discussionService.Replies(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, replies)
}

// POST /api/discussions/:id/replies
func (h *DiscussionHandler) Reply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.discussionService.Reply(c.Request.Context(), callerID(c), id, req.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, reply)
}
