package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type UIUXTaskHandler struct {
	taskService services.UIUXTaskService
}

func NewUIUXTaskHandler(taskService services.UIUXTaskService) *UIUXTaskHandler {
	return &UIUXTaskHandler{taskService: taskService}
}

// GET /api/uiux-tasks
func (h *UIUXTaskHandler) List(c *gin.Context) {
	assignedTo, ok := queryID(c, "assignedTo")
	if !ok {
		return
	}
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	list, page, err := h.taskService.List(c.Request.Context(), services.UIUXTaskListQuery{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: assignedTo,
		ProjectID:  projectID,
		Page:       pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/uiux-tasks/:id
func (h *UIUXTaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, task)
}

// POST /api/uiux-tasks
func (h *UIUXTaskHandler) Create(c *gin.Context) {
	var in services.UIUXTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, task)
}

// PUT /api/uiux-tasks/:id
func (h *UIUXTaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.UIUXTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, task)
}

// DELETE /api/uiux-tasks/:id
func (h *UIUXTaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Task deleted")
}
