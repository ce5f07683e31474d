package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	list, page, err := h.projectService.List(c.Request.Context(), services.ProjectListQuery{
		Status:   c.Query("status"),
		ClientID: clientID,
		Search:   c.Query("search"),
		Page:     pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var in services.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projectService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, p)
}

// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.projectService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Project deleted")
}
