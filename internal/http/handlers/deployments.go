package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type DeploymentHandler struct {
	deploymentService services.DeploymentService
}

func NewDeploymentHandler(deploymentService services.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{deploymentService: deploymentService}
}

// GET /api/deployments
func (h *DeploymentHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	list, page, err := h.deploymentService.List(c.Request.Context(), services.DeploymentListQuery{
		Environment: c.Query("environment"),
		Status:      c.Query("status"),
		ProjectID:   projectID,
		Page:        pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/deployments/:id
func (h *DeploymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.deploymentService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// POST /api/deployments
func (h *DeploymentHandler) Create(c *gin.Context) {
	var in services.DeploymentInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.deploymentService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, d)
}

// PUT /api/deployments/:id
func (h *DeploymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.DeploymentInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.deploymentService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// PATCH /api/deployments/:id/status
func (h *DeploymentHandler) Transition(c *gin.Context) {
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
	d, err := h.deploymentService.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// DELETE /api/deployments/:id
func (h *DeploymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.deploymentService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Deployment deleted")
}
