package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type ClientHandler struct {
	clientService services.ClientService
}

func NewClientHandler(clientService services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// GET /api/clients?page=&limit=&status=&search=&sort=
func (h *ClientHandler) List(c *gin.Context) {
	list, page, err := h.clientService.List(c.Request.Context(), services.ClientListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Page:   pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/clients/search?query=
func (h *ClientHandler) Search(c *gin.Context) {
	list, err := h.clientService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, client)
}

// POST /api/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, client)
}

// PUT /api/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, client)
}

// DELETE /api/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Client deleted")
}
