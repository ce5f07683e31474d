package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type TestCaseHandler struct {
	testCaseService services.TestCaseService
}

func NewTestCaseHandler(testCaseService services.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{testCaseService: testCaseService}
}

// GET /api/test-cases
func (h *TestCaseHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	assignedTo, ok := queryID(c, "assignedTo")
	if !ok {
		return
	}
	list, page, err := h.testCaseService.List(c.Request.Context(), services.TestCaseListQuery{
		ProjectID:  projectID,
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Type:       c.Query("type"),
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

// GET /api/test-cases/:id
func (h *TestCaseHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tc, err := h.testCaseService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tc)
}

// POST /api/test-cases
func (h *TestCaseHandler) Create(c *gin.Context) {
	var in services.TestCaseInput
	if !bindJSON(c, &in) {
		return
	}
	tc, err := h.testCaseService.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, tc)
}

// PUT /api/test-cases/:id
func (h *TestCaseHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.TestCaseInput
	if !bindJSON(c, &in) {
		return
	}
	tc, err := h.testCaseService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, tc)
}

// DELETE /api/test-cases/:id
func (h *TestCaseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.testCaseService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Test case deleted")
}

// POST /api/test-cases/:id/results
func (h *TestCaseHandler) AddResult(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.TestResultInput
	if !bindJSON(c, &in) {
		return
	}
	result, tc, err := h.testCaseService.AddResult(c.Request.Context(), id, callerID(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"result": result, "testCase": tc})
}

// GET /api/test-cases/:id/results
func (h *TestCaseHandler) Results(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	results, err := h.testCaseService.Results(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, results)
}

// GET /api/testing/suites
func (h *TestCaseHandler) Suites(c *gin.Context) {
	suites, err := h.testCaseService.Suites(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, suites)
}

// GET /api/testing/dashboard-stats
func (h *TestCaseHandler) DashboardStats(c *gin.Context) {
	stats, err := h.testCaseService.DashboardStats(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/testing/self-test
func (h *TestCaseHandler) SelfTest(c *gin.Context) {
	checklist, err := h.testCaseService.SelfTest()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, checklist)
}
