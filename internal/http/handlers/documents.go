package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

// multipart framing and text fields ride on top of the file itself
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	log             *logger.Logger
	documentService services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{log: log.With("handler", "DocumentHandler"), documentService: documentService}
}

// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	list, page, err := h.documentService.List(c.Request.Context(), services.DocumentListQuery{
		Category:  c.Query("category"),
		ProjectID: projectID,
		Search:    c.Query("search"),
		Page:      pageQuery(c),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, list, page)
}

// GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// POST /api/documents
// Accepts multipart/form-data (optional "file" part plus metadata fields) or a JSON body.
func (h *DocumentHandler) Create(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var in services.DocumentInput
		if !bindJSON(c, &in) {
			return
		}
		doc, err := h.documentService.Create(c.Request.Context(), callerID(c), in, nil)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondCreated(c, doc)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxDocumentBytes+multipartOverhead)
	in, err := documentForm(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	var upload *services.Upload
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			response.RespondError(c, apierr.BadRequest("invalid_file", "could not read uploaded file"))
			return
		}
		defer f.Close()
		upload = &services.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		response.RespondError(c, formError(err))
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), callerID(c), in, upload)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	h.log.Info("Document created", "document_id", doc.ID.String(), "storage", doc.StorageBackend)
	response.RespondCreated(c, doc)
}

// PUT /api/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.DocumentInput
	if !bindJSON(c, &in) {
		return
	}
	doc, err := h.documentService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Document deleted")
}

func documentForm(c *gin.Context) (services.DocumentInput, error) {
	var in services.DocumentInput
	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		return in, formError(err)
	}
	for key, dst := range map[string]**string{
		"title":       &in.Title,
		"description": &in.Description,
		"category":    &in.Category,
		"fileUrl":     &in.FileURL,
	} {
		if v, ok := c.GetPostForm(key); ok {
			*dst = &v
		}
	}
	for _, raw := range c.PostFormArray("tags") {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				in.Tags = append(in.Tags, t)
			}
		}
	}
	if raw := strings.TrimSpace(c.PostForm("projectId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return in, apierr.Validation(map[string]string{"projectId": "must be a valid UUID"})
		}
		in.ProjectID = &id
	}
	return in, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.Validation(map[string]string{"file": "file exceeds the 25 MiB limit"})
	}
	if errors.Is(err, multipart.ErrMessageTooLarge) {
		return apierr.Validation(map[string]string{"file": "file exceeds the 25 MiB limit"})
	}
	return apierr.BadRequest("invalid_request", "malformed multipart form")
}
