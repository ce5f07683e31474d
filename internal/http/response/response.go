package response

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
)

type Envelope struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Pagination *repoutil.Pagination `json:"pagination,omitempty"`
}

type ErrorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

var exposeDetail atomic.Bool

// ExposeErrorDetail controls whether error envelopes carry the underlying error text.
// It is switched off in production.
func ExposeErrorDetail(on bool) { exposeDetail.Store(on) }

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func RespondMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func RespondPage(c *gin.Context, data any, page repoutil.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &page})
}

// RespondError classifies err and writes the failure envelope.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	ae := apierr.From(err)
	body := ErrorEnvelope{
		Success: false,
		Message: publicMessage(ae),
		Code:    ae.Code,
		Errors:  ae.Fields,
	}
	if exposeDetail.Load() {
		body.Error = err.Error()
	}
	_ = c.Error(err)
	c.JSON(ae.Status, body)
}

// Abort is RespondError for middleware: it stops the handler chain.
func Abort(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// publicMessage never echoes driver or repository text: only messages a
// service chose for the caller are passed through.
func publicMessage(ae *apierr.Error) string {
	switch {
	case ae.Status >= http.StatusInternalServerError:
		return "Internal server error"
	case len(ae.Fields) > 0:
		return "Validation failed"
	case ae.Public != "":
		return ae.Public
	case errors.Is(ae, apierr.ErrConflict):
		return "Resource already exists"
	}
	return http.StatusText(ae.Status)
}
