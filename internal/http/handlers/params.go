package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
)

// pathID parses the :id parameter, answering 400 when it is not a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_id", "id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID filter; a blank value means no filter.
func queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, apierr.Validation(map[string]string{key: "must be a valid UUID"}))
		return nil, false
	}
	return &id, true
}

// pageQuery reads page/limit. Unparsable values fall back to the defaults.
func pageQuery(c *gin.Context) repoutil.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repoutil.Page{Page: page, Limit: limit}.Normalize()
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.RespondError(c, apierr.BadRequest("invalid_request", "request body is required"))
			return false
		}
		response.RespondError(c, apierr.BadRequest("invalid_request", "malformed JSON body"))
		return false
	}
	return true
}

func callerID(c *gin.Context) uuid.UUID {
	return ctxutil.UserID(c.Request.Context())
}
