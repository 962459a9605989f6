package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 6
	maxPageSize     = 10
)

// pageParams are the normalized page/limit query parameters.
type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// parsePagination reads ?page= and ?limit=, clamping limit to the allowed
// range. Malformed values fall back to the defaults.
func parsePagination(c *gin.Context) pageParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return pageParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// pagedResponse is the envelope for paginated listings.
type pagedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func newPagedResponse(c *gin.Context, params pageParams, total int64, results interface{}) pagedResponse {
	resp := pagedResponse{Count: total, Results: results}
	if int64(params.Page*params.Limit) < total {
		resp.Next = pageLink(c, params.Page+1, params.Limit)
	}
	if params.Page > 1 {
		resp.Previous = pageLink(c, params.Page-1, params.Limit)
	}
	return resp
}

func pageLink(c *gin.Context, page, limit int) *string {
	query := c.Request.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, query.Encode())
	return &link
}
