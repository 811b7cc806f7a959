package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

type PaginationParams struct {
	Limit int
}

// ParsePagination reads the limit query parameter. Missing or invalid
// values fall back to DefaultLimit and values above MaxLimit are capped.
func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
