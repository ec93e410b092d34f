package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func decodeProofLinks(raw datatypes.JSON) []string {
	var links []string
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil
	}
	return links
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

func pageMeta(page, pageSize int, total int64, totalPages int) map[string]any {
	return map[string]any{
		"page":        page,
		"limit":       pageSize,
		"total":       total,
		"total_pages": totalPages,
	}
}
