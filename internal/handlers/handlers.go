package handlers

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handlers holds the dependencies every handler needs.
type Handlers struct {
	DB *sql.DB
}

// currentUserID returns the user ID that the auth middleware resolved from
// the bearer token. Only call from routes behind middleware.AuthRequired.
func currentUserID(c *gin.Context) int64 {
	raw, _ := c.Get("userID")
	id, _ := raw.(int64)
	return id
}

// paramID parses a numeric path parameter, returning ok=false on garbage.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// jsonList decodes a JSON-array column into a string slice. NULL and
// malformed values come back as an empty list rather than an error.
func jsonList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}

// jsonListRaw encodes a string slice for storage in a JSON-array column.
func jsonListRaw(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
