// Package handlers implements the page endpoints. This file provides the
// shared response helpers: HTML error pages with consistent status
// handling, and the tiny query parameter parsers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkarlsen/go-blog-cache/internal/http/middleware"
)

// errorData feeds the error template.
type errorData struct {
	Status  string
	Message string
}

// Fail renders an HTML error page. 5xx responses are logged with request
// context before rendering.
func Fail(c *gin.Context, status int, message string) {
	if status >= 500 {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("message", message).
			Msg("request failed")
	}
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplates.ExecuteTemplate(c.Writer, "error", errorData{
		Status:  strconv.Itoa(status) + " " + http.StatusText(status),
		Message: message,
	})
	c.Abort()
}

// NotFound renders the standard 404 page.
func NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, "page not found")
}

// pageParam parses the "page" query parameter, defaulting to 1.
func pageParam(c *gin.Context) int {
	v := c.Query("page")
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
