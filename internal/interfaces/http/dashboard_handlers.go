package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/gst-billing/internal/domain/dashboard"
)

// filter reads ?filter=&start=&end=, defaulting the window to the configured one
func (h *Handlers) filter(c *gin.Context) (dashboard.Filter, bool) {
	window := c.Query("filter")
	if window == "" {
		window = string(h.defaultWindow)
	}

	f, err := dashboard.NewFilter(window, c.Query("start"), c.Query("end"))
	if err != nil {
		h.writeError(c, err)
		return dashboard.Filter{}, false
	}
	return f, true
}

// Dashboard handles GET /api/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	summary, err := h.dashboard.Summary(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// Register handles GET /api/register.xlsx
func (h *Handlers) Register(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	doc, err := h.dashboard.Register(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sendDocument(c, doc, false)
}
