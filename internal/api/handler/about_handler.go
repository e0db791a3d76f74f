package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Static informational pages.

func (h *Handler) AboutAuthor(c *gin.Context) {
	h.render(c, http.StatusOK, "about_author", nil)
}

func (h *Handler) AboutTech(c *gin.Context) {
	h.render(c, http.StatusOK, "about_tech", nil)
}
