package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/pagination"
)

// Profile renders an author's page: their posts, post count, follower
// count, and — for authenticated viewers — whether they already follow
// the author.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.ParseNumber(c.DefaultQuery("page", "1"))

	profile, err := h.profiles.Profile(ctx, c.Param("username"), middleware.CurrentUserID(c), page)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}

	// Following is tri-state in the service; templates get it flattened.
	h.render(c, http.StatusOK, "profile", gin.H{
		"Author":        profile.Author,
		"Page":          profile.Page,
		"PostCount":     profile.PostCount,
		"FollowerCount": profile.FollowerCount,
		"Authenticated": profile.Following != nil,
		"IsFollowing":   profile.Following != nil && *profile.Following,
	})
}
