package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/pagination"
)

// Index renders the global feed. Only the post-list fragment is cached,
// keyed by page number; the nav and the rest of the chrome are rendered
// per request so one viewer's session never appears in another's page.
// Within the TTL a cached fragment is served even if posts changed.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.ParseNumber(c.DefaultQuery("page", "1"))

	key := cache.IndexPageKey(page)
	fragment, ok := h.fragments.Get(ctx, key)
	if !ok {
		pg, err := h.feeds.Index(ctx, page)
		if err != nil {
			h.ServerError(c)
			return
		}
		fragment, err = h.renderFragment("index_posts", gin.H{"Page": pg})
		if err != nil {
			h.ServerError(c)
			return
		}
		h.fragments.Set(ctx, key, fragment)
	}

	h.render(c, http.StatusOK, "index", gin.H{"Feed": template.HTML(fragment)})
}

// GroupFeed renders one group's posts.
func (h *Handler) GroupFeed(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.ParseNumber(c.DefaultQuery("page", "1"))

	group, pg, err := h.feeds.Group(ctx, c.Param("slug"), page)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}

	h.render(c, http.StatusOK, "group_list", gin.H{
		"Group": group,
		"Page":  pg,
	})
}

// FollowFeed renders posts authored by anyone the requester follows.
func (h *Handler) FollowFeed(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.ParseNumber(c.DefaultQuery("page", "1"))

	pg, err := h.feeds.Following(ctx, middleware.CurrentUserID(c), page)
	if err != nil {
		h.ServerError(c)
		return
	}

	h.render(c, http.StatusOK, "follow", gin.H{"Page": pg})
}
