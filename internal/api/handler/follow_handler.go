package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/logger"
)

// Follow subscribes the requester to an author. Self-follow and an
// already-existing edge are silent no-ops; either way the requester lands
// back on the author's profile.
func (h *Handler) Follow(c *gin.Context) {
	username := c.Param("username")

	err := h.relations.Follow(c.Request.Context(), middleware.CurrentUserID(c), username)
	switch {
	case err == nil, errors.Is(err, service.ErrFollowSelf):
	case errors.Is(err, repository.ErrUserNotFound):
		h.NotFound(c)
		return
	default:
		logger.Error("follow failed", zap.String("author", username), zap.Error(err))
		h.ServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+username+"/")
}

// Unfollow removes the edge if present; removing a missing edge is a
// no-op.
func (h *Handler) Unfollow(c *gin.Context) {
	username := c.Param("username")

	err := h.relations.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), username)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		h.NotFound(c)
		return
	default:
		logger.Error("unfollow failed", zap.String("author", username), zap.Error(err))
		h.ServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+username+"/")
}
