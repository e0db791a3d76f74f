package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/form"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

// AddComment creates a comment on a post and redirects to the post detail
// whatever the validation outcome: an invalid comment is silently dropped.
// That asymmetry with the post form is the documented contract.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("id")

	if _, err := h.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}

	var f form.CommentForm
	_ = c.ShouldBind(&f)
	if errs := form.Validate(f); len(errs) == 0 {
		if err := h.comments.Add(ctx, postID, middleware.CurrentUserID(c), f.Text); err != nil {
			logger.Error("comment create failed", zap.String("post", postID), zap.Error(err))
		}
	}

	c.Redirect(http.StatusFound, "/posts/"+postID+"/")
}
