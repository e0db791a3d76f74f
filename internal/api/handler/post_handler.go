package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/form"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var errInvalidImage = errors.New("unsupported image type")

// PostDetail renders a post with its author's post count, all comments,
// and an empty comment form.
func (h *Handler) PostDetail(c *gin.Context) {
	detail, err := h.posts.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}

	h.render(c, http.StatusOK, "post_detail", gin.H{
		"Post":      detail.Post,
		"PostCount": detail.AuthorPostCount,
		"Comments":  detail.Comments,
		"Errors":    map[string]string{},
	})
}

// PostCreateForm renders the empty creation form.
func (h *Handler) PostCreateForm(c *gin.Context) {
	h.renderPostForm(c, form.PostForm{}, map[string]string{}, false, "")
}

// PostCreate handles the creation submit. A valid form persists a post
// owned by the requester and redirects to their profile; an invalid form
// re-renders with field errors and status 200.
func (h *Handler) PostCreate(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	var f form.PostForm
	_ = c.ShouldBind(&f)
	errs := form.Validate(f)

	imagePath := ""
	if len(errs) == 0 {
		var err error
		imagePath, err = h.saveImage(c)
		if err != nil {
			errs["image"] = "Attach a jpg, png, gif, or webp image."
		}
	}
	if len(errs) > 0 {
		h.renderPostForm(c, f, errs, false, "")
		return
	}

	if _, err := h.posts.Create(ctx, user.ID, f.Text, f.GroupID, imagePath); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			errs["group"] = "Unknown group."
			h.renderPostForm(c, f, errs, false, "")
			return
		}
		h.ServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// PostEditForm renders the edit form, pre-filled. Non-authors are
// redirected to the post detail without any indication.
func (h *Handler) PostEditForm(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}
	if post.AuthorID != middleware.CurrentUserID(c) {
		c.Redirect(http.StatusFound, "/posts/"+post.ID+"/")
		return
	}

	f := form.PostForm{Text: post.Text}
	if post.GroupID != nil {
		f.GroupID = *post.GroupID
	}
	h.renderPostForm(c, f, map[string]string{}, true, post.ID)
}

// PostEdit applies an edit submit under the same silent authorization rule.
func (h *Handler) PostEdit(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := h.posts.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			h.NotFound(c)
			return
		}
		h.ServerError(c)
		return
	}
	if post.AuthorID != middleware.CurrentUserID(c) {
		c.Redirect(http.StatusFound, "/posts/"+post.ID+"/")
		return
	}

	var f form.PostForm
	_ = c.ShouldBind(&f)
	errs := form.Validate(f)

	imagePath := ""
	if len(errs) == 0 {
		imagePath, err = h.saveImage(c)
		if err != nil {
			errs["image"] = "Attach a jpg, png, gif, or webp image."
		}
	}
	if len(errs) > 0 {
		h.renderPostForm(c, f, errs, true, post.ID)
		return
	}

	if err := h.posts.Update(ctx, post, f.Text, f.GroupID, imagePath); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			errs["group"] = "Unknown group."
			h.renderPostForm(c, f, errs, true, post.ID)
			return
		}
		h.ServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/posts/"+post.ID+"/")
}

func (h *Handler) renderPostForm(c *gin.Context, f form.PostForm, errs map[string]string, isEdit bool, postID string) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		h.ServerError(c)
		return
	}
	h.render(c, http.StatusOK, "create_post", gin.H{
		"Form":   f,
		"Errors": errs,
		"Groups": groups,
		"IsEdit": isEdit,
		"PostID": postID,
	})
}

// saveImage stores an attached image and returns its storage key. No
// attachment yields an empty key; a disallowed extension is an error.
func (h *Handler) saveImage(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", errInvalidImage
	}

	key := fmt.Sprintf("posts/post_%s%s", uuid.New().String(), ext)
	if err := h.media.Write(c.Request.Context(), key, file); err != nil {
		logger.Error("image upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return key, nil
}
