// Package handler holds one view method per route. Handlers orchestrate
// fetch → authorize → paginate/validate → render or redirect and resolve
// every failure to a rendered page or a redirect; nothing propagates raw.
package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/logger"
	"github.com/d60-Lab/microblog/pkg/storage"
)

const contentTypeHTML = "text/html; charset=utf-8"

type Handler struct {
	feeds     service.FeedService
	profiles  service.ProfileService
	posts     service.PostService
	comments  service.CommentService
	relations service.RelationshipService
	auth      service.AuthService

	fragments *cache.FragmentCache
	media     storage.Storage
	tmpl      *template.Template

	sessionSecret string
	sessionTTL    time.Duration
}

// New parses the template glob and wires the handler. The template set is
// held directly (instead of gin's renderer) so the cacheable post-list
// fragment can be rendered to bytes.
func New(
	feeds service.FeedService,
	profiles service.ProfileService,
	posts service.PostService,
	comments service.CommentService,
	relations service.RelationshipService,
	auth service.AuthService,
	fragments *cache.FragmentCache,
	media storage.Storage,
	templatesGlob string,
	sessionSecret string,
	sessionTTL time.Duration,
) (*Handler, error) {
	tmpl, err := template.ParseGlob(templatesGlob)
	if err != nil {
		return nil, err
	}
	return &Handler{
		feeds:         feeds,
		profiles:      profiles,
		posts:         posts,
		comments:      comments,
		relations:     relations,
		auth:          auth,
		fragments:     fragments,
		media:         media,
		tmpl:          tmpl,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}, nil
}

// renderBytes executes a page template into a buffer. The current user is
// always available to templates as .User (nil for guests).
func (h *Handler) renderBytes(c *gin.Context, name string, data gin.H) ([]byte, error) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = middleware.CurrentUser(c)
	}
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderFragment executes a template with no session-derived data, so the
// output is safe to cache and serve to any viewer.
func (h *Handler) renderFragment(name string, data gin.H) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	body, err := h.renderBytes(c, name, data)
	if err != nil {
		logger.Error("template render failed", zap.String("template", name), zap.Error(err))
		h.ServerError(c)
		return
	}
	c.Data(status, contentTypeHTML, body)
}

// NotFound renders the 404 page; it doubles as the NoRoute handler.
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found", nil)
}

// ServerError renders the 500 page.
func (h *Handler) ServerError(c *gin.Context) {
	body, err := h.renderBytes(c, "server_error", nil)
	if err != nil {
		c.String(http.StatusInternalServerError, "internal server error")
		c.Abort()
		return
	}
	c.Data(http.StatusInternalServerError, contentTypeHTML, body)
	c.Abort()
}
