package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/form"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/token"
)

// LoginPage renders the login form, keeping the next parameter so a
// successful login returns to the page that required it.
func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", gin.H{
		"Next":   c.Query("next"),
		"Errors": map[string]string{},
		"Form":   form.LoginForm{},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var f form.LoginForm
	_ = c.ShouldBind(&f)
	next := c.PostForm("next")

	errs := form.Validate(f)
	if len(errs) > 0 {
		h.render(c, http.StatusOK, "login", gin.H{"Next": next, "Errors": errs, "Form": f})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), f.Username, f.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(c, http.StatusOK, "login", gin.H{
				"Next":   next,
				"Errors": map[string]string{"form": "Invalid username or password."},
				"Form":   f,
			})
			return
		}
		h.ServerError(c)
		return
	}

	if err := h.setSession(c, user.ID); err != nil {
		h.ServerError(c)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *Handler) SignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup", gin.H{
		"Errors": map[string]string{},
		"Form":   form.SignupForm{},
	})
}

// Signup registers a new account and logs it in.
func (h *Handler) Signup(c *gin.Context) {
	var f form.SignupForm
	_ = c.ShouldBind(&f)

	errs := form.Validate(f)
	if len(errs) > 0 {
		h.render(c, http.StatusOK, "signup", gin.H{"Errors": errs, "Form": f})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), f.Username, f.Email, f.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			h.render(c, http.StatusOK, "signup", gin.H{
				"Errors": map[string]string{"username": "This username is taken."},
				"Form":   f,
			})
			return
		}
		h.ServerError(c)
		return
	}

	if err := h.setSession(c, user.ID); err != nil {
		h.ServerError(c)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) setSession(c *gin.Context, userID string) error {
	t, err := token.Generate(userID, h.sessionSecret, h.sessionTTL)
	if err != nil {
		return err
	}
	c.SetCookie(middleware.SessionCookie, t, int(h.sessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// safeNext keeps the post-login redirect on this site. Anything that is
// not a local absolute path falls back to the index.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
