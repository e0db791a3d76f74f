package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/token"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"

	ctxUserIDKey = "user_id"
	ctxUserKey   = "user"
)

// Session resolves the session cookie to a user on every request. Missing,
// invalid, or stale cookies leave the request anonymous; nothing aborts
// here.
func Session(users repository.UserRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		userID, err := token.Parse(cookie, secret)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or "" for guests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// CurrentUser returns the authenticated user, or nil for guests.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// LoginRequired redirects guests to the login page with a next parameter
// pointing back at the requested URL, then stops the chain.
func LoginRequired(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == "" {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, loginPath+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}
