package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"fitbook/internal/authz"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// ActorResolver turns a session token into the caller, re-reading the role
// from storage.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (authz.Actor, error)
}

// Authenticate resolves the caller from the session cookie or a Bearer
// header. Requests without a valid token continue as anonymous.
func Authenticate(resolver ActorResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c, cookieName)
		if token == "" {
			c.Next()
			return
		}
		actor, err := resolver.ResolveActor(c.Request.Context(), token)
		if err == nil {
			c.Set(actorKey, actor)
			c.Set("user_id", actor.UserID)
		}
		c.Next()
	}
}

func tokenFrom(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// ActorFrom returns the caller attached by Authenticate, or anonymous.
func ActorFrom(c *gin.Context) authz.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(authz.Actor); ok {
			return a
		}
	}
	return authz.Anonymous()
}

// RequireAuth rejects anonymous callers. Browser navigations are sent to the
// login page instead of receiving a JSON error.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).Authenticated() {
			c.Next()
			return
		}
		if wantsHTML(c.Request) {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		c.Abort()
	}
}

func RequireRole(roles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.RequireRole(ActorFrom(c), roles...); err != nil {
			utils.HandleServiceError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
