package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/response"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// AuthMiddleware resolves the bearer token to a user. EventSource clients
// cannot set headers, so ?access_token= is accepted as well.
func AuthMiddleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token != "" {
			user, err := provider.Validate(c.Request.Context(), token)
			if err == nil {
				c.Set(userKey, user)
				c.Set(tokenKey, token)
				c.Next()
				return
			}
			logger.Warnf("[request_id=%s] token rejected: %v", c.GetString("request_id"), err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
	}
}

func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("access_token")
}

// CurrentUser returns the user set by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *internal.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*internal.User)
	return u
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
