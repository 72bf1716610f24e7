package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenAuthenticator resolves a bearer token to a user ID.
type TokenAuthenticator interface {
	Authenticate(token string) (uint, error)
}

// AuthMiddleware stores the authenticated user ID under "userID". Browsers
// cannot set headers on websocket upgrades, so a "token" query parameter is
// accepted for those requests.
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		userID, err := auth.Authenticate(tokenString)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if websocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":    http.StatusUnauthorized,
		"message":   msg,
		"timestamp": time.Now().UTC(),
	})
}
