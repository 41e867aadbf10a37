package token

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextTokenKey = "customer_token"

// Middleware authenticates customer routes with the bearer credential
// itself. Blocked tokens still pass through so customers can see their
// balance and order history; spend paths check IsBlocked themselves.
func Middleware(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		credential := strings.TrimSpace(parts[1])
		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is empty"})
			c.Abort()
			return
		}

		tok, err := repo.Resolve(c.Request.Context(), credential)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(contextTokenKey, tok)
		c.Next()
	}
}

func FromContext(c *gin.Context) (*Token, bool) {
	v, exists := c.Get(contextTokenKey)
	if !exists {
		return nil, false
	}

	tok, ok := v.(*Token)
	if !ok {
		return nil, false
	}

	return tok, true
}
