package admin

import (
	"net/http"

	"boompay/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequirePermission lets full admins through and checks moderators against
// their granted permission set for the area.
func RequirePermission(repo Repository, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := auth.GetAdminRole(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin role not found"})
			c.Abort()
			return
		}

		if role == RoleAdmin {
			c.Next()
			return
		}

		adminID, exists := auth.GetAdminID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
			c.Abort()
			return
		}

		permissions, err := repo.Permissions(c.Request.Context(), adminID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load permissions"})
			c.Abort()
			return
		}

		for _, p := range permissions {
			if p == permission {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}
