package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminAuth validates the token and requires the isAdmin claim. The role
// check happens before any handler state is read.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := IdentityFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		if !identity.IsAdmin {
			log.Println("[AUTH] [ERROR] admin action attempted by non-admin:", identity.UserID.Hex())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set("identity", identity)
		c.Set("userId", identity.UserID)
		c.Next()
	}
}
