package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the claims payload the identity provider issues. It is trusted
// as given; nothing here re-derives it.
type Identity struct {
	UserID  primitive.ObjectID
	Name    string
	Email   string
	IsAdmin bool
}

// IdentityFromHeader parses a Bearer token into an Identity. A missing header
// yields (nil, nil) so callers can treat authentication as optional.
func IdentityFromHeader(header, secret string) (*Identity, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return nil, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return nil, errors.New("invalid userId claim")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["isAdmin"].(bool)

	return &Identity{
		UserID:  userID,
		Name:    name,
		Email:   email,
		IsAdmin: isAdmin,
	}, nil
}

// UserAuth validates user JWT tokens and injects the identity into the
// context.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := IdentityFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if identity == nil {
			log.Println("[AUTH] [ERROR] missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		c.Set("identity", identity)
		c.Set("userId", identity.UserID)
		c.Next()
	}
}

// CurrentIdentity returns the Identity injected by UserAuth.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	value, ok := c.Get("identity")
	if !ok {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok
}
