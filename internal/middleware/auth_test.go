package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("token signing failed: %v", err)
	}
	return signed
}

func userClaims(userID primitive.ObjectID, isAdmin bool) jwt.MapClaims {
	return jwt.MapClaims{
		"userId":  userID.Hex(),
		"name":    "Jane Buyer",
		"email":   "jane@example.com",
		"isAdmin": isAdmin,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestIdentityFromHeaderMissing(t *testing.T) {
	identity, err := IdentityFromHeader("", testSecret)
	if err != nil {
		t.Fatalf("expected nil error for missing header, got %v", err)
	}
	if identity != nil {
		t.Fatalf("expected nil identity, got %+v", identity)
	}
}

func TestIdentityFromHeaderRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, userClaims(userID, true))

	identity, err := IdentityFromHeader("Bearer "+token, testSecret)
	if err != nil {
		t.Fatalf("IdentityFromHeader returned error: %v", err)
	}
	if identity.UserID != userID || !identity.IsAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Email != "jane@example.com" || identity.Name != "Jane Buyer" {
		t.Fatalf("expected claims carried through, got %+v", identity)
	}
}

func TestIdentityFromHeaderBadFormat(t *testing.T) {
	if _, err := IdentityFromHeader("Token abc", testSecret); err == nil {
		t.Fatal("expected error for non-bearer header")
	}
	if _, err := IdentityFromHeader("Bearer not-a-jwt", testSecret); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestIdentityFromHeaderWrongSecret(t *testing.T) {
	token := signToken(t, userClaims(primitive.NewObjectID(), false))
	if _, err := IdentityFromHeader("Bearer "+token, "other-secret"); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func authTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestUserAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	authTestRouter(UserAuth(testSecret)).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuthRejectsNonAdmin(t *testing.T) {
	token := signToken(t, userClaims(primitive.NewObjectID(), false))
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	authTestRouter(AdminAuth(testSecret)).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}

func TestAdminAuthAllowsAdmin(t *testing.T) {
	token := signToken(t, userClaims(primitive.NewObjectID(), true))
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	authTestRouter(AdminAuth(testSecret)).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}
