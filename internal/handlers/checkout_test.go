package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

const testJWTSecret = "test-secret"

func testAddress() *models.ShippingAddress {
	return &models.ShippingAddress{
		FullName:   "Jane Buyer",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "USA",
	}
}

func TestFirstUnmetStage(t *testing.T) {
	complete := models.Cart{
		ShippingAddress: testAddress(),
		PaymentMethod:   models.PaymentMethodPayPal,
	}

	tests := []struct {
		name          string
		upTo          int
		authenticated bool
		cart          models.Cart
		want          int
	}{
		{"login has no predecessors", stageLogin, false, models.Cart{}, stageLogin},
		{"shipping needs login", stageShipping, false, complete, stageLogin},
		{"payment needs shipping", stagePayment, true, models.Cart{}, stageShipping},
		{"placeorder needs payment", stagePlaceOrder, true, models.Cart{ShippingAddress: testAddress()}, stagePayment},
		{"lowest unmet wins", stagePlaceOrder, false, complete, stageLogin},
		{"all met", stagePlaceOrder, true, complete, stagePlaceOrder},
	}

	for _, tt := range tests {
		if got := firstUnmetStage(tt.upTo, tt.authenticated, tt.cart); got != tt.want {
			t.Fatalf("%s: firstUnmetStage = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStageCompleteRejectsPartialAddress(t *testing.T) {
	cart := models.Cart{
		ShippingAddress: &models.ShippingAddress{FullName: "Jane Buyer", City: "Springfield"},
	}
	if stageComplete(stageShipping, true, cart) {
		t.Fatal("expected partial address to leave shipping stage incomplete")
	}
}

func TestStageCompleteRejectsUnknownPaymentMethod(t *testing.T) {
	cart := models.Cart{PaymentMethod: "Barter"}
	if stageComplete(stagePayment, true, cart) {
		t.Fatal("expected unknown payment method to leave payment stage incomplete")
	}
}

func gateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/checkout/:stage", CheckoutGate(testJWTSecret))
	return r
}

func testToken(t *testing.T) string {
	t.Helper()
	user := models.User{ID: primitive.NewObjectID(), Name: "Jane Buyer", Email: "jane@example.com"}
	token, err := issueUserToken(user, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("issueUserToken failed: %v", err)
	}
	return token
}

func cartCookieValue(t *testing.T, cart models.Cart) string {
	t.Helper()
	payload, err := json.Marshal(cart)
	if err != nil {
		t.Fatalf("marshal cart failed: %v", err)
	}
	return base64.URLEncoding.EncodeToString(payload)
}

func gateRequest(t *testing.T, stage string, token string, cart *models.Cart) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/checkout/"+stage, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cart != nil {
		req.AddCookie(&http.Cookie{Name: cartCookieName, Value: cartCookieValue(t, *cart)})
	}

	w := httptest.NewRecorder()
	gateRouter().ServeHTTP(w, req)
	return w
}

func TestCheckoutGateLoginNeverRedirects(t *testing.T) {
	w := gateRequest(t, "login", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for login stage, got %d", w.Code)
	}
}

func TestCheckoutGateRedirectsToLogin(t *testing.T) {
	cart := models.Cart{ShippingAddress: testAddress(), PaymentMethod: models.PaymentMethodCash}
	w := gateRequest(t, "placeorder", "", &cart)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/login" {
		t.Fatalf("expected redirect to /login, got %q", got)
	}
}

func TestCheckoutGateRedirectsToLowestUnmetStage(t *testing.T) {
	token := testToken(t)

	// Authenticated, no shipping address: payment entry bounces to shipping.
	w := gateRequest(t, "payment", token, &models.Cart{})
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/checkout/shipping" {
		t.Fatalf("expected redirect to /checkout/shipping, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// Shipping set, no payment method: placeorder bounces to payment.
	cart := models.Cart{ShippingAddress: testAddress()}
	w = gateRequest(t, "placeorder", token, &cart)
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/checkout/payment" {
		t.Fatalf("expected redirect to /checkout/payment, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestCheckoutGateAllowsCompletedPredecessors(t *testing.T) {
	token := testToken(t)
	cart := models.Cart{ShippingAddress: testAddress(), PaymentMethod: models.PaymentMethodStripe}

	w := gateRequest(t, "placeorder", token, &cart)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCheckoutGateUnknownStage(t *testing.T) {
	w := gateRequest(t, "review", testToken(t), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown stage, got %d", w.Code)
	}
}
