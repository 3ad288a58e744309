package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func validCreateOrderRequest() createOrderRequest {
	return createOrderRequest{
		Items: []createOrderItemRequest{
			{ProductID: primitive.NewObjectID().Hex(), Quantity: 2, Price: 9.99},
		},
		ShippingAddress: *testAddress(),
		PaymentMethod:   models.PaymentMethodPayPal,
	}
}

func TestValidateOrderRequestEmptyCart(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items = nil

	_, err := validateOrderRequest(req)
	if !errors.Is(err, errEmptyCart) {
		t.Fatalf("expected errEmptyCart, got %v", err)
	}
}

func TestValidateOrderRequestInvalidPaymentMethod(t *testing.T) {
	req := validCreateOrderRequest()
	req.PaymentMethod = "Barter"

	if _, err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for invalid payment method")
	}
}

func TestValidateOrderRequestIncompleteAddress(t *testing.T) {
	req := validCreateOrderRequest()
	req.ShippingAddress.PostalCode = ""

	if _, err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for incomplete shipping address")
	}
}

func TestValidateOrderRequestRejectsDuplicateProduct(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	req := validCreateOrderRequest()
	req.Items = []createOrderItemRequest{
		{ProductID: productID, Quantity: 1},
		{ProductID: productID, Quantity: 2},
	}

	if _, err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for duplicate productId")
	}
}

func TestValidateOrderRequestRejectsZeroQuantity(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items[0].Quantity = 0

	if _, err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestValidateOrderRequestIgnoresClientPrice(t *testing.T) {
	req := validCreateOrderRequest()
	req.Items[0].Price = 0.01
	req.ItemsPrice = 0.02
	req.TotalPrice = 0.03

	lines, err := validateOrderRequest(req)
	if err != nil {
		t.Fatalf("validateOrderRequest returned error: %v", err)
	}
	// Only the product reference and quantity survive validation; prices are
	// re-derived from the catalog later.
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}
