package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/money"
)

func testProduct(id primitive.ObjectID, price money.Cents, stock int) models.Product {
	return models.Product{
		ID:           id,
		Name:         "Test Product",
		Price:        price,
		CountInStock: stock,
	}
}

func TestUpsertCartLineKeepsOneLinePerProduct(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 10)

	var cart models.Cart
	for i := 0; i < 3; i++ {
		if err := upsertCartLine(&cart, product, 1); err != nil {
			t.Fatalf("upsertCartLine returned error: %v", err)
		}
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Lines[0].Quantity)
	}
}

func TestUpsertCartLineRejectsRequestAboveStock(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 5)

	var cart models.Cart
	err := upsertCartLine(&cart, product, 6)

	var stockErr outOfStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected outOfStockError, got %v", err)
	}
	if stockErr.ProductID != product.ID || stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}
	if len(cart.Lines) != 0 {
		t.Fatal("expected cart unchanged after out-of-stock add")
	}
}

func TestUpsertCartLineCapsIncrementAtStock(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 5)

	var cart models.Cart
	if err := upsertCartLine(&cart, product, 4); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	// 4 + 3 exceeds stock 5; the line is capped, not rejected.
	if err := upsertCartLine(&cart, product, 3); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity capped at 5, got %d", cart.Lines[0].Quantity)
	}
}

func TestUpsertCartLineRefreshesSnapshot(t *testing.T) {
	id := primitive.NewObjectID()

	var cart models.Cart
	if err := upsertCartLine(&cart, testProduct(id, 1000, 10), 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Price and stock changed in the catalog since the first add.
	if err := upsertCartLine(&cart, testProduct(id, 1200, 8), 1); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	line := cart.Lines[0]
	if line.Price != 1200 || line.CountInStock != 8 {
		t.Fatalf("expected refreshed snapshot, got price=%d stock=%d", line.Price, line.CountInStock)
	}
}

func TestSetCartLineQuantityZeroRemoves(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 10)

	var cart models.Cart
	if err := upsertCartLine(&cart, product, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := setCartLineQuantity(&cart, product, 0); err != nil {
		t.Fatalf("setCartLineQuantity returned error: %v", err)
	}

	if len(cart.Lines) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(cart.Lines))
	}
}

func TestSetCartLineQuantityRejectsAboveStock(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 3)

	var cart models.Cart
	if err := upsertCartLine(&cart, product, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := setCartLineQuantity(&cart, product, 4)
	var stockErr outOfStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected outOfStockError, got %v", err)
	}
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity unchanged, got %d", cart.Lines[0].Quantity)
	}
}

func TestRemoveCartLineIdempotent(t *testing.T) {
	product := testProduct(primitive.NewObjectID(), 1000, 10)

	var cart models.Cart
	if err := upsertCartLine(&cart, product, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	removeCartLine(&cart, product.ID)
	removeCartLine(&cart, product.ID)
	removeCartLine(&cart, primitive.NewObjectID())

	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
}

func TestCartTotals(t *testing.T) {
	first := testProduct(primitive.NewObjectID(), 1000, 10)
	second := testProduct(primitive.NewObjectID(), 250, 10)

	var cart models.Cart
	if err := upsertCartLine(&cart, first, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := upsertCartLine(&cart, second, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	itemCount, itemsPrice := cartTotals(cart)
	if itemCount != 5 {
		t.Fatalf("expected 5 items, got %d", itemCount)
	}
	if itemsPrice != 2750 {
		t.Fatalf("expected itemsPrice 2750, got %d", itemsPrice)
	}
}
