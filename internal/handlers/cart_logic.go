package handlers

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/money"
)

// snapshotLine copies the product's current name, price and stock into a
// cart line. Snapshots are for display only; order creation re-reads the
// catalog.
func snapshotLine(product models.Product, quantity int) models.CartLine {
	return models.CartLine{
		ProductID:    product.ID,
		Name:         product.Name,
		Image:        product.Image,
		Price:        product.Price,
		Quantity:     quantity,
		CountInStock: product.CountInStock,
	}
}

// upsertCartLine adds requestedQty of the product to the cart. An existing
// line is incremented, capped at the product's current stock; a request that
// alone exceeds stock fails without mutating the cart.
func upsertCartLine(cart *models.Cart, product models.Product, requestedQty int) error {
	if requestedQty <= 0 {
		return errors.New("quantity must be greater than zero")
	}
	if requestedQty > product.CountInStock {
		return outOfStockError{
			ProductID: product.ID,
			Available: product.CountInStock,
			Requested: requestedQty,
		}
	}

	idx := cart.FindLine(product.ID)
	if idx < 0 {
		cart.Lines = append(cart.Lines, snapshotLine(product, requestedQty))
		return nil
	}

	quantity := money.AddQuantity(cart.Lines[idx].Quantity, requestedQty)
	if quantity > product.CountInStock {
		quantity = product.CountInStock
	}
	cart.Lines[idx] = snapshotLine(product, quantity)
	return nil
}

// setCartLineQuantity sets the line's quantity outright. Zero or negative
// removes the line; a quantity above current stock fails without mutation.
func setCartLineQuantity(cart *models.Cart, product models.Product, quantity int) error {
	if quantity <= 0 {
		removeCartLine(cart, product.ID)
		return nil
	}
	if quantity > product.CountInStock {
		return outOfStockError{
			ProductID: product.ID,
			Available: product.CountInStock,
			Requested: quantity,
		}
	}

	idx := cart.FindLine(product.ID)
	if idx < 0 {
		cart.Lines = append(cart.Lines, snapshotLine(product, quantity))
		return nil
	}
	cart.Lines[idx] = snapshotLine(product, quantity)
	return nil
}

// removeCartLine drops the line if present. Removing an absent product is a
// no-op, not an error.
func removeCartLine(cart *models.Cart, productID primitive.ObjectID) {
	idx := cart.FindLine(productID)
	if idx < 0 {
		return
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
}

// cartTotals is pure over the current lines; prices are the display
// snapshots, not catalog truth.
func cartTotals(cart models.Cart) (int, money.Cents) {
	itemCount := 0
	itemsPrice := money.Cents(0)
	for _, line := range cart.Lines {
		itemCount += line.Quantity
		itemsPrice += line.Price.Mul(line.Quantity)
	}
	return itemCount, itemsPrice
}
