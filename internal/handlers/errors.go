package handlers

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errEmptyCart         = errors.New("cart is empty")
	errInvalidTransition = errors.New("invalid order state transition")
)

// outOfStockError names the offending product so the caller can adjust the
// cart line instead of guessing.
type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}
