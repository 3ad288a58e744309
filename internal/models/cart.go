package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/money"
)

// CartLine is one intended purchase line. Price and CountInStock are
// display snapshots taken at add time; they are refreshed opportunistically
// and never trusted at order creation.
type CartLine struct {
	ProductID    primitive.ObjectID `json:"productId"`
	Name         string             `json:"name"`
	Image        string             `json:"image,omitempty"`
	Price        money.Cents        `json:"price"`
	Quantity     int                `json:"quantity"`
	CountInStock int                `json:"countInStock"`
}

// Cart is the client-held working set, persisted to a browser cookie and
// rebuilt from it on every request. At most one line per product.
type Cart struct {
	Lines           []CartLine       `json:"lines"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
}

// FindLine returns the index of the line for productID, or -1.
func (c *Cart) FindLine(productID primitive.ObjectID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

type ShippingAddress struct {
	FullName   string `bson:"fullName" json:"fullName" binding:"required"`
	Address    string `bson:"address" json:"address" binding:"required"`
	City       string `bson:"city" json:"city" binding:"required"`
	PostalCode string `bson:"postalCode" json:"postalCode" binding:"required"`
	Country    string `bson:"country" json:"country" binding:"required"`
}

// Complete reports whether every field is populated.
func (a *ShippingAddress) Complete() bool {
	if a == nil {
		return false
	}
	return a.FullName != "" && a.Address != "" && a.City != "" &&
		a.PostalCode != "" && a.Country != ""
}

// Payment methods form a closed set; anything else is rejected.
const (
	PaymentMethodPayPal = "PayPal"
	PaymentMethodStripe = "Stripe"
	PaymentMethodCash   = "Cash"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodCash:
		return true
	}
	return false
}
