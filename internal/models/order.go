package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/money"
)

// OrderItem is a point-in-time copy of a product at order creation. Price is
// looked up fresh from the catalog; later catalog changes never alter it.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     money.Cents        `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// PaymentResult is the gateway's confirmation payload, stored verbatim for
// audit once the order is marked paid.
type PaymentResult struct {
	ID           string `bson:"id" json:"id"`
	Status       string `bson:"status" json:"status"`
	EmailAddress string `bson:"email_address" json:"email_address"`
}

// Order is the persisted record of a committed purchase. Items and prices
// are immutable after creation; only the payment and delivery flags advance.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	ItemsPrice      money.Cents        `bson:"itemsPrice" json:"itemsPrice"`
	ShippingPrice   money.Cents        `bson:"shippingPrice" json:"shippingPrice"`
	TaxPrice        money.Cents        `bson:"taxPrice" json:"taxPrice"`
	TotalPrice      money.Cents        `bson:"totalPrice" json:"totalPrice"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult     `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	IsDelivered     bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
