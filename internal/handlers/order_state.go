package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/middleware"
	"storefront/internal/models"
)

// An order moves Created → Paid → Delivered and never backwards. Payment is
// recorded only from the gateway confirmation path; delivery only by an
// admin, and only after payment.

type paymentOutcome int

const (
	paymentIgnored paymentOutcome = iota
	paymentApplied
	paymentDuplicate
)

const gatewayStatusCompleted = "COMPLETED"

func paymentCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), gatewayStatusCompleted)
}

// applyPaymentResult advances Created → Paid. A confirmation for an
// already-paid order is absorbed without touching the original paidAt or
// payment result; a non-completed gateway status triggers nothing.
func applyPaymentResult(order *models.Order, result models.PaymentResult, now time.Time) paymentOutcome {
	if order.IsPaid {
		return paymentDuplicate
	}
	if !paymentCompleted(result.Status) {
		return paymentIgnored
	}

	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = &result
	return paymentApplied
}

// applyDelivery advances Paid → Delivered. Delivery before payment is an
// integrity error; a repeated delivery is a no-op.
func applyDelivery(order *models.Order, now time.Time) error {
	if !order.IsPaid {
		return errInvalidTransition
	}
	if order.IsDelivered {
		return nil
	}

	order.IsDelivered = true
	order.DeliveredAt = &now
	return nil
}

type paymentResultRequest struct {
	ID           string `json:"id" binding:"required"`
	Status       string `json:"status" binding:"required"`
	EmailAddress string `json:"email_address"`
}

func fetchOrder(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	return order, err
}

// canAccessOrder limits order reads and payment confirmation to the owner or
// an admin.
func canAccessOrder(identity *middleware.Identity, order models.Order) bool {
	return identity.IsAdmin || identity.UserID == order.UserID
}

// PayOrder is the payment-confirmation path. Only a completed gateway status
// transitions the order; anything else is acknowledged and ignored. The
// conditional update filter keeps a racing duplicate confirmation from
// overwriting the first recorded result.
func PayOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id/pay"
		defer handlePanic(c, route)

		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req paymentResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment result")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := fetchOrder(ctx, db, orderID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !canAccessOrder(identity, order) {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		result := models.PaymentResult{
			ID:           req.ID,
			Status:       req.Status,
			EmailAddress: req.EmailAddress,
		}

		switch applyPaymentResult(&order, result, time.Now()) {
		case paymentIgnored:
			log.Println("[ORDER] [INFO] payment status not completed, ignored:", req.Status)
			c.JSON(http.StatusOK, gin.H{"message": "payment not completed", "order": order})
			return
		case paymentDuplicate:
			log.Println("[ORDER] [INFO] duplicate payment confirmation absorbed:", orderID.Hex())
			c.JSON(http.StatusOK, gin.H{"message": "order already paid", "order": order})
			return
		}

		filter := bson.M{"_id": orderID, "isPaid": false}
		update := bson.M{"$set": bson.M{
			"isPaid":        true,
			"paidAt":        order.PaidAt,
			"paymentResult": order.PaymentResult,
		}}

		res, err := db.Collection("orders").UpdateOne(ctx, filter, update)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.ModifiedCount == 0 {
			// A concurrent confirmation won the race; return what it wrote.
			order, err = fetchOrder(ctx, db, orderID)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			log.Println("[ORDER] [INFO] duplicate payment confirmation absorbed:", orderID.Hex())
			c.JSON(http.StatusOK, gin.H{"message": "order already paid", "order": order})
			return
		}

		log.Println("[ORDER] [INFO] order marked paid:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order paid", "order": order})
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := fetchOrder(ctx, db, orderID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !canAccessOrder(identity, order) {
			respondWithError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func GetOrderHistory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/history"
		defer handlePanic(c, route)

		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": identity.UserID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}
