package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
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

// DeliverOrder records the admin's delivery confirmation. An unpaid order is
// rejected: delivery is the seller's guarantee of value received and never
// precedes payment. The update filter re-checks both flags so a concurrent
// transition cannot slip through.
func DeliverOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/deliver"
		defer handlePanic(c, route)

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

		wasDelivered := order.IsDelivered
		if err := applyDelivery(&order, time.Now()); err != nil {
			if errors.Is(err, errInvalidTransition) {
				log.Println("[ORDER] [ERROR] deliver attempted before payment:", orderID.Hex())
				c.JSON(http.StatusConflict, gin.H{"error": "invalid transition: order is not paid"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if wasDelivered {
			c.JSON(http.StatusOK, gin.H{"message": "order already delivered", "order": order})
			return
		}

		filter := bson.M{"_id": orderID, "isPaid": true, "isDelivered": false}
		update := bson.M{"$set": bson.M{
			"isDelivered": true,
			"deliveredAt": order.DeliveredAt,
		}}

		res, err := db.Collection("orders").UpdateOne(ctx, filter, update)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			// Either a concurrent delivery won or the paid flag flipped
			// under us; re-read to tell the two apart.
			order, err = fetchOrder(ctx, db, orderID)
			if err == nil && order.IsDelivered {
				c.JSON(http.StatusOK, gin.H{"message": "order already delivered", "order": order})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": "invalid transition: order is not paid"})
			return
		}

		log.Println("[ORDER] [INFO] order marked delivered:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order delivered", "order": order})
	}
}

// DeleteOrder is an administrative override, not a lifecycle step.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
