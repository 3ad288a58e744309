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

	"storefront/internal/middleware"
	"storefront/internal/models"
)

type createOrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required"`
}

// createOrderRequest is the client's cart snapshot. Name, price and total
// fields are bound for shape compatibility and then discarded; the server
// re-derives all of them from the catalog.
type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	ItemsPrice      float64                  `json:"itemsPrice"`
	TotalPrice      float64                  `json:"totalPrice"`
}

// requestedLine is a validated (productID, quantity) pair before repricing.
type requestedLine struct {
	ProductID primitive.ObjectID
	Quantity  int
}

func validateOrderRequest(req createOrderRequest) ([]requestedLine, error) {
	if len(req.Items) == 0 {
		return nil, errEmptyCart
	}

	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, errors.New("invalid payment method")
	}

	if !req.ShippingAddress.Complete() {
		return nil, errors.New("shipping address is incomplete")
	}

	lines := make([]requestedLine, 0, len(req.Items))
	seen := make(map[primitive.ObjectID]struct{}, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, errors.New("invalid productId")
		}
		if item.Quantity <= 0 {
			return nil, errors.New("quantity must be greater than zero")
		}
		if _, ok := seen[productID]; ok {
			return nil, errors.New("duplicate productId in items")
		}
		seen[productID] = struct{}{}
		lines = append(lines, requestedLine{ProductID: productID, Quantity: item.Quantity})
	}
	return lines, nil
}

// CreateOrder turns a client cart snapshot into a persisted order. Inside
// one transaction each product is re-fetched, repriced from catalog truth,
// and its stock decremented through a conditional update, so two concurrent
// orders cannot both take the last units. Any failure aborts with no partial
// write and the client's cart cookie is left untouched.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		identity, ok := middleware.CurrentIdentity(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		lines, err := validateOrderRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		order := models.Order{
			UserID:          identity.UserID,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			IsPaid:          false,
			IsDelivered:     false,
			CreatedAt:       time.Now(),
		}

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderItem, 0, len(lines))

			for _, line := range lines {
				product, err := fetchProduct(sessCtx, db, line.ProductID)
				if err != nil {
					return nil, err
				}

				if product.CountInStock < line.Quantity {
					return nil, outOfStockError{
						ProductID: line.ProductID,
						Available: product.CountInStock,
						Requested: line.Quantity,
					}
				}

				items = append(items, models.OrderItem{
					ProductID: product.ID,
					Name:      product.Name,
					Image:     product.Image,
					Price:     product.Price,
					Quantity:  line.Quantity,
				})

				// The stock filter repeats the check inside the write, which
				// is the serialization point against concurrent orders.
				filter := bson.M{
					"_id":          line.ProductID,
					"isDeleted":    bson.M{"$ne": true},
					"countInStock": bson.M{"$gte": line.Quantity},
				}
				update := bson.M{"$inc": bson.M{"countInStock": -line.Quantity}}

				res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: line.ProductID,
						Available: product.CountInStock,
						Requested: line.Quantity,
					}
				}
			}

			prices := computeOrderPrices(items)
			order.Items = items
			order.ItemsPrice = prices.Items
			order.ShippingPrice = prices.Shipping
			order.TaxPrice = prices.Tax
			order.TotalPrice = prices.Total

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "out of stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Order committed: the cart's job is done, reset the wizard.
		clearCartCookie(c)

		log.Println("[ORDER] [INFO] order created for user:", identity.UserID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"orderId":       order.ID.Hex(),
			"itemsPrice":    order.ItemsPrice,
			"shippingPrice": order.ShippingPrice,
			"taxPrice":      order.TaxPrice,
			"totalPrice":    order.TotalPrice,
		})
	}
}
