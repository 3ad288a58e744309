package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// fetchProduct reads the authoritative product record. Deleted products are
// treated as absent.
func fetchProduct(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, productNotFoundError{ProductID: productID}
	}
	if err != nil {
		return models.Product{}, err
	}
	product.InStock = product.CountInStock > 0
	return product, nil
}

func respondProductError(c *gin.Context, route string, err error) {
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
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "product not found",
			"productId": notFoundErr.ProductID.Hex(),
		})
		return
	}
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

func respondCart(c *gin.Context, cart models.Cart) {
	itemCount, itemsPrice := cartTotals(cart)
	c.JSON(http.StatusOK, gin.H{
		"cart":       cart,
		"itemCount":  itemCount,
		"itemsPrice": itemsPrice,
	})
}

func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondCart(c, readCart(c))
	}
}

// AddCartItem re-reads the product's stock immediately before committing the
// mutation; the cookie is rewritten in the same request so a reload sees the
// same cart.
func AddCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := fetchProduct(ctx, db, productID)
		if err != nil {
			respondProductError(c, route, err)
			return
		}

		cart := readCart(c)
		if err := upsertCartLine(&cart, product, req.Quantity); err != nil {
			respondProductError(c, route, err)
			return
		}

		if err := writeCart(c, cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "cart could not be saved")
			return
		}
		respondCart(c, cart)
	}
}

func SetCartItemQuantity(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		var req setCartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		cart := readCart(c)

		// Zero or negative quantity removes the line without a stock read.
		if req.Quantity <= 0 {
			removeCartLine(&cart, productID)
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()

			product, err := fetchProduct(ctx, db, productID)
			if err != nil {
				respondProductError(c, route, err)
				return
			}
			if err := setCartLineQuantity(&cart, product, req.Quantity); err != nil {
				respondProductError(c, route, err)
				return
			}
		}

		if err := writeCart(c, cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "cart could not be saved")
			return
		}
		respondCart(c, cart)
	}
}

func RemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:id"

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		cart := readCart(c)
		removeCartLine(&cart, productID)

		if err := writeCart(c, cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "cart could not be saved")
			return
		}
		respondCart(c, cart)
	}
}

func ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		clearCartCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
