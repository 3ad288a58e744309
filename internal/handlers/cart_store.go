package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

// The cart lives in a browser cookie, the durable client-side store. It is
// read at the start of every cart request and written back synchronously on
// every mutation, so a reload reconstructs the same state.
const (
	cartCookieName   = "cart"
	cartCookieMaxAge = 30 * 24 * 60 * 60
)

// readCart reconstructs the cart from the cookie. A missing or corrupt
// cookie yields an empty cart rather than an error.
func readCart(c *gin.Context) models.Cart {
	raw, err := c.Cookie(cartCookieName)
	if err != nil {
		return models.Cart{}
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		log.Println("[CART] [ERROR] cart cookie decode failed:", err)
		return models.Cart{}
	}

	var cart models.Cart
	if err := json.Unmarshal(decoded, &cart); err != nil {
		log.Println("[CART] [ERROR] cart cookie parse failed:", err)
		return models.Cart{}
	}
	return cart
}

func writeCart(c *gin.Context, cart models.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	encoded := base64.URLEncoding.EncodeToString(payload)
	c.SetCookie(cartCookieName, encoded, cartCookieMaxAge, "/", "", false, true)
	return nil
}

func clearCartCookie(c *gin.Context) {
	c.SetCookie(cartCookieName, "", -1, "/", "", false, true)
}
