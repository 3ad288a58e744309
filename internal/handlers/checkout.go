package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/middleware"
	"storefront/internal/models"
)

// The checkout wizard is a 4-stage linear gate. Stage state is derived from
// the identity and cart on every request, never stored, so a stale step
// counter cannot disagree with the data behind it.
const (
	stageLogin = iota
	stageShipping
	stagePayment
	stagePlaceOrder
	stageCount
)

var stagePaths = [stageCount]string{
	"/login",
	"/checkout/shipping",
	"/checkout/payment",
	"/checkout/placeorder",
}

var stagesByName = map[string]int{
	"login":      stageLogin,
	"shipping":   stageShipping,
	"payment":    stagePayment,
	"placeorder": stagePlaceOrder,
}

func stageComplete(stage int, authenticated bool, cart models.Cart) bool {
	switch stage {
	case stageLogin:
		return authenticated
	case stageShipping:
		return cart.ShippingAddress.Complete()
	case stagePayment:
		return models.ValidPaymentMethod(cart.PaymentMethod)
	}
	return false
}

// firstUnmetStage returns the lowest stage in [0, upTo) whose completion
// predicate fails, or upTo when every predecessor is satisfied.
func firstUnmetStage(upTo int, authenticated bool, cart models.Cart) int {
	for stage := 0; stage < upTo; stage++ {
		if !stageComplete(stage, authenticated, cart) {
			return stage
		}
	}
	return upTo
}

// authenticated reports whether the request carries a valid identity. A
// malformed token counts as unauthenticated here; the gate redirects to
// login rather than erroring.
func authenticated(c *gin.Context, jwtSecret string) bool {
	identity, err := middleware.IdentityFromHeader(c.GetHeader("Authorization"), jwtSecret)
	return err == nil && identity != nil
}

// CheckoutGate guards entry into a wizard stage. A stage whose predecessor
// data is missing redirects to the lowest unmet stage; it never renders a
// later stage with missing data. Entering the login stage never redirects.
func CheckoutGate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout/:stage"

		stage, ok := stagesByName[c.Param("stage")]
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "unknown checkout stage")
			return
		}

		cart := readCart(c)
		unmet := firstUnmetStage(stage, authenticated(c, jwtSecret), cart)
		if unmet < stage {
			c.Redirect(http.StatusTemporaryRedirect, stagePaths[unmet])
			return
		}

		itemCount, itemsPrice := cartTotals(cart)
		c.JSON(http.StatusOK, gin.H{
			"stage":      stage,
			"path":       stagePaths[stage],
			"cart":       cart,
			"itemCount":  itemCount,
			"itemsPrice": itemsPrice,
		})
	}
}

// SaveShippingAddress stores the address in the cart cookie. Guarded the
// same way as entering the shipping stage.
func SaveShippingAddress(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/shipping"
		defer handlePanic(c, route)

		cart := readCart(c)
		if unmet := firstUnmetStage(stageShipping, authenticated(c, jwtSecret), cart); unmet < stageShipping {
			c.Redirect(http.StatusSeeOther, stagePaths[unmet])
			return
		}

		var address models.ShippingAddress
		if err := c.ShouldBindJSON(&address); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "all address fields are required")
			return
		}

		cart.ShippingAddress = &address
		if err := writeCart(c, cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "cart could not be saved")
			return
		}
		c.JSON(http.StatusOK, gin.H{"shippingAddress": address, "next": stagePaths[stagePayment]})
	}
}

type savePaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// SavePaymentMethod stores the chosen method. Reachable only once the
// shipping address exists.
func SavePaymentMethod(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/payment"
		defer handlePanic(c, route)

		cart := readCart(c)
		if unmet := firstUnmetStage(stagePayment, authenticated(c, jwtSecret), cart); unmet < stagePayment {
			c.Redirect(http.StatusSeeOther, stagePaths[unmet])
			return
		}

		var req savePaymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "paymentMethod is required")
			return
		}
		if !models.ValidPaymentMethod(req.PaymentMethod) {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		cart.PaymentMethod = req.PaymentMethod
		if err := writeCart(c, cart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "cart could not be saved")
			return
		}
		c.JSON(http.StatusOK, gin.H{"paymentMethod": req.PaymentMethod, "next": stagePaths[stagePlaceOrder]})
	}
}
