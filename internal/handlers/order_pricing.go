package handlers

import (
	"storefront/internal/models"
	"storefront/internal/money"
)

// Pricing rules are deterministic and fixed: orders at or above the
// threshold ship free, everything else pays the flat rate; tax is a fixed
// percentage of the items total. All in integer cents.
const (
	freeShippingThreshold = money.Cents(20000)
	flatShippingPrice     = money.Cents(1500)
	taxRatePercent        = 15
)

type orderPrices struct {
	Items    money.Cents
	Shipping money.Cents
	Tax      money.Cents
	Total    money.Cents
}

// computeOrderPrices derives every order total from the already re-priced
// items. Total is the exact sum of the three parts.
func computeOrderPrices(items []models.OrderItem) orderPrices {
	itemsPrice := money.Cents(0)
	for _, item := range items {
		itemsPrice += item.Price.Mul(item.Quantity)
	}

	shippingPrice := flatShippingPrice
	if itemsPrice >= freeShippingThreshold {
		shippingPrice = 0
	}

	taxPrice := itemsPrice.Percent(taxRatePercent)

	return orderPrices{
		Items:    itemsPrice,
		Shipping: shippingPrice,
		Tax:      taxPrice,
		Total:    itemsPrice + shippingPrice + taxPrice,
	}
}
