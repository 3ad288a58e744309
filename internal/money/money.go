package money

import (
	"fmt"
	"math"
)

// Cents is a price or price total in integer cents. All server-side price
// arithmetic happens in Cents; float64 only appears at the JSON boundary.
type Cents int64

// FromFloat converts a dollar amount to cents, rounding half away from zero.
func FromFloat(amount float64) Cents {
	return Cents(math.Round(amount * 100))
}

// Mul returns the line total for a unit price and quantity.
func (c Cents) Mul(quantity int) Cents {
	return c * Cents(quantity)
}

// Percent returns rate% of the amount, rounded half away from zero.
func (c Cents) Percent(rate int64) Cents {
	scaled := int64(c) * rate
	if scaled >= 0 {
		return Cents((scaled + 50) / 100)
	}
	return Cents((scaled - 50) / 100)
}

// Float returns the amount in dollars for display.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	sign := ""
	value := int64(c)
	if value < 0 {
		sign = "-"
		value = -value
	}
	return fmt.Sprintf("%s%d.%02d", sign, value/100, value%100)
}

// AddQuantity sums two quantities, never returning a negative result.
func AddQuantity(a, b int) int {
	sum := a + b
	if sum < 0 {
		return 0
	}
	return sum
}
