package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/movie-orders/internal/domain/customer"
)

// DiscountType enumerates the discount categories an order can qualify for.
type DiscountType string

const (
	// DiscountLoyalEmployee rewards customers employed 15+ years at order
	// creation. Stacks with either of the other two.
	DiscountLoyalEmployee DiscountType = "loyal_employee"
	// DiscountSeniorCitizen applies to customers aged 65+ at order creation.
	DiscountSeniorCitizen DiscountType = "senior_citizen"
	// DiscountLargeOrder applies to line item totals of 100.00 or more, but
	// only when the senior citizen discount does not.
	DiscountLargeOrder DiscountType = "large_order"
)

// Discount is one applicable discount with its percentage expressed as a
// fraction (0.25 = 25%).
type Discount struct {
	Type    DiscountType    `json:"type"`
	Percent decimal.Decimal `json:"percentDiscount"`
}

var (
	loyalEmployeePct = decimal.RequireFromString("0.25")
	seniorCitizenPct = decimal.RequireFromString("0.15")
	largeOrderPct    = decimal.RequireFromString("0.1")

	largeOrderThreshold = decimal.NewFromInt(100)
)

// calcDiscounts returns every discount the order qualifies for, in a fixed
// order: loyal employee first, then senior citizen or large order. Senior
// citizen and large order are mutually exclusive; large order is only
// considered when the customer is not a senior.
//
// Age and tenure use calendar-year subtraction only, ignoring month and day.
// That makes eligibility flip on January 1st rather than on anniversaries,
// which is the intended (if coarse) behaviour.
func calcDiscounts(createdAt time.Time, c customer.Customer, lineItemTotal decimal.Decimal) []Discount {
	var discounts []Discount

	if createdAt.Year()-c.DateHired.Year() >= 15 {
		discounts = append(discounts, Discount{Type: DiscountLoyalEmployee, Percent: loyalEmployeePct})
	}

	switch {
	case createdAt.Year()-c.DateOfBirth.Year() >= 65:
		discounts = append(discounts, Discount{Type: DiscountSeniorCitizen, Percent: seniorCitizenPct})
	case lineItemTotal.GreaterThanOrEqual(largeOrderThreshold):
		discounts = append(discounts, Discount{Type: DiscountLargeOrder, Percent: largeOrderPct})
	}

	return discounts
}
