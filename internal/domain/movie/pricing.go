package movie

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// fallbackPrice is charged when the catalog facts cannot be parsed.
var fallbackPrice = decimal.NewFromInt(5)

// priceBand maps an inclusive release-year upper bound to a base price.
type priceBand struct {
	yearMax int
	base    decimal.Decimal
}

// priceBands is ordered by ascending upper bound. Pricing picks the first
// band whose bound is >= the release year; years above every bound use the
// last band.
var priceBands = []priceBand{
	{1945, decimal.NewFromInt(2)},
	{1970, decimal.NewFromInt(6)},
	{2000, decimal.NewFromInt(12)},
	{2020, decimal.NewFromInt(15)},
}

// Price computes the unit price for a title from its release year and
// metascore. The base price is selected by year band and scaled by
// metascore/100, rounded to cents with banker's rounding. Malformed or
// missing inputs yield the flat fallback price rather than an error.
func Price(year, metascore string) decimal.Decimal {
	y, err := strconv.Atoi(year)
	if err != nil {
		return fallbackPrice
	}
	score, err := decimal.NewFromString(metascore)
	if err != nil {
		return fallbackPrice
	}

	base := priceBands[len(priceBands)-1].base
	for _, band := range priceBands {
		if band.yearMax >= y {
			base = band.base
			break
		}
	}

	return base.Mul(score).Div(decimal.NewFromInt(100)).RoundBank(2)
}
