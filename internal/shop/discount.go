package shop

import (
	"math"

	"mailshop/internal/model"
)

// Discount picks the percent off for a quantity: among tiers whose
// minimum is met, the largest minimum wins; zero when none match.
func Discount(tiers []model.DiscountTier, quantity int) float64 {
	best := -1
	percent := 0.0
	for _, t := range tiers {
		if quantity >= t.MinQuantity && t.MinQuantity > best {
			best = t.MinQuantity
			percent = t.Percent
		}
	}
	return percent
}

// Total prices a purchase after the quantity discount, rounded to
// cents.
func Total(unitPrice float64, quantity int, discountPercent float64) float64 {
	total := unitPrice * float64(quantity) * (1 - discountPercent/100)
	return math.Round(total*100) / 100
}
