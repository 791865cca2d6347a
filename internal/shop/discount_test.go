package shop

import (
	"testing"

	"mailshop/internal/model"
)

func TestDiscount(t *testing.T) {
	tiers := []model.DiscountTier{
		{MinQuantity: 10, Percent: 5},
		{MinQuantity: 50, Percent: 10},
		{MinQuantity: 100, Percent: 15},
	}

	tests := []struct {
		name     string
		quantity int
		want     float64
	}{
		{"below first tier", 5, 0},
		{"exactly first tier", 10, 5},
		{"between tiers", 75, 10},
		{"exactly top tier", 100, 15},
		{"above top tier", 500, 15},
		{"single item", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discount(tiers, tt.quantity); got != tt.want {
				t.Errorf("Discount(%d) = %v, want %v", tt.quantity, got, tt.want)
			}
		})
	}
}

func TestDiscountNoTiers(t *testing.T) {
	if got := Discount(nil, 1000); got != 0 {
		t.Errorf("got %v, want 0 with no tiers configured", got)
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  int
		discount  float64
		want      float64
	}{
		{"no discount", 10, 5, 0, 50},
		{"round number discount", 10, 10, 5, 95},
		{"fractional price rounds to cents", 9.99, 3, 15, 25.47},
		{"single item", 12.50, 1, 0, 12.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Total(tt.unitPrice, tt.quantity, tt.discount); got != tt.want {
				t.Errorf("Total(%v, %d, %v) = %v, want %v",
					tt.unitPrice, tt.quantity, tt.discount, got, tt.want)
			}
		})
	}
}
