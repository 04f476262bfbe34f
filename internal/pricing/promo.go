package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"gearrent-backend/internal/domain"
)

// PromotionActiveOn reports whether p is switched on and today falls inside
// its inclusive validity window.
func PromotionActiveOn(p *domain.Promotion, today time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	d := DateOnly(today)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// PromotionDiscount computes the discount p grants on subtotal.
//
// Percentage discounts are rounded down to whole currency units and capped by
// MaxDiscount when set. Fixed discounts are the flat value and are not capped
// at the subtotal, so a total can go negative.
func PromotionDiscount(p *domain.Promotion, subtotal int64) int64 {
	switch p.Kind {
	case domain.DiscountPercentage:
		discount := decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(p.Value)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
		if p.MaxDiscount != nil && discount > *p.MaxDiscount {
			return *p.MaxDiscount
		}
		return discount
	case domain.DiscountFixed:
		return p.Value
	}
	return 0
}

// EvaluatePromotion validates p for today and subtotal and returns the
// discount. The minimum-spend gate applies only when enforceMinSpend is set.
func EvaluatePromotion(p *domain.Promotion, subtotal int64, today time.Time, enforceMinSpend bool) (int64, error) {
	if !PromotionActiveOn(p, today) {
		return 0, domain.ErrPromoNotFound
	}
	if enforceMinSpend && subtotal < p.MinSpend {
		return 0, domain.ErrBelowMinimumSpend
	}
	return PromotionDiscount(p, subtotal), nil
}
