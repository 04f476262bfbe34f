package pricing

import (
	"testing"
	"time"

	"gearrent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRentalDays(t *testing.T) {
	t.Run("Three days", func(t *testing.T) {
		days, err := RentalDays(date("2024-12-07"), date("2024-12-10"))
		assert.NoError(t, err)
		assert.Equal(t, int32(3), days)
	})

	t.Run("Same day is one day", func(t *testing.T) {
		days, err := RentalDays(date("2024-12-07"), date("2024-12-07"))
		assert.NoError(t, err)
		assert.Equal(t, int32(1), days)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := RentalDays(date("2024-12-10"), date("2024-12-07"))
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})

	t.Run("Across month boundary", func(t *testing.T) {
		days, err := RentalDays(date("2024-02-27"), date("2024-03-02"))
		assert.NoError(t, err)
		assert.Equal(t, int32(4), days) // 2024 is a leap year
	})
}

func TestLineSubtotal(t *testing.T) {
	assert.Equal(t, int64(300000), LineSubtotal(100000, 1, 3))
	assert.Equal(t, int64(1200000), LineSubtotal(100000, 4, 3))
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, 12, 10, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, 12, 11, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(due, today))
}

func TestComputeLateFee(t *testing.T) {
	lines := []LateFeeLine{{LateFeePerDay: 50000, Quantity: 1}}

	t.Run("Three days late", func(t *testing.T) {
		fee := ComputeLateFee(date("2024-12-10"), date("2024-12-13"), lines)
		assert.Equal(t, int64(150000), fee)
	})

	t.Run("Multiple lines", func(t *testing.T) {
		multi := []LateFeeLine{
			{LateFeePerDay: 50000, Quantity: 2},
			{LateFeePerDay: 10000, Quantity: 3},
		}
		fee := ComputeLateFee(date("2024-12-10"), date("2024-12-12"), multi)
		assert.Equal(t, int64(2*(100000+30000)), fee)
	})

	t.Run("Zero when not overdue", func(t *testing.T) {
		due := date("2024-12-10")
		for _, today := range []string{"2024-12-01", "2024-12-09", "2024-12-10"} {
			assert.Equal(t, int64(0), ComputeLateFee(due, date(today), lines), today)
		}
	})

	t.Run("Same day return ignores hours", func(t *testing.T) {
		due := date("2024-12-10")
		today := time.Date(2024, 12, 10, 22, 0, 0, 0, time.UTC)
		assert.Equal(t, int64(0), ComputeLateFee(due, today, lines))
	})

	t.Run("Monotonic after due date", func(t *testing.T) {
		due := date("2024-12-10")
		prev := int64(0)
		for i := 1; i <= 30; i++ {
			fee := ComputeLateFee(due, due.AddDate(0, 0, i), lines)
			assert.GreaterOrEqual(t, fee, prev)
			prev = fee
		}
	})
}

func TestComputeLateFee_NonDecreasing(t *testing.T) {
	tests := []struct {
		name  string
		due   time.Time
		lines []LateFeeLine
	}{
		{"Single line", date("2024-12-10"), []LateFeeLine{{LateFeePerDay: 50000, Quantity: 1}}},
		{"Mixed lines", date("2024-12-10"), []LateFeeLine{{LateFeePerDay: 50000, Quantity: 2}, {LateFeePerDay: 10000, Quantity: 3}}},
		{"Free late fee", date("2024-12-10"), []LateFeeLine{{LateFeePerDay: 0, Quantity: 5}}},
		{"Across year end", date("2024-12-28"), []LateFeeLine{{LateFeePerDay: 25000, Quantity: 1}}},
		{"Across leap day", date("2024-02-27"), []LateFeeLine{{LateFeePerDay: 15000, Quantity: 4}}},
		{"No lines", date("2024-12-10"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := ComputeLateFee(tt.due, tt.due.AddDate(0, 0, -10), tt.lines)
			assert.Equal(t, int64(0), prev)
			for i := -9; i <= 60; i++ {
				today := tt.due.AddDate(0, 0, i)
				fee := ComputeLateFee(tt.due, today, tt.lines)
				require.GreaterOrEqual(t, fee, prev, "day %d", i)
				// Later in the same day never costs more.
				assert.Equal(t, fee, ComputeLateFee(tt.due, today.Add(23*time.Hour), tt.lines), "day %d", i)
				prev = fee
			}
		})
	}
}

func TestPromotionDiscount(t *testing.T) {
	capped := int64(300000)

	tests := []struct {
		name     string
		promo    domain.Promotion
		subtotal int64
		expected int64
	}{
		{"Percentage capped", domain.Promotion{Kind: domain.DiscountPercentage, Value: 50, MaxDiscount: &capped}, 2000000, 300000},
		{"Percentage under cap", domain.Promotion{Kind: domain.DiscountPercentage, Value: 10, MaxDiscount: &capped}, 2000000, 200000},
		{"Percentage no cap", domain.Promotion{Kind: domain.DiscountPercentage, Value: 50}, 2000000, 1000000},
		{"Percentage rounds down", domain.Promotion{Kind: domain.DiscountPercentage, Value: 15}, 99999, 14999},
		{"Fixed", domain.Promotion{Kind: domain.DiscountFixed, Value: 25000}, 300000, 25000},
		{"Fixed exceeds subtotal", domain.Promotion{Kind: domain.DiscountFixed, Value: 500000}, 300000, 500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PromotionDiscount(&tt.promo, tt.subtotal))
		})
	}
}

func TestEvaluatePromotion(t *testing.T) {
	promo := &domain.Promotion{
		Code:      "HEMAT10",
		Kind:      domain.DiscountPercentage,
		Value:     10,
		MinSpend:  500000,
		StartDate: date("2024-12-01"),
		EndDate:   date("2024-12-31"),
		Active:    true,
	}

	t.Run("Inside window", func(t *testing.T) {
		discount, err := EvaluatePromotion(promo, 1000000, date("2024-12-15"), true)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), discount)
	})

	t.Run("Window is inclusive", func(t *testing.T) {
		_, err := EvaluatePromotion(promo, 1000000, date("2024-12-01"), true)
		assert.NoError(t, err)
		_, err = EvaluatePromotion(promo, 1000000, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), true)
		assert.NoError(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := EvaluatePromotion(promo, 1000000, date("2025-01-01"), true)
		assert.ErrorIs(t, err, domain.ErrPromoNotFound)
	})

	t.Run("Inactive", func(t *testing.T) {
		inactive := *promo
		inactive.Active = false
		_, err := EvaluatePromotion(&inactive, 1000000, date("2024-12-15"), true)
		assert.ErrorIs(t, err, domain.ErrPromoNotFound)
	})

	t.Run("Below minimum spend", func(t *testing.T) {
		_, err := EvaluatePromotion(promo, 100000, date("2024-12-15"), true)
		assert.ErrorIs(t, err, domain.ErrBelowMinimumSpend)
	})

	t.Run("Minimum spend not enforced", func(t *testing.T) {
		discount, err := EvaluatePromotion(promo, 100000, date("2024-12-15"), false)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), discount)
	})
}
