package domain

import (
	"strings"
	"time"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

type Promotion struct {
	ID          int32        `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Kind        DiscountKind `json:"kind"`
	Value       int64        `json:"value"`
	MinSpend    int64        `json:"min_spend"`
	MaxDiscount *int64       `json:"max_discount,omitempty"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	Active      bool         `json:"active"`
	CreatedOn   time.Time    `json:"created_on"`
}

// NormalizePromoCode is applied on every write and lookup.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
