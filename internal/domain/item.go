package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusRented      ItemStatus = "rented"
	ItemStatusMaintenance ItemStatus = "maintenance"
	ItemStatusDamaged     ItemStatus = "damaged"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusRented, ItemStatusMaintenance, ItemStatusDamaged:
		return true
	}
	return false
}

// Rentable reports whether units of an item in this status may be booked.
func (s ItemStatus) Rentable() bool {
	return s == ItemStatusAvailable || s == ItemStatusRented
}

type Category struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedOn   time.Time `json:"created_on"`
}

// Item is a rentable equipment type tracked as an aggregate stock count.
type Item struct {
	ID            int32      `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	CategoryID    int32      `json:"category_id"`
	Description   string     `json:"description"`
	PricePerDay   int64      `json:"price_per_day"`
	LateFeePerDay int64      `json:"late_fee_per_day"`
	Stock         int32      `json:"stock"`
	Status        ItemStatus `json:"status"`
	CreatedOn     time.Time  `json:"created_on"`
	UpdatedOn     time.Time  `json:"updated_on"`
}

// IncreaseStock adds qty units and reconciles the status.
func (i *Item) IncreaseStock(qty int32) {
	i.Stock += qty
	i.ReconcileStatus()
}

// DecreaseStock removes qty units, clamping at zero. The returned shortfall
// is the number of units that could not be removed.
func (i *Item) DecreaseStock(qty int32) (shortfall int32) {
	if qty > i.Stock {
		shortfall = qty - i.Stock
		i.Stock = 0
	} else {
		i.Stock -= qty
	}
	i.ReconcileStatus()
	return shortfall
}

// ReconcileStatus derives the rented/available status from the stock count.
// Maintenance and damaged are set by people, never by stock arithmetic.
func (i *Item) ReconcileStatus() {
	switch i.Status {
	case ItemStatusAvailable:
		if i.Stock == 0 {
			i.Status = ItemStatusRented
		}
	case ItemStatusRented:
		if i.Stock > 0 {
			i.Status = ItemStatusAvailable
		}
	}
}

type StockDirection string

const (
	StockIncrease StockDirection = "increase"
	StockDecrease StockDirection = "decrease"
)

// StockAdjustment is the outcome of a single stock mutation.
type StockAdjustment struct {
	Item      *Item          `json:"item"`
	Direction StockDirection `json:"direction"`
	Quantity  int32          `json:"quantity"`
	Shortfall int32          `json:"shortfall"`
}
