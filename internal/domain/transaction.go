package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusAwaitingPayment      TransactionStatus = "awaiting_payment"
	TransactionStatusAwaitingConfirmation TransactionStatus = "awaiting_confirmation"
	TransactionStatusBeingRented          TransactionStatus = "being_rented"
	TransactionStatusAwaitingReturn       TransactionStatus = "awaiting_return"
	TransactionStatusCompleted            TransactionStatus = "completed"
	TransactionStatusCancelled            TransactionStatus = "cancelled"
)

// transitions lists the allowed next states for each state. Cancellation is
// handled separately since it is reachable from every non-terminal state.
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusAwaitingPayment:      {TransactionStatusAwaitingConfirmation},
	TransactionStatusAwaitingConfirmation: {TransactionStatusBeingRented},
	TransactionStatusBeingRented:          {TransactionStatusAwaitingReturn, TransactionStatusCompleted},
	TransactionStatusAwaitingReturn:       {TransactionStatusCompleted},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusAwaitingPayment, TransactionStatusAwaitingConfirmation,
		TransactionStatusBeingRented, TransactionStatusAwaitingReturn,
		TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

// ItemsOut reports whether the rented units have left the warehouse.
func (s TransactionStatus) ItemsOut() bool {
	return s == TransactionStatusBeingRented || s == TransactionStatusAwaitingReturn
}

// CanTransition reports whether moving from s to next is allowed.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == TransactionStatusCancelled {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID        int32             `json:"id"`
	Code      string            `json:"code"`
	UserID    int32             `json:"user_id"`
	BookedAt  time.Time         `json:"booked_at"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Days      int32             `json:"days"`
	Subtotal  int64             `json:"subtotal"`
	Discount  int64             `json:"discount"`
	LateFee   int64             `json:"late_fee"`
	Total     int64             `json:"total"`
	PromoCode *string           `json:"promo_code,omitempty"`
	Status    TransactionStatus `json:"status"`
	Lines     []TransactionLine `json:"lines,omitempty"`
	CreatedOn time.Time         `json:"created_on"`
	UpdatedOn time.Time         `json:"updated_on"`
}

// RecomputeTotal is the only place the total is derived.
func (t *Transaction) RecomputeTotal() {
	t.Total = t.Subtotal - t.Discount + t.LateFee
}

type TransactionLine struct {
	ID            int32  `json:"id"`
	TransactionID int32  `json:"transaction_id"`
	ItemID        int32  `json:"item_id"`
	ItemName      string `json:"item_name,omitempty"`
	Quantity      int32  `json:"quantity"`
	PricePerDay   int64  `json:"price_per_day"`
	Subtotal      int64  `json:"subtotal"`
	// Condition is filled in by inspection.
	Condition *InspectionCondition `json:"condition,omitempty"`
}

type InspectionCondition string

const (
	ConditionGood        InspectionCondition = "baik"
	ConditionLightDamage InspectionCondition = "rusak_ringan"
	ConditionHeavyDamage InspectionCondition = "rusak_berat"
)

func (c InspectionCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionLightDamage, ConditionHeavyDamage:
		return true
	}
	return false
}

// ItemStatus returns the status an inspected unit forces on its item, if any.
func (c InspectionCondition) ItemStatus() (ItemStatus, bool) {
	switch c {
	case ConditionLightDamage:
		return ItemStatusMaintenance, true
	case ConditionHeavyDamage:
		return ItemStatusDamaged, true
	}
	return "", false
}

// LineRequest is a cart entry at checkout.
type LineRequest struct {
	ItemID   int32 `json:"item_id"`
	Quantity int32 `json:"quantity"`
}

// TransactionFilter narrows transaction listings. Zero values mean no filter.
type TransactionFilter struct {
	UserID   int32
	Statuses []TransactionStatus
	Page     int32
	PageSize int32
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type Payment struct {
	ID            int32         `json:"id"`
	TransactionID int32         `json:"transaction_id"`
	Method        string        `json:"method"`
	Amount        int64         `json:"amount"`
	Reference     string        `json:"reference"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paid_at"`
}

// OverdueNotice is what a member is told about a late return.
type OverdueNotice struct {
	TransactionID int32     `json:"transaction_id"`
	Code          string    `json:"code"`
	EndDate       time.Time `json:"end_date"`
	UserName      string    `json:"user_name"`
	Email         string    `json:"email"`
	LateFeePerDay int64     `json:"late_fee_per_day"`
}
