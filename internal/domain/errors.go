package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrItemNotFound         = errors.New("item not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrPromoNotFound        = errors.New("promotion not found or not active")
	ErrConflict             = errors.New("already exists")
	ErrItemInUse            = errors.New("item is referenced by transactions")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrInvalidPrice         = errors.New("price per day must be positive")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrItemNotRentable      = errors.New("item is not rentable")
	ErrBelowMinimumSpend    = errors.New("subtotal below promotion minimum")
	ErrInvalidCondition     = errors.New("invalid inspection condition")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountNotApproved   = errors.New("account is not approved")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrEmptyTransaction     = errors.New("transaction has no lines")
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrInvalidLateFee       = errors.New("late fee cannot be negative")
)
