package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listResponse[T any] struct {
	Data     []T   `json:"data"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page,omitempty"`
	PageSize int32 `json:"page_size,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

// writeError maps err onto an HTTP status and writes it as JSON.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, r, status, errorResponse{Error: msg, Code: code})
}

func classify(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, errBadRequest), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, "invalid_date_range"
	case errors.Is(err, domain.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid_price"
	case errors.Is(err, domain.ErrInvalidCondition):
		return http.StatusBadRequest, "invalid_condition"
	case errors.Is(err, domain.ErrEmptyTransaction):
		return http.StatusBadRequest, "empty_transaction"
	case errors.Is(err, domain.ErrInvalidPaymentAmount), errors.Is(err, domain.ErrInvalidLateFee):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, domain.ErrBelowMinimumSpend):
		return http.StatusBadRequest, "below_minimum_spend"
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPromoNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrItemNotRentable):
		return http.StatusConflict, "item_not_rentable"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrItemInUse):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrAccountNotApproved):
		return http.StatusForbidden, "account_not_approved"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal"
}

var (
	errBadRequest      = errors.New("bad request")
	errUnauthenticated = errors.New("authentication required")
	errForbidden       = errors.New("insufficient permissions")
)

// decodeJSON decodes and validates a JSON request body.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return validate.Struct(target)
}

// pathID reads a positive int32 route variable.
func pathID(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return int32(v), nil
}

// queryInt32 reads an optional int32 query parameter.
func queryInt32(r *http.Request, name string) (int32, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return int32(v), nil
}
