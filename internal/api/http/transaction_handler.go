package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/pricing"
	"gearrent-backend/internal/service"
)

type TransactionHandler struct {
	txSvc service.TransactionService
}

func NewTransactionHandler(txSvc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

type lineRequest struct {
	ItemID   int32 `json:"item_id" validate:"required,gt=0"`
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type createTransactionRequest struct {
	StartDate string        `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string        `json:"end_date" validate:"required,datetime=2006-01-02"`
	Items     []lineRequest `json:"items" validate:"required,min=1,dive"`
	PromoCode string        `json:"promo_code" validate:"omitempty,max=40"`
}

type statusRequest struct {
	Status  domain.TransactionStatus `json:"status" validate:"required"`
	LateFee *int64                   `json:"late_fee" validate:"omitempty,gte=0"`
}

type paymentRequest struct {
	Method    string `json:"method" validate:"required,max=40"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Reference string `json:"reference" validate:"omitempty,max=120"`
}

type paymentResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
	Payment     *domain.Payment     `json:"payment"`
}

type inspectionLine struct {
	LineID    int32                      `json:"line_id" validate:"required,gt=0"`
	Condition domain.InspectionCondition `json:"condition" validate:"required,oneof=baik rusak_ringan rusak_berat"`
}

type inspectionRequest struct {
	Lines   []inspectionLine `json:"lines" validate:"dive"`
	LateFee *int64           `json:"late_fee" validate:"omitempty,gte=0"`
}

// actorID returns the caller's ID for ownership checks, or 0 for staff who may
// act on any transaction.
func actorID(ctx context.Context) int32 {
	claims := ClaimsFromContext(ctx)
	if claims == nil || isStaff(claims) {
		return 0
	}
	return claims.UserID
}

// loadOwned fetches a transaction the caller is allowed to see.
func (h *TransactionHandler) loadOwned(r *http.Request) (*domain.Transaction, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	t, err := h.txSvc.GetTransaction(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if owner := actorID(r.Context()); owner != 0 && t.UserID != owner {
		// Hide other members' transactions entirely.
		return nil, domain.ErrTransactionNotFound
	}
	return t, nil
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: start_date", errBadRequest))
		return
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: end_date", errBadRequest))
		return
	}

	lines := make([]domain.LineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, domain.LineRequest{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	t, err := h.txSvc.CreateTransaction(r.Context(), userID, start, end, lines, req.PromoCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, t)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt32(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.TransactionFilter{Page: page, PageSize: pageSize}

	if owner := actorID(r.Context()); owner != 0 {
		filter.UserID = owner
	} else if filter.UserID, err = queryInt32(r, "user_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		for _, st := range strings.Split(s, ",") {
			filter.Statuses = append(filter.Statuses, domain.TransactionStatus(strings.TrimSpace(st)))
		}
	}

	txs, total, err := h.txSvc.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Transaction]{Data: txs, Total: total, Page: page, PageSize: pageSize})
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadOwned(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Status.Valid() {
		writeError(w, r, fmt.Errorf("%w: unknown status %q", errBadRequest, req.Status))
		return
	}

	t, err := h.txSvc.UpdateStatus(r.Context(), id, req.Status, req.LateFee)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *TransactionHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, payment, err := h.txSvc.SubmitPayment(r.Context(), actorID(r.Context()), id, req.Method, req.Amount, req.Reference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, paymentResponse{Transaction: t, Payment: payment})
}

func (h *TransactionHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadOwned(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payments, err := h.txSvc.ListPayments(r.Context(), t.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Payment]{Data: payments, Total: int32(len(payments))})
}

func (h *TransactionHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.txSvc.RequestReturn(r.Context(), actorID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *TransactionHandler) Handover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.txSvc.Handover(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *TransactionHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req inspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	conditions := make(map[int32]domain.InspectionCondition, len(req.Lines))
	for _, l := range req.Lines {
		conditions[l.LineID] = l.Condition
	}
	t, err := h.txSvc.Inspect(r.Context(), id, conditions, req.LateFee)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

// Cancel lets staff cancel any open transaction. Members may cancel their own
// only before the equipment is handed over.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadOwned(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err = h.txSvc.Cancel(r.Context(), actorID(r.Context()), t.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.txSvc.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
