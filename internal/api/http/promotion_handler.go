package http

import (
	"fmt"
	"net/http"
	"strconv"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/pricing"
	"gearrent-backend/internal/service"

	"github.com/gorilla/mux"
)

type PromotionHandler struct {
	promoSvc service.PromotionService
}

func NewPromotionHandler(promoSvc service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promoSvc: promoSvc}
}

type promotionRequest struct {
	Code        string              `json:"code" validate:"required,max=40"`
	Name        string              `json:"name" validate:"required,max=120"`
	Kind        domain.DiscountKind `json:"kind" validate:"required,oneof=percentage fixed"`
	Value       int64               `json:"value" validate:"required,gt=0"`
	MinSpend    int64               `json:"min_spend" validate:"gte=0"`
	MaxDiscount *int64              `json:"max_discount" validate:"omitempty,gt=0"`
	StartDate   string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	Active      *bool               `json:"active"`
}

func (req promotionRequest) toPromotion() (*domain.Promotion, error) {
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date", errBadRequest)
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date", errBadRequest)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.Promotion{
		Code:        req.Code,
		Name:        req.Name,
		Kind:        req.Kind,
		Value:       req.Value,
		MinSpend:    req.MinSpend,
		MaxDiscount: req.MaxDiscount,
		StartDate:   start,
		EndDate:     end,
		Active:      active,
	}, nil
}

type validatePromotionResponse struct {
	Promotion *domain.Promotion `json:"promotion"`
	Subtotal  int64             `json:"subtotal"`
	Discount  int64             `json:"discount"`
}

func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promoSvc.ListPromotions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Promotion]{Data: promos, Total: int32(len(promos))})
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	promo, err := req.toPromotion()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.promoSvc.CreatePromotion(r.Context(), promo); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, promo)
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	promo, err := req.toPromotion()
	if err != nil {
		writeError(w, r, err)
		return
	}
	promo.ID = id
	if err := h.promoSvc.UpdatePromotion(r.Context(), promo); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, promo)
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	promo, err := h.promoSvc.GetActivePromotion(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, promo)
}

func (h *PromotionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	subtotal, err := strconv.ParseInt(r.URL.Query().Get("subtotal"), 10, 64)
	if err != nil || subtotal < 0 {
		writeError(w, r, fmt.Errorf("%w: subtotal must be a non-negative integer", errBadRequest))
		return
	}

	promo, discount, err := h.promoSvc.ValidatePromotion(r.Context(), mux.Vars(r)["code"], subtotal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, validatePromotionResponse{Promotion: promo, Subtotal: subtotal, Discount: discount})
}
