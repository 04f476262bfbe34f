package http

import (
	"net/http"
	"strings"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
	"gearrent-backend/internal/service"
)

type CatalogHandler struct {
	catalogSvc   service.CatalogService
	inventorySvc service.InventoryService
}

func NewCatalogHandler(catalogSvc service.CatalogService, inventorySvc service.InventoryService) *CatalogHandler {
	return &CatalogHandler{
		catalogSvc:   catalogSvc,
		inventorySvc: inventorySvc,
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description"`
}

type itemRequest struct {
	Code          string            `json:"code" validate:"omitempty,max=40"`
	Name          string            `json:"name" validate:"required,max=120"`
	CategoryID    int32             `json:"category_id" validate:"gte=0"`
	Description   string            `json:"description"`
	PricePerDay   int64             `json:"price_per_day" validate:"required,gt=0"`
	LateFeePerDay int64             `json:"late_fee_per_day" validate:"gte=0"`
	Stock         int32             `json:"stock" validate:"gte=0"`
	Status        domain.ItemStatus `json:"status" validate:"omitempty,oneof=available rented maintenance damaged"`
}

func (req itemRequest) toItem() *domain.Item {
	return &domain.Item{
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		PricePerDay:   req.PricePerDay,
		LateFeePerDay: req.LateFeePerDay,
		Stock:         req.Stock,
		Status:        req.Status,
	}
}

// itemUpdateRequest carries the editable item fields. Stock is changed through
// the stock endpoint only.
type itemUpdateRequest struct {
	Code          string            `json:"code" validate:"omitempty,max=40"`
	Name          string            `json:"name" validate:"required,max=120"`
	CategoryID    int32             `json:"category_id" validate:"gte=0"`
	Description   string            `json:"description"`
	PricePerDay   int64             `json:"price_per_day" validate:"required,gt=0"`
	LateFeePerDay int64             `json:"late_fee_per_day" validate:"gte=0"`
	Status        domain.ItemStatus `json:"status" validate:"omitempty,oneof=available rented maintenance damaged"`
}

func (req itemUpdateRequest) toItem(id int32) *domain.Item {
	return &domain.Item{
		ID:            id,
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		PricePerDay:   req.PricePerDay,
		LateFeePerDay: req.LateFeePerDay,
		Status:        req.Status,
	}
}

type stockRequest struct {
	Direction domain.StockDirection `json:"direction" validate:"required,oneof=increase decrease"`
	Quantity  int32                 `json:"quantity" validate:"required,gt=0"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogSvc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Category]{Data: categories, Total: int32(len(categories))})
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category := &domain.Category{Name: req.Name, Description: req.Description}
	if err := h.catalogSvc.CreateCategory(r.Context(), category); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, category)
}

func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt32(r, "category_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
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

	filter := repository.ItemFilter{
		CategoryID: categoryID,
		Status:     domain.ItemStatus(r.URL.Query().Get("status")),
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		Page:       page,
		PageSize:   pageSize,
	}
	items, total, err := h.catalogSvc.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Item]{Data: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.catalogSvc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item := req.toItem()
	if err := h.catalogSvc.CreateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req itemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item := req.toItem(id)
	if err := h.catalogSvc.UpdateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalogSvc.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	adj, err := h.inventorySvc.AdjustStock(r.Context(), id, req.Direction, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adj)
}
