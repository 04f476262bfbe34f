package http

import (
	"net/http"

	"gearrent-backend/internal/security"

	"github.com/gorilla/mux"
)

// Handlers groups the resource handlers mounted by NewRouter.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Catalog      *CatalogHandler
	Transactions *TransactionHandler
	Promotions   *PromotionHandler
}

// NewRouter registers every API route. Route names are the keys of
// config.RouteAccess.
func NewRouter(h Handlers, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, LoggingMiddleware)

	router.HandleFunc("/healthz", health).Methods(http.MethodGet).Name("health")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(NewAuthMiddleware(tm).Handler)

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost).Name("auth.register")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("auth.login")

	api.HandleFunc("/users/me", h.Users.Me).Methods(http.MethodGet).Name("users.me")
	api.HandleFunc("/users", h.Users.List).Methods(http.MethodGet).Name("users.list")
	api.HandleFunc("/users/{id:[0-9]+}/verification", h.Users.Verify).Methods(http.MethodPut).Name("users.verify")

	api.HandleFunc("/categories", h.Catalog.ListCategories).Methods(http.MethodGet).Name("categories.list")
	api.HandleFunc("/categories", h.Catalog.CreateCategory).Methods(http.MethodPost).Name("categories.create")
	api.HandleFunc("/items", h.Catalog.ListItems).Methods(http.MethodGet).Name("items.list")
	api.HandleFunc("/items", h.Catalog.CreateItem).Methods(http.MethodPost).Name("items.create")
	api.HandleFunc("/items/{id:[0-9]+}", h.Catalog.GetItem).Methods(http.MethodGet).Name("items.get")
	api.HandleFunc("/items/{id:[0-9]+}", h.Catalog.UpdateItem).Methods(http.MethodPut).Name("items.update")
	api.HandleFunc("/items/{id:[0-9]+}", h.Catalog.DeleteItem).Methods(http.MethodDelete).Name("items.delete")
	api.HandleFunc("/items/{id:[0-9]+}/stock", h.Catalog.AdjustStock).Methods(http.MethodPost).Name("items.stock")

	tx := api.PathPrefix("/transactions").Subrouter()
	tx.HandleFunc("", h.Transactions.Create).Methods(http.MethodPost).Name("transactions.create")
	tx.HandleFunc("", h.Transactions.List).Methods(http.MethodGet).Name("transactions.list")
	tx.HandleFunc("/{id:[0-9]+}", h.Transactions.Get).Methods(http.MethodGet).Name("transactions.get")
	tx.HandleFunc("/{id:[0-9]+}", h.Transactions.Delete).Methods(http.MethodDelete).Name("transactions.delete")
	tx.HandleFunc("/{id:[0-9]+}/status", h.Transactions.UpdateStatus).Methods(http.MethodPut).Name("transactions.status")
	tx.HandleFunc("/{id:[0-9]+}/payments", h.Transactions.SubmitPayment).Methods(http.MethodPost).Name("transactions.payments")
	tx.HandleFunc("/{id:[0-9]+}/payments", h.Transactions.ListPayments).Methods(http.MethodGet).Name("transactions.payments.list")
	tx.HandleFunc("/{id:[0-9]+}/return-request", h.Transactions.RequestReturn).Methods(http.MethodPost).Name("transactions.return_request")
	tx.HandleFunc("/{id:[0-9]+}/handover", h.Transactions.Handover).Methods(http.MethodPost).Name("transactions.handover")
	tx.HandleFunc("/{id:[0-9]+}/inspection", h.Transactions.Inspect).Methods(http.MethodPost).Name("transactions.inspection")
	tx.HandleFunc("/{id:[0-9]+}/cancel", h.Transactions.Cancel).Methods(http.MethodPost).Name("transactions.cancel")

	api.HandleFunc("/promotions", h.Promotions.List).Methods(http.MethodGet).Name("promotions.list")
	api.HandleFunc("/promotions", h.Promotions.Create).Methods(http.MethodPost).Name("promotions.create")
	api.HandleFunc("/promotions/{id:[0-9]+}", h.Promotions.Update).Methods(http.MethodPut).Name("promotions.update")
	api.HandleFunc("/promotions/{code}", h.Promotions.Get).Methods(http.MethodGet).Name("promotions.get")
	api.HandleFunc("/promotions/{code}/validate", h.Promotions.Validate).Methods(http.MethodGet).Name("promotions.validate")

	return router
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
