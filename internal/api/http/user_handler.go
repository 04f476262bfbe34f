package http

import (
	"net/http"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

type verifyRequest struct {
	Status domain.VerificationStatus `json:"status" validate:"required,oneof=approved rejected"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.VerificationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.VerificationPending
	}
	users, err := h.userSvc.ListUsers(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.User]{Data: users, Total: int32(len(users))})
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	adminID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userSvc.VerifyUser(r.Context(), adminID, userID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}
