package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	UpdateSelf(ctx context.Context, userID int64, dto UpdateUserDTO) (*User, error)
	DeleteSelf(ctx context.Context, userID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	u, err := h.Service.GetByID(r.Context(), caller.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// UpdateCurrentUser handles PUT /users/me
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.UpdateSelf(r.Context(), caller.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// DeleteCurrentUser handles DELETE /users/me
func (h *Handler) DeleteCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteSelf(r.Context(), caller.ID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteNoContent(w)
}
