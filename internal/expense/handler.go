package expense

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, callerID int64, dto CreateExpenseDTO) (*Expense, error)
	ListMine(ctx context.Context, callerID int64, q ListQuery) ([]*Expense, error)
	Get(ctx context.Context, callerID, id int64) (*Expense, error)
	Update(ctx context.Context, callerID, id int64, dto UpdateExpenseDTO) (*Expense, error)
	TogglePaid(ctx context.Context, callerID, id int64) (*Expense, error)
	Delete(ctx context.Context, callerID, id int64) error
	Summary(ctx context.Context, callerID int64) (*Summary, error)
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

// CreateExpense handles POST /expenses/
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	var dto CreateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.Create(r.Context(), caller.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

// GetUserExpenses handles GET /expenses/user
func (h *Handler) GetUserExpenses(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	expenses, err := h.Service.ListMine(r.Context(), caller.ID, q)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

// GetSummary handles GET /users/me/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Summary(r.Context(), caller.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

// GetExpense handles GET /expenses/{id}
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.Get(r.Context(), caller.ID, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// UpdateExpense handles PUT /expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.Update(r.Context(), caller.ID, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// TogglePaid handles PATCH /expenses/{id}/toggle-paid
func (h *Handler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	e, err := h.Service.TogglePaid(r.Context(), caller.ID, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// DeleteExpense handles DELETE /expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireUser(h.BaseHandler, w, r)
	if !ok {
		return
	}

	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), caller.ID, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteNoContent(w)
}
