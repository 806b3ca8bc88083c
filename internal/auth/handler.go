package auth

import (
	"context"
	"log/slog"
	"mime"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Authenticate(ctx context.Context, dto LoginDTO) (TokenResponse, error)
	ResolveToken(ctx context.Context, token string) (*User, error)
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

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

// Login handles POST /auth/login. It takes the OAuth2 password form and also accepts JSON.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	dto, err := h.parseLogin(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) parseLogin(r *http.Request) (LoginDTO, error) {
	var dto LoginDTO
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := h.DecodeJSON(r, &dto); err != nil {
			return LoginDTO{}, err
		}
		return dto, nil
	}

	if err := r.ParseForm(); err != nil {
		return LoginDTO{}, internal.ErrInvalidRequestBody.WithCause(err)
	}
	dto.Username = r.PostFormValue("username")
	dto.Password = r.PostFormValue("password")
	return dto, nil
}

// AuthMiddleware resolves the bearer token to a user and fails closed before the
// wrapped handler runs.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, r, internal.ErrMissingToken)
			return
		}

		u, err := h.Service.ResolveToken(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireUser returns the caller placed in the context by AuthMiddleware, writing a
// 401 when it is missing.
func RequireUser(h *transport.BaseHandler, w http.ResponseWriter, r *http.Request) (*User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingToken)
		return nil, false
	}
	return u, true
}
