package rest

import (
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
	"github.com/frahmantamala/expense-tracker/internal/user"
)

type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Expense  *expense.Handler
	Category *category.Handler
}

type Options struct {
	AllowedOrigins []string
	// OpenAPI is served at /openapi.yml when set.
	OpenAPI *swagger.Spec
}

func RegisterAllRoutes(router chi.Router, db Pinger, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(transport.NewBaseHandler(logger), db)

	// Apply global middleware
	if len(opts.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(opts.AllowedOrigins))
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/", healthHandler.rootHandler)
	router.Get("/ping", healthHandler.pingHandler)
	router.Get("/health", healthHandler.healthCheckHandler)

	if opts.OpenAPI != nil {
		router.Handle(swagger.SpecURL, opts.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	// Everything below requires a bearer token.
	router.Group(func(r chi.Router) {
		r.Use(h.Auth.AuthMiddleware)
		r.Use(middleware.UserContext)

		r.Route("/users/me", func(ur chi.Router) {
			ur.Get("/", h.User.GetCurrentUser)
			ur.Put("/", h.User.UpdateCurrentUser)
			ur.Delete("/", h.User.DeleteCurrentUser)
			ur.Get("/summary", h.Expense.GetSummary)
		})

		r.Route("/expenses", func(er chi.Router) {
			er.Post("/", h.Expense.CreateExpense)
			er.Get("/user", h.Expense.GetUserExpenses)
			er.Get("/{id}", h.Expense.GetExpense)
			er.Put("/{id}", h.Expense.UpdateExpense)
			er.Patch("/{id}/toggle-paid", h.Expense.TogglePaid)
			er.Delete("/{id}", h.Expense.DeleteExpense)
		})

		r.Get("/categories", h.Category.GetCategories)
	})
}
