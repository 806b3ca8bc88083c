package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/expense-tracker/internal/auth/postgres"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-tracker/internal/category/postgres"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/core/storage"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"
	"github.com/frahmantamala/expense-tracker/internal/notification"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/rest"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
	"github.com/frahmantamala/expense-tracker/internal/user"
	userPostgres "github.com/frahmantamala/expense-tracker/internal/user/postgres"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE:  runHTTPServer,
}

type Dependencies struct {
	Config  *internal.Config
	DB      *storage.DB
	Events  *events.EventBus
	OpenAPI *swagger.Spec
	Logger  *slog.Logger
}

// NewRouter wires repositories, services and handlers onto a chi router.
func NewRouter(deps *Dependencies) *chi.Mux {
	cfg := deps.Config
	queryTimeout := cfg.Database.QueryTimeout

	var publisher events.Publisher
	if deps.Events != nil {
		publisher = deps.Events
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(deps.DB.Gorm, queryTimeout), tokens, cfg.Security.BCryptCost, deps.Logger)
	userService := user.NewService(userPostgres.NewUserRepository(deps.DB.Gorm, queryTimeout), publisher, cfg.Security.BCryptCost, deps.Logger)
	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(deps.DB.Gorm, deps.DB.SQL, queryTimeout), publisher, deps.Logger)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(deps.DB.SQL, queryTimeout), deps.Logger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.DB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Expense:  expense.NewHandler(expenseService),
		Category: category.NewHandler(transport.NewBaseHandler(deps.Logger), categoryService),
	}, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPI:        deps.OpenAPI,
	}, deps.Logger)
	return router
}

func runHTTPServer(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.Database, gormlogger.Warn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("database close error", "error", err)
		}
	}()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	bus := events.NewEventBus(lg)
	bus.SubscribeAll(events.LogHandler(lg), events.AllEventTypes...)
	if cfg.Notification.Enabled() {
		publisher, err := notification.Dial(cfg.Notification, lg)
		if err != nil {
			lg.Error("budget notifications disabled: broker unavailable", "error", err)
		} else {
			defer publisher.Close()
			bus.Subscribe(events.EventTypeBudgetExceeded, publisher.Handle)
		}
	}

	spec, err := swagger.Load(ctx, cfg.Server.OpenAPIPath)
	if err != nil {
		lg.Warn("openapi document not served", "path", cfg.Server.OpenAPIPath, "error", err)
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: NewRouter(&Dependencies{
			Config:  cfg,
			DB:      db,
			Events:  bus,
			OpenAPI: spec,
			Logger:  lg,
		}),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		// let in-flight event handlers finish before the pool closes
		return bus.Wait(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	lg.Info("server stopped")
	return nil
}
