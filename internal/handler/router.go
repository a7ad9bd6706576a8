package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires the services into the HTTP surface.
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	Ledger         LedgerServiceInterface
	Expenses       ExpenseServiceInterface
	Store          Pinger
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	periodHandler := NewPeriodHandler(cfg.Ledger)
	expenseHandler := NewExpenseHandler(cfg.Expenses)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/api/health", health(cfg.Store))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		// Budget periods
		r.Post("/api/periods", periodHandler.Open)
		r.Get("/api/periods/{year}/{month}", periodHandler.Overview)
		r.Get("/api/periods/{year}/{month}/remaining", periodHandler.Remaining)
		r.Get("/api/savings", periodHandler.Savings)

		// Expenses
		r.Get("/api/expenses", expenseHandler.List)
		r.Post("/api/expenses", expenseHandler.Log)
		r.Delete("/api/expenses/{id}", expenseHandler.Delete)
	})

	return r
}

// health godoc
// @Summary Health check
// @Description Check if the API and its store are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
