package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/api/handlers"
	custommiddleware "github.com/finbase/portfolio-engine/internal/api/middleware"
	"github.com/finbase/portfolio-engine/internal/config"
	"github.com/finbase/portfolio-engine/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	db *sql.DB,
	portfolioService *service.PortfolioService,
	performanceService *service.PerformanceService,
	goalService *service.GoalService,
	alertService *service.AlertService,
	recomputeService *service.RecomputeService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(db)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(portfolioService)
			r.Get("/holdings", holdingHandler.GetHoldings)
			r.Get("/holdings/{accountID}/{securityID}", holdingHandler.GetHolding)

			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			r.Get("/portfolio/summary", portfolioHandler.GetPortfolioSummary)

			performanceHandler := handlers.NewPerformanceHandler(performanceService)
			r.Get("/performance", performanceHandler.GetPerformance)

			goalHandler := handlers.NewGoalHandler(goalService)
			r.Get("/goals/{goalID}/status", goalHandler.GetGoalStatus)
			r.Get("/allocations", goalHandler.GetAllocationStatus)

			alertHandler := handlers.NewAlertHandler(alertService)
			r.Post("/alerts/evaluate", alertHandler.EvaluateAlerts)
			r.Post("/alerts/{alertID}/reset", alertHandler.ResetAlert)

			transactionHandler := handlers.NewTransactionHandler(recomputeService)
			r.Post("/transactions", transactionHandler.AppendTransaction)

			recomputeHandler := handlers.NewRecomputeHandler(recomputeService)
			r.Post("/recompute", recomputeHandler.Recompute)
		})
	})

	return r
}
