package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/handlers"
	custommiddleware "github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/config"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	System      *service.SystemService
	Session     *service.SessionService
	Assets      *service.AssetService
	Ledger      *service.LedgerService
	Withdrawals *service.WithdrawalService
	Liabilities *service.LiabilityService
	Snapshots   *service.SnapshotService
	Projections *service.ProjectionService
	MarketData  *service.MarketDataService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireSession := custommiddleware.NewSessionAuth(svc.Session)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/auth", func(r chi.Router) {
			authHandler := handlers.NewAuthHandler(svc.Session)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(requireSession).Post("/logout", authHandler.Logout)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Use(requireSession)
			assetHandler := handlers.NewAssetHandler(svc.Assets, svc.Snapshots, svc.MarketData)
			transactionHandler := handlers.NewTransactionHandler(svc.Assets, svc.Ledger)
			r.Get("/", assetHandler.Assets)
			r.Post("/", assetHandler.CreateAsset)
			r.Post("/refresh", assetHandler.Refresh)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", assetHandler.GetAsset)
				r.Delete("/", assetHandler.DeleteAsset)
				r.Get("/summary", assetHandler.Summary)
				r.Post("/close", assetHandler.CloseAsset)
				r.Get("/transactions", transactionHandler.TransactionsPerAsset)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(requireSession)
			transactionHandler := handlers.NewTransactionHandler(svc.Assets, svc.Ledger)
			r.Post("/", transactionHandler.CreateContribution)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Put("/", transactionHandler.UpdateTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Use(requireSession)
			withdrawalHandler := handlers.NewWithdrawalHandler(svc.Assets, svc.Withdrawals)
			r.Post("/simulate", withdrawalHandler.Simulate)
			r.Post("/", withdrawalHandler.Commit)
		})

		r.Route("/liabilities", func(r chi.Router) {
			r.Use(requireSession)
			liabilityHandler := handlers.NewLiabilityHandler(svc.Liabilities)
			r.Get("/", liabilityHandler.Liabilities)
			r.Post("/", liabilityHandler.CreateLiability)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", liabilityHandler.GetLiability)
				r.Put("/balance", liabilityHandler.UpdateBalance)
				r.Delete("/", liabilityHandler.DeleteLiability)
			})
		})

		r.Route("/installments/{uuid}", func(r chi.Router) {
			r.Use(requireSession)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			liabilityHandler := handlers.NewLiabilityHandler(svc.Liabilities)
			r.Post("/toggle", liabilityHandler.ToggleInstallment)
		})

		r.Route("/history", func(r chi.Router) {
			r.Use(requireSession)
			historyHandler := handlers.NewHistoryHandler(svc.Snapshots)
			r.Get("/", historyHandler.History)
			r.Post("/rebuild", historyHandler.Rebuild)
		})

		r.Route("/projections", func(r chi.Router) {
			r.Use(requireSession)
			projectionHandler := handlers.NewProjectionHandler(svc.Projections)
			r.Post("/compound", projectionHandler.Compound)
			r.Post("/simple", projectionHandler.Simple)
			r.Post("/first-million", projectionHandler.FirstMillion)
			r.Post("/reserve", projectionHandler.Reserve)
			r.Post("/compare", projectionHandler.Compare)
			r.Post("/cdi", projectionHandler.CDI)
		})
	})

	return r
}
