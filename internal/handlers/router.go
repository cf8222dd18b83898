package handlers

import (
	"net/http"

	"poolledger/internal/config"
	"poolledger/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type Handler struct {
	cfg      config.Config
	service  PoolService
	shares   ShareReader
	resolver middleware.ProfileResolver
	admin    AdminChecker
	log      zerolog.Logger
}

func New(cfg config.Config, service PoolService, shares ShareReader, resolver middleware.ProfileResolver, admin AdminChecker, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		service:  service,
		shares:   shares,
		resolver: resolver,
		admin:    admin,
		log:      log,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/pool", func(r chi.Router) {
		r.Use(middleware.Identity(h.resolver))
		r.Get("/me", h.Me)
		r.Get("/cycle", h.ActiveCycle)
		r.Get("/deposits", h.MyDeposits)
		r.Post("/deposits", h.CreateDeposit)
		r.Get("/withdrawals", h.MyWithdrawals)
		r.Post("/withdrawals", h.CreateWithdrawal)
		r.Get("/withdrawals/{id}", h.GetWithdrawal)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Identity(h.resolver))
		r.Use(middleware.RequireAdmin(h.admin))
		r.Get("/cycles/{id}/shares", h.CycleShares)
		r.Post("/cycles/{id}/settle", h.SettleCycle)
		r.Post("/cycles/{id}/recompute", h.RecomputeCycle)
		r.Post("/withdrawals/{id}/status", h.UpdateWithdrawalStatus)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
