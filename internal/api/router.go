package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/player", func(r chi.Router) {
		r.Post("/casinowager", h.PostCasinoWager)
		r.Get("/{playerId}/casino", h.GetPlayerCasinoWagers)
		r.Get("/topspenders", h.GetTopSpenders)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
