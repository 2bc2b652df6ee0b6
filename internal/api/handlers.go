package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/usecase"
)

type Handlers struct {
	submitWagerUC  *usecase.SubmitWager
	playerWagersUC *usecase.GetPlayerWagers
	topSpendersUC  *usecase.GetTopSpenders
}

func NewHandlers(submitWagerUC *usecase.SubmitWager, playerWagersUC *usecase.GetPlayerWagers, topSpendersUC *usecase.GetTopSpenders) *Handlers {
	return &Handlers{
		submitWagerUC:  submitWagerUC,
		playerWagersUC: playerWagersUC,
		topSpendersUC:  topSpendersUC,
	}
}

// PostCasinoWager accepts one wager event and enqueues it for publication.
// A 200 means the event was accepted into the ingest buffer, not stored.
func (h *Handlers) PostCasinoWager(w http.ResponseWriter, r *http.Request) {
	var ev wager.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.submitWagerUC.Execute(r.Context(), ev); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetPlayerCasinoWagers returns a paginated list of the latest wagers for one
// account.
func (h *Handlers) GetPlayerCasinoWagers(w http.ResponseWriter, r *http.Request) {
	playerID, err := uuid.Parse(chi.URLParam(r, "playerId"))
	if err != nil {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	resp, err := h.playerWagersUC.Execute(r.Context(), playerID, page, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetTopSpenders returns the top players by total spending, highest first.
func (h *Handlers) GetTopSpenders(w http.ResponseWriter, r *http.Request) {
	count := queryInt(r, "count", 10)
	if count <= 0 {
		count = 10
	}
	if count > 1000 {
		count = 1000
	}

	spenders, err := h.topSpendersUC.Execute(r.Context(), count)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spenders)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
