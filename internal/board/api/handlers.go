package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/suiboard/suiboard-backend/internal/board/service"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

type Handler struct {
	svc    *service.Service
	logger logging.Logger
}

func NewHandler(svc *service.Service, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Errorf("Failed to encode response: %v", err)
	}
}

// writeReadError maps view failures to responses. A degraded upstream is a
// 502 with an explicit payload so clients can show the unavailable state
// instead of an empty board.
func (h *Handler) writeReadError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUnavailable) {
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	if address == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
		return
	}
	view, err := h.svc.BoardView(r.Context(), types.Account(address))
	if err != nil {
		h.logger.Errorf("Failed to build board view for %s: %v", address, err)
		h.writeReadError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Leaderboard(r.Context())
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Activity(r.Context())
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if events == nil {
		events = []types.ActivityEvent{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) GetProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.svc.Proposals(r.Context())
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if proposals == nil {
		proposals = []types.ProposalRecord{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"proposals": proposals})
}

func (h *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.Listings(r.Context())
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	if listings == nil {
		listings = []types.MarketplaceListing{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
}

func (h *Handler) GetStakingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.StakingStats(r.Context())
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
