package handlers

import (
	"net/http"
	"time"

	"github.com/otcheredev/barmaster-pos/internal/models"
)

type floorResponse struct {
	Session        *models.Session      `json:"session"`
	Sectors        []models.SectorGroup `json:"sectors"`
	OrphanedTables int                  `json:"orphaned_tables"`
	LoadedAt       time.Time            `json:"loaded_at"`
}

// Floor returns the snapshot loaded at login, grouped by sector
func (h *SessionHandler) Floor(w http.ResponseWriter, r *http.Request) {
	state, ok := h.currentState(w, r)
	if !ok {
		return
	}

	response := floorResponse{
		Session: state.Session,
		Sectors: []models.SectorGroup{},
	}
	if state.Floor != nil {
		response.Sectors = state.Floor.Groups()
		response.OrphanedTables = len(state.Floor.Orphans())
		response.LoadedAt = state.Floor.LoadedAt
	}

	writeJSON(w, http.StatusOK, response)
}
