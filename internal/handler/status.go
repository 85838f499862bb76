// Package handler exposes the read-only status HTTP surface: a health
// probe and a reservation listing for dashboards. Credentials never leave
// the process through this surface.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/store"
)

type StatusHandler struct {
	store  store.Store
	logger *logger.Logger
}

func NewStatusHandler(st store.Store, log *logger.Logger) *StatusHandler {
	return &StatusHandler{store: st, logger: log}
}

// reservationView is the public projection of a reservation record.
type reservationView struct {
	ReservationID int64     `json:"reservation_id"`
	CreatorName   string    `json:"creator_name"`
	ServerName    string    `json:"server_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// Healthz handles GET /healthz
func (h *StatusHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to write health response", logger.Error(err))
	}
}

// ListReservations handles GET /reservations
func (h *StatusHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.All()
	if err != nil {
		h.logger.Error("Failed to list reservations", logger.Error(err))
		http.Error(w, "Failed to list reservations", http.StatusInternalServerError)
		return
	}

	views := make([]reservationView, 0, len(all))
	for _, rec := range all {
		if !rec.Confirmed() {
			continue
		}
		views = append(views, reservationView{
			ReservationID: rec.ReservationID,
			CreatorName:   rec.CreatorName,
			ServerName:    rec.ServerName,
			StartTime:     rec.StartTime,
			EndTime:       rec.EndTime,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		h.logger.Error("Failed to encode reservation list", logger.Error(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Mux returns the routed status mux.
func (h *StatusHandler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /reservations", h.ListReservations)
	return mux
}
