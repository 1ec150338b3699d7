package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"idacast/internal/dashboard"
	"idacast/models"
	"idacast/utils/timewindow"
)

// Dashboard is the part of the dashboard core the HTTP API reads and drives.
type Dashboard interface {
	View() dashboard.View
	Locale() string
	SetLocale(raw string)
	RequestRefresh(cacheAllowed bool)
	Subscribe() (<-chan dashboard.View, func())
}

// SchedulesHandler serves the held schedule snapshot and its status.
type SchedulesHandler struct {
	dash     Dashboard
	capacity int
	now      func() time.Time
}

// NewSchedulesHandler creates a handler showing capacity slots per window
// unless a request asks for another size.
func NewSchedulesHandler(dash Dashboard, capacity int) *SchedulesHandler {
	if capacity <= 0 {
		capacity = 3
	}
	return &SchedulesHandler{dash: dash, capacity: capacity, now: time.Now}
}

// SetClock overrides the time source used for windows.
func (h *SchedulesHandler) SetClock(now func() time.Time) {
	h.now = now
}

// GetSchedules returns the full snapshot.
// GET /api/schedules
func (h *SchedulesHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	view := h.dash.View()
	etag := `"` + view.Schedules.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view.Schedules); err != nil {
		log.Printf("[schedules] GetSchedules JSON encode error: %v", err)
	}
}

// GetStatus returns the refresh state, locale and per-category counts.
// GET /api/status
func (h *SchedulesHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.View().Status)
}

type windowResponse struct {
	Category models.Category `json:"category"`
	Title    string          `json:"title"`
	Capacity int             `json:"capacity"`
	Shift    int             `json:"shift"`
	MaxShift int             `json:"maxShift"`
	Current  bool            `json:"current"`
	Items    any             `json:"items"`
}

// GetWindow returns the visible slots of one category.
// GET /api/windows/{category}?capacity=3&shift=0
func (h *SchedulesHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		http.Error(w, `{"error":"unknown category"}`, http.StatusNotFound)
		return
	}

	capacity := h.capacity
	if v := r.URL.Query().Get("capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"invalid capacity"}`, http.StatusBadRequest)
			return
		}
		capacity = n
	}
	shift := 0
	if v := r.URL.Query().Get("shift"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"invalid shift"}`, http.StatusBadRequest)
			return
		}
		shift = n
	}

	view := h.dash.View()
	resp := windowResponse{
		Category: category,
		Title:    category.Title(),
		Capacity: capacity,
		Shift:    shift,
	}
	now := h.now()
	switch category {
	case models.CategoryRegular, models.CategoryAnarchyOpen, models.CategoryAnarchySeries, models.CategoryXBattle:
		resp.Items, resp.Current, resp.MaxShift = window(view.Schedules.Battles(category), capacity, shift, now)
	case models.CategoryWorkRegular, models.CategoryWorkBigRun, models.CategoryWorkTeamContest:
		resp.Items, resp.Current, resp.MaxShift = window(view.Schedules.Coop(category), capacity, shift, now)
	case models.CategoryLeague:
		resp.Items, resp.Current, resp.MaxShift = window(view.Schedules.League, capacity, shift, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

// window returns a non-nil item slice so empty windows encode as [].
func window[T timewindow.Slot](items []T, capacity, shift int, now time.Time) ([]T, bool, int) {
	out, ok := timewindow.Filter(items, capacity, shift, now)
	if out == nil {
		out = []T{}
	}
	return out, ok, timewindow.MaxShift(items, now)
}

// Refresh starts a refresh in the background.
// POST /api/refresh?cached=true
func (h *SchedulesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cached := false
	if v := r.URL.Query().Get("cached"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, `{"error":"invalid cached parameter"}`, http.StatusBadRequest)
			return
		}
		cached = b
	}
	h.dash.RequestRefresh(cached)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted", "cached": cached})
}

type localeRequest struct {
	Locale string `json:"locale"`
}

// SetLocale switches the presentation locale and reloads, preferring the
// cached copy for that locale.
// PUT /api/locale
func (h *SchedulesHandler) SetLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	h.dash.SetLocale(strings.TrimSpace(req.Locale))
	h.dash.RequestRefresh(true)
	log.Printf("[schedules] locale set to %q", h.dash.Locale())
	writeJSON(w, http.StatusAccepted, localeRequest{Locale: h.dash.Locale()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[schedules] JSON encode error: %v", err)
	}
}
