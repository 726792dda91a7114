package http

import (
	"log/slog"
	"net/http"
	"strings"

	"movimenti/internal/core"
	"movimenti/internal/recurrence"
	"movimenti/internal/services"
)

// userID pulls the explicit user identifier off the request. Every endpoint
// requires it; there is no ambient session.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}

// parseWindow reads from/to query parameters. Both absent means the default
// window around today; one without the other is rejected.
func parseWindow(r *http.Request) (recurrence.Window, error) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))

	if fromStr == "" && toStr == "" {
		return services.DefaultWindow(core.Today()), nil
	}

	from, err := core.ParseDate(fromStr)
	if err != nil {
		return recurrence.Window{}, err
	}
	to, err := core.ParseDate(toStr)
	if err != nil {
		return recurrence.Window{}, err
	}
	return recurrence.Window{From: from, To: to}, nil
}

// handleCalendar serves the merged stored-plus-virtual window, with per-user
// response caching keyed by the window bounds.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	uid := userID(r)
	if uid == "" {
		badRequest(w, "user_id is required")
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := uid + "|" + window.From.ISO() + "|" + window.To.ISO()
	if cached, ok := s.windowCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Calendar cache hit", "user_id", uid, "key", key)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	entries, err := s.calendar.Window(r.Context(), uid, window)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := toCalendarResponse(window.From, window.To, entries)
	s.windowCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}
