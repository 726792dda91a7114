package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTemplates(w, r)
	case http.MethodPost:
		s.createTemplate(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		badRequest(w, "user_id is required")
		return
	}

	templates, err := s.templates.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]templatePayload, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplatePayload(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	t, err := req.toTemplate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.templates.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The origin transaction just landed inside any cached window covering
	// the start date.
	s.invalidateWindows(created.UserID)
	writeJSON(w, http.StatusCreated, toTemplatePayload(created))
}

// handleTemplateCancel deactivates a template. The template row stays so
// already-posted occurrences keep their referent.
func (s *Server) handleTemplateCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	uid := userID(r)
	if uid == "" {
		badRequest(w, "user_id is required")
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "id must be a positive integer")
		return
	}

	if err := s.templates.Cancel(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateWindows(uid)
	w.WriteHeader(http.StatusNoContent)
}
