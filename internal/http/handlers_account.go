package http

import (
	"encoding/json"
	"net/http"

	"movimenti/internal/core"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAccounts(w, r)
	case http.MethodPost:
		s.createAccount(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		badRequest(w, "user_id is required")
		return
	}

	accounts, err := s.accounts.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]accountPayload, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountPayload(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	created, err := s.accounts.Create(r.Context(), core.Account{
		UserID: req.UserID,
		Name:   req.Name,
		Kind:   core.AccountKind(req.Kind),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountPayload(created))
}
