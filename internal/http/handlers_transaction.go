package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"movimenti/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
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

	txns, err := s.transactions.List(r.Context(), uid, window.From, window.To)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionPayload, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionPayload(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.transactions.Record(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = id

	s.invalidateWindows(t.UserID)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogTransactionRecorded(r.Context(), id, t.UserID, t.Description, t.Amount.Cents, t.Category)
	writeJSON(w, http.StatusCreated, toTransactionPayload(t))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	if err := s.transactions.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateWindows(uid)
	w.WriteHeader(http.StatusNoContent)
}
