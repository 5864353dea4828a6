package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"divebooks/internal/ledger"
)

// handleTransactions serves the whole CRUD surface on one route, dispatching
// on the HTTP method the way the legacy endpoint did.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodPut:
		s.updateTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to fetch transactions.")
		return
	}
	// fromCoreList never returns nil, so an empty ledger encodes as [].
	writeJSON(w, http.StatusOK, fromCoreList(txs))
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionJSON
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to create transaction. Data is incomplete.")
		return
	}

	t, err := payload.toCore()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to create transaction. Data is incomplete.")
		return
	}
	t.ID = "" // ids are always server-assigned
	if t.CreatedBy == "" {
		if claims := claimsFrom(r.Context()); claims != nil {
			t.CreatedBy = claims.Username
		}
	}
	t = applyDefaults(t, time.Now())
	if err := t.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to create transaction. Data is incomplete.")
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to create transaction.")
		return
	}

	slog.InfoContext(r.Context(), "Transaction created",
		"id", created.ID,
		"type", created.Type,
		"category", created.Category,
		"amount_cents", created.Amount.Cents,
		"currency", created.Currency)
	writeJSON(w, http.StatusCreated, struct {
		Message     string          `json:"message"`
		Transaction transactionJSON `json:"transaction"`
	}{
		Message:     "Transaction created.",
		Transaction: fromCore(created),
	})
}

// updateTransaction replaces every mutable field of the row; a PUT carries
// the complete transaction, not a patch. createdBy is ignored on update.
func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionJSON
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to update transaction. ID is required.")
		return
	}
	if strings.TrimSpace(payload.ID) == "" {
		writeMessage(w, http.StatusBadRequest, "Unable to update transaction. ID is required.")
		return
	}

	t, err := payload.toCore()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to update transaction. Data is incomplete.")
		return
	}
	t = applyDefaults(t, time.Now())
	if err := t.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to update transaction. Data is incomplete.")
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), t); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Transaction not found.")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction update failed", "error", err, "id", t.ID)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to update transaction.")
		return
	}

	slog.InfoContext(r.Context(), "Transaction updated", "id", t.ID)
	writeMessage(w, http.StatusOK, "Transaction updated.")
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			id = strings.TrimSpace(payload.ID)
		}
	}
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "Unable to delete transaction. ID is required.")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Transaction not found.")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "id", id)
		writeMessage(w, http.StatusServiceUnavailable, "Unable to delete transaction.")
		return
	}

	slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
	writeMessage(w, http.StatusOK, "Transaction deleted.")
}
