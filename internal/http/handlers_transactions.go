package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"budget/internal/core"
	"budget/internal/store"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := payload.apply(core.Transaction{})
	if err != nil {
		respondStoreError(r.Context(), w, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}

	created, err := s.service.CreateTransaction(r.Context(), tx)
	s.collector.RecordStoreOp("transaction", "create", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	txs, err := s.listTransactions(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	for _, t := range txs {
		if t.ID == id {
			respondJSON(w, http.StatusOK, toTransactionDTO(t))
			return
		}
	}
	respondDetail(w, http.StatusNotFound, "Transaction not found")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Partial updates merge onto the stored record
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	var base *core.Transaction
	for i := range txs {
		if txs[i].ID == id {
			base = &txs[i]
			break
		}
	}
	if base == nil {
		respondDetail(w, http.StatusNotFound, "Transaction not found")
		return
	}

	merged, err := payload.apply(*base)
	if err != nil {
		respondStoreError(r.Context(), w, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}

	updated, err := s.service.UpdateTransaction(r.Context(), id, merged)
	s.collector.RecordStoreOp("transaction", "update", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := s.service.DeleteTransaction(r.Context(), id)
	s.collector.RecordStoreOp("transaction", "delete", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}
