package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"budget/internal/core"
	"budget/internal/store"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	rts, err := s.listRecurring(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecurringDTOs(rts))
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rt, err := payload.apply(core.RecurringTransaction{})
	if err != nil {
		respondStoreError(r.Context(), w, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}

	created, err := s.service.CreateRecurring(r.Context(), rt)
	s.collector.RecordStoreOp("recurring_transaction", "create", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRecurringDTO(created))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rts, err := s.listRecurring(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	for _, rt := range rts {
		if rt.ID == id {
			respondJSON(w, http.StatusOK, toRecurringDTO(rt))
			return
		}
	}
	respondDetail(w, http.StatusNotFound, "Recurring transaction not found")
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload recurringPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rts, err := s.listRecurring(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	var base *core.RecurringTransaction
	for i := range rts {
		if rts[i].ID == id {
			base = &rts[i]
			break
		}
	}
	if base == nil {
		respondDetail(w, http.StatusNotFound, "Recurring transaction not found")
		return
	}

	merged, err := payload.apply(*base)
	if err != nil {
		respondStoreError(r.Context(), w, fmt.Errorf("%w: %v", store.ErrValidation, err))
		return
	}

	// A frequency change re-derives the next occurrence date
	if payload.Frequency != nil && merged.Frequency != base.Frequency {
		merged.NextDate = core.Date{}
	}

	updated, err := s.service.UpdateRecurring(r.Context(), id, merged)
	s.collector.RecordStoreOp("recurring_transaction", "update", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRecurringDTO(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := s.service.DeleteRecurring(r.Context(), id)
	s.collector.RecordStoreOp("recurring_transaction", "delete", err)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Recurring transaction deleted successfully"})
}
