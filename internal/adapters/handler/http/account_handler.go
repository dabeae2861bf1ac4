package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

func (h *AccountHandler) Program(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]domain.Address{"program_id": h.service.ProgramID()})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return
	}

	view, err := h.service.GetAccount(r.Context(), addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AccountHandler) DerivePollAddress(w http.ResponseWriter, r *http.Request) {
	pollID, err := strconv.ParseUint(chi.URLParam(r, "pollID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	derived, err := h.service.DerivePollAddress(pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, derived)
}

func (h *AccountHandler) DeriveCandidateAddress(w http.ResponseWriter, r *http.Request) {
	pollID, err := strconv.ParseUint(chi.URLParam(r, "pollID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	derived, err := h.service.DeriveCandidateAddress(chi.URLParam(r, "name"), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, derived)
}

type airdropRequest struct {
	Address  domain.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

func (h *AccountHandler) Airdrop(w http.ResponseWriter, r *http.Request) {
	var req airdropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Address.IsZero() {
		http.Error(w, "address is required", http.StatusBadRequest)
		return
	}

	acct, err := h.service.Airdrop(r.Context(), req.Address, req.Lamports)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
