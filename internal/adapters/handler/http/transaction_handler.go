package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
	"github.com/vncsmyrnk/pollprogram/internal/core/ports"
)

type TransactionHandler struct {
	service ports.ProgramService
}

func NewTransactionHandler(service ports.ProgramService) *TransactionHandler {
	return &TransactionHandler{
		service: service,
	}
}

type transactionRequest struct {
	// Data is the base64 instruction data: discriminator plus arguments.
	Data              string              `json:"data"`
	Accounts          domain.AccountMetas `json:"accounts"`
	RemainingAccounts []domain.Address    `json:"remaining_accounts"`
}

// Submit godoc
// @Summary      Executes one program instruction
// @Description  Decodes the instruction data and runs it atomically on behalf of the signer named by the bearer token.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      401
// @Failure      404
// @Failure      409
// @Router       /api/transactions [post]
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	signer, ok := r.Context().Value(SignerKey).(domain.Address)
	if !ok {
		http.Error(w, "Unauthorized: missing signer context", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		http.Error(w, "instruction data must be base64", http.StatusBadRequest)
		return
	}
	ix, err := domain.DecodeInstruction(data)
	if err != nil {
		writeError(w, err)
		return
	}
	ix.Accounts = req.Accounts
	ix.RemainingAccounts = req.RemainingAccounts

	receipt, err := h.service.Execute(r.Context(), signer, ix)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
