package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

const maxRequestBody = 1 << 20

// Handler handles HTTP requests for the API.
type Handler struct {
	store *store.Store
	rpc   rpc.EthClient
	log   *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(st *store.Store, rpcClient rpc.EthClient, log *logger.Logger) *Handler {
	return &Handler{
		store: st,
		rpc:   rpcClient,
		log:   log,
	}
}

// Health reports that the server is up.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// GetStatus returns the pipeline summary.
// @Summary Pipeline status
// @Description Chain head, minimum watermarks and pending decoded elements
// @Tags Pipeline
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.store.Read().Status()
	if err != nil {
		h.log.Errorw("failed to collect status", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to collect status")
		return
	}

	response := StatusResponse{Status: status}
	if h.rpc != nil {
		head, err := h.rpc.CurrentBlockNumber(r.Context())
		if err != nil {
			h.log.Warnw("failed to fetch chain head", "error", err)
		} else {
			response.ChainHead = head
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// GetSafe returns the latest replayed status of a safe.
// @Summary Safe status
// @Tags Safes
// @Produce json
// @Param address path string true "Safe address"
// @Success 200 {object} SafeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /safes/{address} [get]
func (h *Handler) GetSafe(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("address")
	if !common.IsHexAddress(raw) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid address %q", raw))
		return
	}
	address := common.HexToAddress(raw)

	status, err := h.store.Read().LastStatus(address)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, fmt.Sprintf("safe %s has no replayed status", address.Hex()))
		return
	case err != nil:
		h.log.Errorw("failed to load safe status", "address", address, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load safe status")
		return
	}

	respondJSON(w, http.StatusOK, newSafeResponse(status))
}

// Reindex resets watermarks so addresses are scanned again.
// @Summary Reindex addresses
// @Tags Control
// @Accept json
// @Produce json
// @Param request body ReindexRequest true "Addresses and start block"
// @Success 200 {object} ControlResponse
// @Failure 400 {object} ErrorResponse
// @Router /reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	addresses, err := parseAddresses(req.Addresses)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.Reindex(r.Context(), addresses, req.FromBlock)
	if err != nil {
		h.log.Errorw("reindex failed", "error", err)
		respondError(w, http.StatusInternalServerError, "reindex failed")
		return
	}

	respondJSON(w, http.StatusOK, ControlResponse{Updated: updated})
}

// Reprocess deletes derived wallet state so it is replayed again.
// @Summary Reprocess safes
// @Tags Control
// @Accept json
// @Produce json
// @Param request body ReprocessRequest true "Addresses"
// @Success 200 {object} ControlResponse
// @Failure 400 {object} ErrorResponse
// @Router /reprocess [post]
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	var req ReprocessRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	addresses, err := parseAddresses(req.Addresses)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reset, err := h.store.Reprocess(r.Context(), addresses)
	if err != nil {
		h.log.Errorw("reprocess failed", "error", err)
		respondError(w, http.StatusInternalServerError, "reprocess failed")
		return
	}

	respondJSON(w, http.StatusOK, ControlResponse{Updated: reset})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseAddresses(raw []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		out = append(out, common.HexToAddress(s))
	}
	return out, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
