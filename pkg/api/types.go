package api

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is the pipeline summary together with the current chain head.
type StatusResponse struct {
	ChainHead uint64 `json:"chain_head"`
	*store.Status
}

// SafeResponse is the latest replayed status of a safe.
type SafeResponse struct {
	Address         common.Address   `json:"address"`
	Owners          []common.Address `json:"owners"`
	Threshold       uint64           `json:"threshold"`
	Nonce           uint64           `json:"nonce"`
	MasterCopy      *common.Address  `json:"master_copy,omitempty"`
	FallbackHandler *common.Address  `json:"fallback_handler,omitempty"`
	Guard           *common.Address  `json:"guard,omitempty"`
	EnabledModules  []common.Address `json:"enabled_modules"`
	TxHash          common.Hash      `json:"tx_hash"`
	BlockNumber     uint64           `json:"block_number"`
}

func newSafeResponse(status *store.WalletStatus) SafeResponse {
	owners := status.Owners
	if owners == nil {
		owners = []common.Address{}
	}
	modules := status.EnabledModules
	if modules == nil {
		modules = []common.Address{}
	}

	return SafeResponse{
		Address:         status.Address,
		Owners:          owners,
		Threshold:       status.Threshold,
		Nonce:           status.Nonce,
		MasterCopy:      status.MasterCopy,
		FallbackHandler: status.FallbackHandler,
		Guard:           status.Guard,
		EnabledModules:  modules,
		TxHash:          status.TxHash,
		BlockNumber:     status.BlockNumber,
	}
}

// ReindexRequest resets the watermarks of the given addresses (all when empty).
type ReindexRequest struct {
	Addresses []string `json:"addresses"`
	FromBlock uint64   `json:"from_block"`
}

// ReprocessRequest replays the given safes (all when empty) from their first decoded element.
type ReprocessRequest struct {
	Addresses []string `json:"addresses"`
}

// ControlResponse reports how many rows a control request touched.
type ControlResponse struct {
	Updated int64 `json:"updated"`
}
