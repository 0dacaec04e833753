// Package safe replays the decoded calls of each wallet into its state history.
package safe

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
)

// WalletState is the configuration of a wallet at one point of its history. Values are never
// modified in place; every transition returns a new state.
type WalletState struct {
	Owners          []common.Address
	Threshold       uint64
	Nonce           uint64
	MasterCopy      *common.Address
	FallbackHandler *common.Address
	Guard           *common.Address
	EnabledModules  []common.Address
}

// StateFromStatus rebuilds the state stored in a status row.
func StateFromStatus(status *store.WalletStatus) WalletState {
	return WalletState{
		Owners:          slices.Clone(status.Owners),
		Threshold:       status.Threshold,
		Nonce:           status.Nonce,
		MasterCopy:      cloneAddress(status.MasterCopy),
		FallbackHandler: cloneAddress(status.FallbackHandler),
		Guard:           cloneAddress(status.Guard),
		EnabledModules:  slices.Clone(status.EnabledModules),
	}
}

// Status renders the state as the status row produced by element.
func (s WalletState) Status(element *store.DecodedElement) *store.WalletStatus {
	owners := slices.Clone(s.Owners)
	if owners == nil {
		owners = []common.Address{}
	}
	modules := slices.Clone(s.EnabledModules)
	if modules == nil {
		modules = []common.Address{}
	}

	return &store.WalletStatus{
		Address:          element.Address,
		DecodedElementID: element.ID,
		Owners:           owners,
		Threshold:        s.Threshold,
		Nonce:            s.Nonce,
		MasterCopy:       cloneAddress(s.MasterCopy),
		FallbackHandler:  cloneAddress(s.FallbackHandler),
		Guard:            cloneAddress(s.Guard),
		EnabledModules:   modules,
		TxHash:           element.TxHash,
		BlockNumber:      element.BlockNumber,
		TxIndex:          element.TxIndex,
		SortKey:          element.SortKey,
	}
}

// IsOwner reports whether address is an owner.
func (s WalletState) IsOwner(address common.Address) bool {
	return slices.Contains(s.Owners, address)
}

func (s WalletState) clone() WalletState {
	return WalletState{
		Owners:          slices.Clone(s.Owners),
		Threshold:       s.Threshold,
		Nonce:           s.Nonce,
		MasterCopy:      cloneAddress(s.MasterCopy),
		FallbackHandler: cloneAddress(s.FallbackHandler),
		Guard:           cloneAddress(s.Guard),
		EnabledModules:  slices.Clone(s.EnabledModules),
	}
}

func cloneAddress(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// nonZero returns nil for the zero address, which unsets handlers and guards.
func nonZero(a common.Address) *common.Address {
	if a == (common.Address{}) {
		return nil
	}
	return &a
}
