package safe

import (
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
)

// Warning kinds reported by Apply.
const (
	WarnOwnerNotFound     = "owner_not_found"
	WarnOwnerExists       = "owner_exists"
	WarnModuleNotFound    = "module_not_found"
	WarnUnknownApprover   = "unknown_approver"
	WarnUnknownModule     = "unknown_module"
	WarnNonceMismatch     = "nonce_mismatch"
	WarnHashFailed        = "hash_failed"
	WarnNotInitialized    = "not_initialized"
	WarnUnsupportedCall   = "unsupported_call"
	WarnUnknownMasterCopy = "unknown_master_copy"
)

// Env is what a transition needs to know besides the wallet state and the call.
type Env struct {
	Address   common.Address
	ElementID int64
	TxHash    common.Hash
	ChainID   uint64
	Versions  *Versions

	// FailedSafeTxs holds the hashes reported by ExecutionFailure logs of the transaction.
	FailedSafeTxs map[common.Hash]bool
	// FailedModules holds the modules reported by ExecutionFromModuleFailure logs of the wallet.
	FailedModules map[common.Address]bool
}

// Warning is an inconsistency found while replaying. The rest of the transition still applies.
type Warning struct {
	Kind    string
	Message string
}

// Effects are the rows a transition creates or removes besides the wallet status.
type Effects struct {
	MultisigTx    *store.MultisigTransaction
	Confirmation  *store.MultisigConfirmation
	ModuleTx      *store.ModuleTransaction
	DeleteUnmined bool
	Warnings      []Warning
}

func (e *Effects) warn(kind, format string, args ...any) {
	e.Warnings = append(e.Warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Apply computes the state after call. state is not modified.
func Apply(state WalletState, call Call, env Env) (WalletState, Effects) {
	next := state.clone()
	var fx Effects

	switch c := call.(type) {
	case *SetupCall:
		next = WalletState{
			Owners:          slices.Clone(c.Owners),
			Threshold:       c.Threshold,
			MasterCopy:      cloneAddress(c.MasterCopy),
			FallbackHandler: cloneAddress(c.FallbackHandler),
		}
		if c.MasterCopy == nil {
			fx.warn(WarnUnknownMasterCopy, "master copy of %s not found in setup transaction", env.Address.Hex())
		}

	case *AddOwnerCall:
		if next.IsOwner(c.Owner) {
			fx.warn(WarnOwnerExists, "owner %s already in %s", c.Owner.Hex(), env.Address.Hex())
		} else {
			next.Owners = append(next.Owners, c.Owner)
		}
		if c.Threshold != nil {
			next.Threshold = *c.Threshold
		}

	case *RemoveOwnerCall:
		next.Owners = removeOwner(next.Owners, c.Owner, env, &fx)
		if c.Threshold != nil {
			next.Threshold = *c.Threshold
		}

	case *SwapOwnerCall:
		next.Owners = removeOwner(next.Owners, c.OldOwner, env, &fx)
		next.Owners = append(next.Owners, c.NewOwner)

	case *ChangeThresholdCall:
		next.Threshold = c.Threshold

	case *ChangeMasterCopyCall:
		if env.Versions != nil && env.Versions.Breaks(state.MasterCopy, &c.MasterCopy) {
			fx.DeleteUnmined = true
		}
		next.MasterCopy = cloneAddress(&c.MasterCopy)

	case *ExecTransactionCall:
		applyExecTransaction(state, &next, c, env, &fx)

	case *ApproveHashCall:
		if c.Owner == nil {
			fx.warn(WarnUnknownApprover, "cannot resolve the owner approving %s in tx %s", c.Hash.Hex(), env.TxHash.Hex())
			break
		}
		txHash := env.TxHash
		fx.Confirmation = &store.MultisigConfirmation{
			SafeTxHash:     c.Hash,
			Owner:          *c.Owner,
			EthereumTxHash: &txHash,
			SignatureType:  store.SignatureTypeApprovedHash,
		}

	case *EnableModuleCall:
		if !slices.Contains(next.EnabledModules, c.Module) {
			next.EnabledModules = append(next.EnabledModules, c.Module)
		}

	case *DisableModuleCall:
		idx := slices.Index(next.EnabledModules, c.Module)
		if idx < 0 {
			fx.warn(WarnModuleNotFound, "module %s not enabled in %s", c.Module.Hex(), env.Address.Hex())
		} else {
			next.EnabledModules = slices.Delete(next.EnabledModules, idx, idx+1)
		}

	case *SetFallbackHandlerCall:
		next.FallbackHandler = nonZero(c.Handler)

	case *SetGuardCall:
		next.Guard = nonZero(c.Guard)

	case *ExecFromModuleCall:
		if c.Module == nil {
			fx.warn(WarnUnknownModule, "cannot resolve the module executing tx %s", env.TxHash.Hex())
			break
		}
		failed := c.TraceFailed || env.FailedModules[*c.Module]
		fx.ModuleTx = &store.ModuleTransaction{
			DecodedElementID: env.ElementID,
			Safe:             env.Address,
			Module:           *c.Module,
			To:               c.To,
			Value:            orZero(c.Value),
			Data:             c.Data,
			Operation:        c.Operation,
			Failed:           failed,
		}

	default:
		fx.warn(WarnUnsupportedCall, "unsupported call %T", call)
	}

	return next, fx
}

func applyExecTransaction(state WalletState, next *WalletState, c *ExecTransactionCall, env Env, fx *Effects) {
	nonce := state.Nonce
	if c.Nonce != nil {
		if *c.Nonce != state.Nonce {
			fx.warn(WarnNonceMismatch, "%s executed nonce %d, replayed nonce is %d",
				env.Address.Hex(), *c.Nonce, state.Nonce)
		}
		nonce = *c.Nonce
	}

	tx := c.Tx
	tx.Nonce = nonce

	version := ""
	if env.Versions != nil {
		version = env.Versions.Version(state.MasterCopy)
	}

	hash, err := tx.Hash(env.Address, env.ChainID, version)
	if err != nil {
		fx.warn(WarnHashFailed, "cannot hash transaction %d of %s: %v", nonce, env.Address.Hex(), err)
	} else {
		failed := c.TraceFailed || env.FailedSafeTxs[hash]
		txHash := env.TxHash
		fx.MultisigTx = &store.MultisigTransaction{
			SafeTxHash:     hash,
			Safe:           env.Address,
			To:             tx.To,
			Value:          orZero(tx.Value),
			Data:           tx.Data,
			Operation:      tx.Operation,
			SafeTxGas:      orZero(tx.SafeTxGas),
			BaseGas:        orZero(tx.BaseGas),
			GasPrice:       orZero(tx.GasPrice),
			GasToken:       tx.GasToken,
			RefundReceiver: tx.RefundReceiver,
			Signatures:     c.Signatures,
			Nonce:          nonce,
			EthereumTxHash: &txHash,
			Failed:         &failed,
		}
	}

	next.Nonce = nonce + 1
}

func removeOwner(owners []common.Address, owner common.Address, env Env, fx *Effects) []common.Address {
	idx := slices.Index(owners, owner)
	if idx < 0 {
		fx.warn(WarnOwnerNotFound, "owner %s not found in %s", owner.Hex(), env.Address.Hex())
		return owners
	}
	return slices.Delete(owners, idx, idx+1)
}
