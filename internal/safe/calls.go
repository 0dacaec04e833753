package safe

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
)

// Call is a decoded wallet call. The set of implementations is closed.
type Call interface {
	FunctionName() string
	isCall()
}

// SetupCall initialises a wallet. MasterCopy is resolved from the surrounding transaction.
type SetupCall struct {
	Owners          []common.Address
	Threshold       uint64
	FallbackHandler *common.Address
	MasterCopy      *common.Address
}

// AddOwnerCall adds an owner. A nil threshold keeps the current one.
type AddOwnerCall struct {
	Owner     common.Address
	Threshold *uint64
}

// RemoveOwnerCall removes an owner. A nil threshold keeps the current one.
type RemoveOwnerCall struct {
	Owner     common.Address
	Threshold *uint64
}

// SwapOwnerCall replaces an owner.
type SwapOwnerCall struct {
	OldOwner common.Address
	NewOwner common.Address
}

// ChangeThresholdCall sets the number of required confirmations.
type ChangeThresholdCall struct {
	Threshold uint64
}

// ChangeMasterCopyCall points the proxy to a new singleton.
type ChangeMasterCopyCall struct {
	MasterCopy common.Address
}

// ExecTransactionCall executes a multisig transaction. Nonce is set when the call was read
// from an event that reports it. TraceFailed is set when the call trace reported a failure.
type ExecTransactionCall struct {
	Tx          SafeTx
	Signatures  []byte
	Nonce       *uint64
	TraceFailed bool
}

// ApproveHashCall approves a transaction hash on chain. Owner is resolved from the event or
// from the caller of the wallet; a nil owner skips the approval.
type ApproveHashCall struct {
	Hash  common.Hash
	Owner *common.Address
}

// EnableModuleCall enables a module.
type EnableModuleCall struct {
	Module common.Address
}

// DisableModuleCall disables a module.
type DisableModuleCall struct {
	Module common.Address
}

// SetFallbackHandlerCall sets or unsets the fallback handler.
type SetFallbackHandlerCall struct {
	Handler common.Address
}

// SetGuardCall sets or unsets the transaction guard.
type SetGuardCall struct {
	Guard common.Address
}

// ExecFromModuleCall is a transaction executed by an enabled module. Module is resolved from
// the event or from the caller of the wallet.
type ExecFromModuleCall struct {
	Module      *common.Address
	To          common.Address
	Value       *big.Int
	Data        []byte
	Operation   uint8
	TraceFailed bool
}

func (*SetupCall) FunctionName() string              { return decoder.FnSetup }
func (*AddOwnerCall) FunctionName() string           { return decoder.FnAddOwnerWithThreshold }
func (*RemoveOwnerCall) FunctionName() string        { return decoder.FnRemoveOwner }
func (*SwapOwnerCall) FunctionName() string          { return decoder.FnSwapOwner }
func (*ChangeThresholdCall) FunctionName() string    { return decoder.FnChangeThreshold }
func (*ChangeMasterCopyCall) FunctionName() string   { return decoder.FnChangeMasterCopy }
func (*ExecTransactionCall) FunctionName() string    { return decoder.FnExecTransaction }
func (*ApproveHashCall) FunctionName() string        { return decoder.FnApproveHash }
func (*EnableModuleCall) FunctionName() string       { return decoder.FnEnableModule }
func (*DisableModuleCall) FunctionName() string      { return decoder.FnDisableModule }
func (*SetFallbackHandlerCall) FunctionName() string { return decoder.FnSetFallbackHandler }
func (*SetGuardCall) FunctionName() string           { return decoder.FnSetGuard }
func (*ExecFromModuleCall) FunctionName() string     { return decoder.FnExecTransactionFromModule }

func (*SetupCall) isCall()              {}
func (*AddOwnerCall) isCall()           {}
func (*RemoveOwnerCall) isCall()        {}
func (*SwapOwnerCall) isCall()          {}
func (*ChangeThresholdCall) isCall()    {}
func (*ChangeMasterCopyCall) isCall()   {}
func (*ExecTransactionCall) isCall()    {}
func (*ApproveHashCall) isCall()        {}
func (*EnableModuleCall) isCall()       {}
func (*DisableModuleCall) isCall()      {}
func (*SetFallbackHandlerCall) isCall() {}
func (*SetGuardCall) isCall()           {}
func (*ExecFromModuleCall) isCall()     {}

// ParseCall converts a decoded element into its typed call. Values that depend on other
// elements of the transaction are left for the caller to resolve.
func ParseCall(element *store.DecodedElement) (Call, error) {
	args := element.Arguments
	p := argParser{args: args}

	var call Call
	switch element.FunctionName {
	case decoder.FnSetup:
		c := &SetupCall{Owners: p.addresses("_owners"), Threshold: p.uint64("_threshold")}
		if args.Has("fallbackHandler") {
			c.FallbackHandler = nonZero(p.address("fallbackHandler"))
		}
		call = c
	case decoder.FnAddOwnerWithThreshold:
		call = &AddOwnerCall{Owner: p.address("owner"), Threshold: p.optionalUint64("_threshold")}
	case decoder.FnRemoveOwner, decoder.FnRemoveOwnerWithThreshold:
		call = &RemoveOwnerCall{Owner: p.address("owner"), Threshold: p.optionalUint64("_threshold")}
	case decoder.FnSwapOwner:
		call = &SwapOwnerCall{OldOwner: p.address("oldOwner"), NewOwner: p.address("newOwner")}
	case decoder.FnChangeThreshold:
		call = &ChangeThresholdCall{Threshold: p.uint64("_threshold")}
	case decoder.FnChangeMasterCopy:
		call = &ChangeMasterCopyCall{MasterCopy: p.address("_masterCopy")}
	case decoder.FnExecTransaction:
		baseGas := "baseGas"
		if !args.Has(baseGas) {
			baseGas = "dataGas"
		}
		call = &ExecTransactionCall{
			Tx: SafeTx{
				To:             p.address("to"),
				Value:          p.bigInt("value"),
				Data:           p.bytes("data"),
				Operation:      uint8(p.uint64("operation")),
				SafeTxGas:      p.bigInt("safeTxGas"),
				BaseGas:        p.bigInt(baseGas),
				GasPrice:       p.bigInt("gasPrice"),
				GasToken:       p.address("gasToken"),
				RefundReceiver: p.address("refundReceiver"),
			},
			Signatures: p.bytes("signatures"),
			Nonce:      p.optionalUint64("nonce"),
		}
	case decoder.FnApproveHash:
		c := &ApproveHashCall{Hash: p.hash("hashToApprove")}
		if args.Has("owner") {
			owner := p.address("owner")
			c.Owner = &owner
		}
		call = c
	case decoder.FnEnableModule:
		call = &EnableModuleCall{Module: p.address("module")}
	case decoder.FnDisableModule:
		call = &DisableModuleCall{Module: p.address("module")}
	case decoder.FnSetFallbackHandler:
		call = &SetFallbackHandlerCall{Handler: p.address("handler")}
	case decoder.FnSetGuard:
		call = &SetGuardCall{Guard: p.address("guard")}
	case decoder.FnExecTransactionFromModule, decoder.FnExecTransactionFromModuleReturns:
		c := &ExecFromModuleCall{
			To:        p.address("to"),
			Value:     p.bigInt("value"),
			Data:      p.bytes("data"),
			Operation: uint8(p.uint64("operation")),
		}
		if args.Has("module") {
			module := p.address("module")
			c.Module = &module
		}
		call = c
	default:
		return nil, fmt.Errorf("unsupported function %q", element.FunctionName)
	}

	if p.err != nil {
		return nil, fmt.Errorf("invalid %s arguments: %w", element.FunctionName, p.err)
	}
	return call, nil
}

// argParser reads arguments and keeps the first error.
type argParser struct {
	args decoder.Arguments
	err  error
}

func (p *argParser) keep(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *argParser) address(name string) common.Address {
	v, err := p.args.Address(name)
	p.keep(err)
	return v
}

func (p *argParser) addresses(name string) []common.Address {
	v, err := p.args.Addresses(name)
	p.keep(err)
	return v
}

func (p *argParser) hash(name string) common.Hash {
	v, err := p.args.Hash(name)
	p.keep(err)
	return v
}

func (p *argParser) bigInt(name string) *big.Int {
	v, err := p.args.BigInt(name)
	p.keep(err)
	return v
}

func (p *argParser) uint64(name string) uint64 {
	v, err := p.args.Uint64(name)
	p.keep(err)
	return v
}

func (p *argParser) optionalUint64(name string) *uint64 {
	if !p.args.Has(name) {
		return nil
	}
	v := p.uint64(name)
	return &v
}

func (p *argParser) bytes(name string) []byte {
	if !p.args.Has(name) {
		return nil
	}
	v, err := p.args.Bytes(name)
	p.keep(err)
	return v
}
