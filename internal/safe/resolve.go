package safe

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
)

// txContext is the stored view of the transaction an element belongs to.
type txContext struct {
	tx     *store.Transaction
	traces []*store.Trace
	byAddr map[string]*store.Trace
	events []*store.Event
}

func loadTxContext(tx *store.Tx, hash common.Hash) (*txContext, error) {
	stored, err := tx.Transaction(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", hash.Hex(), err)
	}
	traces, err := tx.TracesByTx(hash)
	if err != nil {
		return nil, err
	}
	events, err := tx.EventsByTx(hash)
	if err != nil {
		return nil, err
	}

	c := &txContext{tx: stored, traces: traces, events: events, byAddr: make(map[string]*store.Trace, len(traces))}
	for _, t := range traces {
		c.byAddr[t.TraceAddress] = t
	}
	return c, nil
}

// caller returns the account that called into the wallet for the trace at traceAddress,
// walking up through delegatecalls.
func (c *txContext) caller(traceAddress string) *common.Address {
	current := traceAddress
	for current != "" {
		current = parentAddress(current)
		parent, ok := c.byAddr[current]
		if !ok {
			break
		}
		if !parent.IsDelegateCall() {
			return parent.From
		}
	}
	return nil
}

func parentAddress(traceAddress string) string {
	i := strings.LastIndex(traceAddress, ",")
	if i < 0 {
		return ""
	}
	return traceAddress[:i]
}

// resolve fills the parts of call that depend on the rest of the transaction.
func (p *StateProcessor) resolve(tx *store.Tx, el *store.DecodedElement, call Call) error {
	c, err := loadTxContext(tx, el.TxHash)
	if err != nil {
		return err
	}

	var own *store.Trace
	if el.Source == store.SourceTrace {
		own = c.byAddr[el.SourceIndex]
	}

	switch call := call.(type) {
	case *SetupCall:
		call.MasterCopy = p.setupMasterCopy(c, el)
	case *ApproveHashCall:
		if call.Owner == nil && own != nil {
			call.Owner = c.caller(own.TraceAddress)
		}
		if call.Owner == nil {
			from := c.tx.From
			call.Owner = &from
		}
	case *ExecTransactionCall:
		call.TraceFailed = reportedFailure(own)
	case *ExecFromModuleCall:
		if call.Module == nil && own != nil {
			call.Module = c.caller(own.TraceAddress)
		}
		call.TraceFailed = reportedFailure(own)
	}
	return nil
}

func (p *StateProcessor) setupMasterCopy(c *txContext, el *store.DecodedElement) *common.Address {
	if el.CallType == "delegatecall" && el.CallTo != nil {
		return cloneAddress(el.CallTo)
	}

	for _, t := range c.traces {
		if el.Source == store.SourceTrace && t.SortKey <= el.SortKey {
			continue
		}
		if t.IsDelegateCall() && t.From != nil && *t.From == el.Address && t.To != nil {
			return cloneAddress(t.To)
		}
	}

	for _, ev := range c.events {
		decoded, err := p.registry.DecodeLog(ev.Topics, ev.Data)
		if err != nil || decoded.Name != decoder.EvProxyCreation || !decoded.Args.Has("singleton") {
			continue
		}
		proxy, err := decoded.Args.Address("proxy")
		if err != nil || proxy != el.Address {
			continue
		}
		if singleton, err := decoded.Args.Address("singleton"); err == nil {
			return &singleton
		}
	}
	return nil
}

// reportedFailure reads the success flag a Safe returns from execTransaction and
// execTransactionFromModule.
func reportedFailure(t *store.Trace) bool {
	if t == nil {
		return false
	}
	if t.Error != "" {
		return true
	}
	if len(t.Output) < common.HashLength {
		return false
	}
	return bytes.Equal(t.Output[:common.HashLength], common.Hash{}.Bytes())
}

// env collects the failure logs emitted by the wallet in the element's transaction.
func (p *StateProcessor) env(tx *store.Tx, el *store.DecodedElement) (Env, error) {
	env := Env{
		Address:       el.Address,
		ElementID:     el.ID,
		TxHash:        el.TxHash,
		ChainID:       p.chainID,
		Versions:      p.versions,
		FailedSafeTxs: make(map[common.Hash]bool),
		FailedModules: make(map[common.Address]bool),
	}

	events, err := tx.EventsByTx(el.TxHash)
	if err != nil {
		return env, err
	}

	for _, ev := range events {
		if ev.Address != el.Address {
			continue
		}
		decoded, err := p.registry.DecodeLog(ev.Topics, ev.Data)
		if errors.Is(err, decoder.ErrCannotDecode) {
			continue
		}
		if err != nil {
			return env, err
		}

		switch decoded.Name {
		case decoder.EvExecutionFailure:
			if hash, err := decoded.Args.Hash("txHash"); err == nil {
				env.FailedSafeTxs[hash] = true
			}
		case decoder.EvExecutionFromModuleError:
			if module, err := decoded.Args.Address("module"); err == nil {
				env.FailedModules[module] = true
			}
		}
	}
	return env, nil
}
