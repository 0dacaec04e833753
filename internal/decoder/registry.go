package decoder

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrCannotDecode is returned for payloads that match no known function or event.
// It is an expected outcome, not a failure of the batch.
var ErrCannotDecode = errors.New("cannot decode")

// Decoded is a recognised call or log.
type Decoded struct {
	Name string
	Args Arguments
}

type eventKey struct {
	topic  common.Hash
	topics int
}

// Registry maps function selectors and event topics to their ABI.
type Registry struct {
	methods map[[4]byte]abi.Method
	events  map[eventKey]abi.Event
	topics  map[string][]common.Hash
}

// NewRegistry builds the registry of every Safe, proxy factory and token signature.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		methods: make(map[[4]byte]abi.Method),
		events:  make(map[eventKey]abi.Event),
		topics:  make(map[string][]common.Hash),
	}

	for _, raw := range safeFunctions {
		if err := r.RegisterFunction(raw); err != nil {
			return nil, err
		}
	}

	for _, group := range [][]string{safeEvents, factoryEvents, tokenEvents} {
		for _, raw := range group {
			if err := r.RegisterEvent(raw); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// MustNewRegistry is NewRegistry for the built in signatures, which are known to parse.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// RegisterFunction adds a function signature.
func (r *Registry) RegisterFunction(raw string) error {
	sig, err := ParseSignature(raw)
	if err != nil {
		return err
	}
	method, err := sig.Method()
	if err != nil {
		return err
	}

	var selector [4]byte
	copy(selector[:], method.ID)
	if existing, ok := r.methods[selector]; ok {
		return fmt.Errorf("selector %x of %s already registered by %s", selector, method.Sig, existing.Sig)
	}
	r.methods[selector] = method
	return nil
}

// RegisterEvent adds an event signature.
func (r *Registry) RegisterEvent(raw string) error {
	sig, err := ParseSignature(raw)
	if err != nil {
		return err
	}
	event, err := sig.Event()
	if err != nil {
		return err
	}

	indexed := 0
	for _, in := range event.Inputs {
		if in.Indexed {
			indexed++
		}
	}

	key := eventKey{topic: event.ID, topics: indexed + 1}
	if existing, ok := r.events[key]; ok {
		return fmt.Errorf("event %s already registered as %s", event.Sig, existing.Sig)
	}
	r.events[key] = event
	if !slices.Contains(r.topics[event.RawName], event.ID) {
		r.topics[event.RawName] = append(r.topics[event.RawName], event.ID)
	}
	return nil
}

// Topic returns the topic0 of a registered event by name. Events registered with several
// layouts of different types return the first one.
func (r *Registry) Topic(name string) (common.Hash, bool) {
	topics := r.topics[name]
	if len(topics) == 0 {
		return common.Hash{}, false
	}
	return topics[0], true
}

// Topics returns every topic0 registered under the given event names. Unknown names are skipped.
func (r *Registry) Topics(names ...string) []common.Hash {
	out := make([]common.Hash, 0, len(names))
	for _, name := range names {
		for _, topic := range r.topics[name] {
			if !slices.Contains(out, topic) {
				out = append(out, topic)
			}
		}
	}
	return out
}

// SafeEventNames returns the names of every event emitted by Safe master copies.
func SafeEventNames() []string {
	names := make([]string, 0, len(safeEvents))
	for _, raw := range safeEvents {
		names = append(names, raw[:strings.Index(raw, "(")])
	}
	return names
}

// DecodeCall decodes call data. Unknown selectors and malformed payloads yield ErrCannotDecode.
func (r *Registry) DecodeCall(input []byte) (*Decoded, error) {
	if len(input) < 4 { //nolint:mnd
		return nil, ErrCannotDecode
	}

	var selector [4]byte
	copy(selector[:], input[:4])

	method, ok := r.methods[selector]
	if !ok {
		return nil, ErrCannotDecode
	}

	values := make(map[string]any, len(method.Inputs))
	if err := method.Inputs.UnpackIntoMap(values, input[4:]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCannotDecode, method.RawName, err)
	}

	return &Decoded{Name: method.RawName, Args: normalizeAll(values)}, nil
}

// DecodeLog decodes a log. Unknown topics and malformed payloads yield ErrCannotDecode.
func (r *Registry) DecodeLog(topics []common.Hash, data []byte) (*Decoded, error) {
	if len(topics) == 0 {
		return nil, ErrCannotDecode
	}

	event, ok := r.events[eventKey{topic: topics[0], topics: len(topics)}]
	if !ok {
		return nil, ErrCannotDecode
	}

	values := make(map[string]any, len(event.Inputs))
	if len(data) > 0 || len(event.Inputs.NonIndexed()) > 0 {
		if err := event.Inputs.NonIndexed().UnpackIntoMap(values, data); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCannotDecode, event.RawName, err)
		}
	}

	var indexed abi.Arguments
	for _, in := range event.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCannotDecode, event.RawName, err)
	}

	return &Decoded{Name: event.RawName, Args: normalizeAll(values)}, nil
}

// IsSafeEvent reports whether name is an event emitted by a Safe master copy.
func IsSafeEvent(name string) bool {
	for _, raw := range safeEvents {
		if strings.HasPrefix(raw, name+"(") {
			return true
		}
	}
	return false
}

func normalizeAll(values map[string]any) Arguments {
	args := make(Arguments, len(values))
	for k, v := range values {
		args[k] = normalize(v)
	}
	return args
}
