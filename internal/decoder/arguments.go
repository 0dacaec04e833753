package decoder

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Arguments are decoded values keyed by parameter name. Values are kept in a JSON friendly
// form: addresses and hashes as hex, integers as base 10 strings, bytes as 0x prefixed hex,
// arrays as lists of those.
type Arguments map[string]any

// Has reports whether the argument is present and not null.
func (a Arguments) Has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

func (a Arguments) str(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is %T, not a string", name, v)
	}
	return s, nil
}

// Address returns an address argument.
func (a Arguments) Address(name string) (common.Address, error) {
	s, err := a.str(name)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("argument %q is not an address: %q", name, s)
	}
	return common.HexToAddress(s), nil
}

// Hash returns a bytes32 argument.
func (a Arguments) Hash(name string) (common.Hash, error) {
	b, err := a.Bytes(name)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("argument %q has %d bytes, want 32", name, len(b))
	}
	return common.BytesToHash(b), nil
}

// BigInt returns an integer argument.
func (a Arguments) BigInt(name string) (*big.Int, error) {
	s, err := a.str(name)
	if err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("argument %q is not an integer: %q", name, s)
	}
	return v, nil
}

// Uint64 returns an integer argument that fits in 64 bits.
func (a Arguments) Uint64(name string) (uint64, error) {
	v, err := a.BigInt(name)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("argument %q overflows uint64: %s", name, v)
	}
	return v.Uint64(), nil
}

// Bytes returns a bytes argument.
func (a Arguments) Bytes(name string) ([]byte, error) {
	s, err := a.str(name)
	if err != nil {
		return nil, err
	}
	return hexutil.Decode(s)
}

// Addresses returns an address[] argument.
func (a Arguments) Addresses(name string) ([]common.Address, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing argument %q", name)
	}

	var items []string
	switch list := v.(type) {
	case []string:
		items = list
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %q holds %T, not a string", name, item)
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("argument %q is %T, not a list", name, v)
	}

	out := make([]common.Address, 0, len(items))
	for _, s := range items {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("argument %q holds a non address %q", name, s)
		}
		out = append(out, common.HexToAddress(s))
	}
	return out, nil
}

// normalize converts a value produced by the ABI decoder into its stored form.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case [32]byte:
		return hexutil.Encode(x[:])
	case bool, string:
		return x
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case []common.Address:
		out := make([]string, len(x))
		for i, addr := range x {
			out[i] = addr.Hex()
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return fmt.Sprintf("%v", v)
	}
}
