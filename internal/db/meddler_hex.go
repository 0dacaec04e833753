package db

import (
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("address", HexMeddler[common.Address]{parse: common.HexToAddress})
	meddler.Register("hash", HexMeddler[common.Hash]{parse: common.HexToHash})
}

type hexValue interface {
	comparable
	Hex() string
}

// HexMeddler stores go-ethereum fixed size values (addresses, hashes) as 0x prefixed strings.
// Both value and pointer fields are supported; a nil pointer maps to NULL.
type HexMeddler[T hexValue] struct {
	parse func(string) T
}

func (h HexMeddler[T]) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

func (h HexMeddler[T]) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case **T:
		if !ns.Valid {
			*ptr = nil
			return nil
		}
		v := h.parse(ns.String)
		*ptr = &v
	case *T:
		var zero T
		*ptr = zero
		if ns.Valid {
			*ptr = h.parse(ns.String)
		}
	default:
		return fmt.Errorf("unsupported field type %T", fieldAddr)
	}

	return nil
}

func (h HexMeddler[T]) PreWrite(field interface{}) (saveValue interface{}, err error) {
	switch v := field.(type) {
	case *T:
		if v == nil {
			return nil, nil
		}
		return (*v).Hex(), nil
	case T:
		return v.Hex(), nil
	default:
		return nil, fmt.Errorf("unsupported field type %T", field)
	}
}
