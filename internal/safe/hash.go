package safe

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	domainTypeHash        = crypto.Keccak256Hash([]byte("EIP712Domain(address verifyingContract)"))
	domainChainIDTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))

	safeTxTypeHash = crypto.Keccak256Hash([]byte("SafeTx(address to,uint256 value,bytes data,uint8 operation," +
		"uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"))
	// Before 1.0.0 baseGas was named dataGas, which changes the type hash.
	safeTxDataGasTypeHash = crypto.Keccak256Hash([]byte("SafeTx(address to,uint256 value,bytes data,uint8 operation," +
		"uint256 safeTxGas,uint256 dataGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"))

	bytes32Type = mustType("bytes32")
	uint256Type = mustType("uint256")
	uint8Type   = mustType("uint8")
	addressType = mustType("address")

	domainArgs        = abi.Arguments{{Type: bytes32Type}, {Type: addressType}}
	domainChainIDArgs = abi.Arguments{{Type: bytes32Type}, {Type: uint256Type}, {Type: addressType}}
	safeTxArgs        = abi.Arguments{
		{Type: bytes32Type}, {Type: addressType}, {Type: uint256Type}, {Type: bytes32Type}, {Type: uint8Type},
		{Type: uint256Type}, {Type: uint256Type}, {Type: uint256Type}, {Type: addressType}, {Type: addressType},
		{Type: uint256Type},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// SafeTx is the payload an owner signs for execTransaction.
type SafeTx struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      uint8
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          uint64
}

// Hash returns the EIP-712 hash of the transaction for a wallet of the given version.
// The chain id is part of the domain from 1.3.0 on.
func (tx *SafeTx) Hash(safe common.Address, chainID uint64, version string) (common.Hash, error) {
	var (
		domain []byte
		err    error
	)
	if atLeast(version, "1.3.0") {
		domain, err = domainChainIDArgs.Pack(domainChainIDTypeHash, new(big.Int).SetUint64(chainID), safe)
	} else {
		domain, err = domainArgs.Pack(domainTypeHash, safe)
	}
	if err != nil {
		return common.Hash{}, err
	}

	typeHash := safeTxTypeHash
	if !atLeast(version, "1.0.0") {
		typeHash = safeTxDataGasTypeHash
	}

	encoded, err := safeTxArgs.Pack(
		typeHash,
		tx.To,
		orZero(tx.Value),
		crypto.Keccak256Hash(tx.Data),
		tx.Operation,
		orZero(tx.SafeTxGas),
		orZero(tx.BaseGas),
		orZero(tx.GasPrice),
		tx.GasToken,
		tx.RefundReceiver,
		new(big.Int).SetUint64(tx.Nonce),
	)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		crypto.Keccak256(domain),
		crypto.Keccak256(encoded),
	), nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
