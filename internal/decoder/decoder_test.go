package decoder

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	ownerA = common.HexToAddress("0x000000000000000000000000000000000000000A")
	ownerB = common.HexToAddress("0x000000000000000000000000000000000000000B")
	ownerC = common.HexToAddress("0x000000000000000000000000000000000000000C")
)

func encodeCall(t *testing.T, raw string, args ...any) []byte {
	t.Helper()

	sig, err := ParseSignature(raw)
	require.NoError(t, err)
	method, err := sig.Method()
	require.NoError(t, err)
	packed, err := method.Inputs.Pack(args...)
	require.NoError(t, err)

	return append(append([]byte{}, method.ID...), packed...)
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Signature
		wantErr bool
	}{
		{
			name: "named and indexed params",
			raw:  "Transfer(address indexed from, address indexed to, uint256 value)",
			want: &Signature{
				Raw:  "Transfer(address indexed from, address indexed to, uint256 value)",
				Name: "Transfer",
				Params: []Param{
					{Name: "from", Type: "address", Indexed: true},
					{Name: "to", Type: "address", Indexed: true},
					{Name: "value", Type: "uint256"},
				},
			},
		},
		{
			name: "types only",
			raw:  "changeThreshold(uint256)",
			want: &Signature{
				Raw:    "changeThreshold(uint256)",
				Name:   "changeThreshold",
				Params: []Param{{Name: "arg0", Type: "uint256"}},
			},
		},
		{
			name: "no params",
			raw:  "nonce()",
			want: &Signature{Raw: "nonce()", Name: "nonce"},
		},
		{name: "empty", raw: "", wantErr: true},
		{name: "missing parenthesis", raw: "setup(address", wantErr: true},
		{name: "bad keyword", raw: "E(address foo bar)", wantErr: true},
		{name: "duplicate names", raw: "E(address a, address a)", wantErr: true},
		{name: "bad name", raw: "1E(address a)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSignature(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSignature_InvalidType(t *testing.T) {
	sig, err := ParseSignature("foo(uint257 x)")
	require.NoError(t, err)

	_, err = sig.Method()
	require.Error(t, err)
}

func TestRegistry_DecodeCall(t *testing.T) {
	r := MustNewRegistry()

	t.Run("swapOwner", func(t *testing.T) {
		input := encodeCall(t, "swapOwner(address prevOwner, address oldOwner, address newOwner)",
			common.HexToAddress("0x1"), ownerA, ownerC)

		decoded, err := r.DecodeCall(input)
		require.NoError(t, err)
		require.Equal(t, FnSwapOwner, decoded.Name)

		oldOwner, err := decoded.Args.Address("oldOwner")
		require.NoError(t, err)
		require.Equal(t, ownerA, oldOwner)

		newOwner, err := decoded.Args.Address("newOwner")
		require.NoError(t, err)
		require.Equal(t, ownerC, newOwner)
	})

	t.Run("setup with fallback handler", func(t *testing.T) {
		handler := common.HexToAddress("0xf48f2b2d2a534e402487b3ee7c18c33aec0fe5e4")
		input := encodeCall(t, safeFunctions[0],
			[]common.Address{ownerA, ownerB}, big.NewInt(2), common.Address{}, []byte{},
			handler, common.Address{}, big.NewInt(0), common.Address{})

		decoded, err := r.DecodeCall(input)
		require.NoError(t, err)
		require.Equal(t, FnSetup, decoded.Name)

		owners, err := decoded.Args.Addresses("_owners")
		require.NoError(t, err)
		require.Equal(t, []common.Address{ownerA, ownerB}, owners)

		threshold, err := decoded.Args.Uint64("_threshold")
		require.NoError(t, err)
		require.Equal(t, uint64(2), threshold)

		gotHandler, err := decoded.Args.Address("fallbackHandler")
		require.NoError(t, err)
		require.Equal(t, handler, gotHandler)
	})

	t.Run("legacy setup", func(t *testing.T) {
		input := encodeCall(t, safeFunctions[2], []common.Address{ownerA}, big.NewInt(1), common.Address{}, []byte{})

		decoded, err := r.DecodeCall(input)
		require.NoError(t, err)
		require.Equal(t, FnSetup, decoded.Name)
		require.False(t, decoded.Args.Has("fallbackHandler"))
	})

	t.Run("approveHash", func(t *testing.T) {
		hash := crypto.Keccak256Hash([]byte("tx"))
		input := encodeCall(t, "approveHash(bytes32 hashToApprove)", hash)

		decoded, err := r.DecodeCall(input)
		require.NoError(t, err)
		got, err := decoded.Args.Hash("hashToApprove")
		require.NoError(t, err)
		require.Equal(t, hash, got)
	})

	t.Run("unknown selector", func(t *testing.T) {
		_, err := r.DecodeCall([]byte{0xde, 0xad, 0xbe, 0xef, 0x00})
		require.ErrorIs(t, err, ErrCannotDecode)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := r.DecodeCall([]byte{0x01})
		require.ErrorIs(t, err, ErrCannotDecode)
	})

	t.Run("truncated arguments", func(t *testing.T) {
		input := encodeCall(t, "changeThreshold(uint256 _threshold)", big.NewInt(3))
		_, err := r.DecodeCall(input[:10])
		require.ErrorIs(t, err, ErrCannotDecode)
	})
}

func TestRegistry_DecodeLog(t *testing.T) {
	r := MustNewRegistry()
	transferTopic := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	t.Run("erc20 transfer", func(t *testing.T) {
		decoded, err := r.DecodeLog(
			[]common.Hash{transferTopic, common.BytesToHash(ownerA.Bytes()), common.BytesToHash(ownerB.Bytes())},
			common.LeftPadBytes(big.NewInt(1000).Bytes(), 32),
		)
		require.NoError(t, err)
		require.Equal(t, EvTransfer, decoded.Name)

		value, err := decoded.Args.BigInt("value")
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1000), value)

		from, err := decoded.Args.Address("from")
		require.NoError(t, err)
		require.Equal(t, ownerA, from)
	})

	t.Run("erc721 transfer", func(t *testing.T) {
		decoded, err := r.DecodeLog([]common.Hash{
			transferTopic,
			common.BytesToHash(ownerA.Bytes()),
			common.BytesToHash(ownerB.Bytes()),
			common.BigToHash(big.NewInt(7)),
		}, nil)
		require.NoError(t, err)

		tokenID, err := decoded.Args.BigInt("tokenId")
		require.NoError(t, err)
		require.Equal(t, big.NewInt(7), tokenID)
		require.False(t, decoded.Args.Has("value"))
	})

	t.Run("proxy creation indexed and not indexed", func(t *testing.T) {
		topic := crypto.Keccak256Hash([]byte("ProxyCreation(address,address)"))
		proxy := common.HexToAddress("0x5afe")
		singleton := common.HexToAddress("0xd9db270c1b5e3bd161e8c8503c55ceabee709552")

		indexed, err := r.DecodeLog(
			[]common.Hash{topic, common.BytesToHash(proxy.Bytes())},
			common.LeftPadBytes(singleton.Bytes(), 32),
		)
		require.NoError(t, err)

		plain, err := r.DecodeLog(
			[]common.Hash{topic},
			append(common.LeftPadBytes(proxy.Bytes(), 32), common.LeftPadBytes(singleton.Bytes(), 32)...),
		)
		require.NoError(t, err)

		require.Equal(t, indexed.Args, plain.Args)
		require.Equal(t, EvProxyCreation, plain.Name)
	})

	t.Run("approve hash event", func(t *testing.T) {
		hash := crypto.Keccak256Hash([]byte("tx"))
		topic := crypto.Keccak256Hash([]byte("ApproveHash(bytes32,address)"))

		decoded, err := r.DecodeLog([]common.Hash{topic, hash, common.BytesToHash(ownerA.Bytes())}, nil)
		require.NoError(t, err)

		owner, err := decoded.Args.Address("owner")
		require.NoError(t, err)
		require.Equal(t, ownerA, owner)

		approved, err := decoded.Args.Hash("approvedHash")
		require.NoError(t, err)
		require.Equal(t, hash, approved)
	})

	t.Run("unknown topic", func(t *testing.T) {
		_, err := r.DecodeLog([]common.Hash{common.HexToHash("0x1234")}, nil)
		require.ErrorIs(t, err, ErrCannotDecode)
	})

	t.Run("no topics", func(t *testing.T) {
		_, err := r.DecodeLog(nil, nil)
		require.ErrorIs(t, err, ErrCannotDecode)
	})
}

func TestRegistry_Topics(t *testing.T) {
	r := MustNewRegistry()

	topics := r.Topics(EvProxyCreation)
	require.Len(t, topics, 2)
	require.Contains(t, topics, crypto.Keccak256Hash([]byte("ProxyCreation(address,address)")))
	require.Contains(t, topics, crypto.Keccak256Hash([]byte("ProxyCreation(address)")))

	transfer, ok := r.Topic(EvTransfer)
	require.True(t, ok)
	require.Equal(t, crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")), transfer)

	_, ok = r.Topic("Nope")
	require.False(t, ok)

	require.Len(t, r.Topics(SafeEventNames()...), len(safeEvents))
	require.True(t, IsSafeEvent(EvAddedOwner))
	require.False(t, IsSafeEvent(EvTransfer))
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := MustNewRegistry()

	err := r.RegisterFunction("changeThreshold(uint256 other)")
	require.Error(t, err)

	err = r.RegisterEvent("AddedOwner(address someoneElse)")
	require.Error(t, err)
}

func TestArguments_SurviveJSON(t *testing.T) {
	r := MustNewRegistry()
	input := encodeCall(t, safeFunctions[0],
		[]common.Address{ownerA, ownerB}, big.NewInt(2), common.Address{}, []byte{0x01, 0x02},
		common.Address{}, common.Address{}, big.NewInt(0), common.Address{})

	decoded, err := r.DecodeCall(input)
	require.NoError(t, err)

	raw, err := json.Marshal(decoded.Args)
	require.NoError(t, err)

	var restored Arguments
	require.NoError(t, json.Unmarshal(raw, &restored))

	owners, err := restored.Addresses("_owners")
	require.NoError(t, err)
	require.Equal(t, []common.Address{ownerA, ownerB}, owners)

	data, err := restored.Bytes("data")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, data)
}

func TestArguments_Errors(t *testing.T) {
	args := Arguments{"n": "12", "bad": 5, "addr": "nope", "big": "340282366920938463463374607431768211456"}

	_, err := args.Uint64("missing")
	require.Error(t, err)

	_, err = args.Address("bad")
	require.Error(t, err)

	_, err = args.Address("addr")
	require.Error(t, err)

	_, err = args.Uint64("big")
	require.Error(t, err)

	n, err := args.Uint64("n")
	require.NoError(t, err)
	require.Equal(t, uint64(12), n)

}
