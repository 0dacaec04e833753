package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
)

// Kind classifies a monitored address.
type Kind string

const (
	KindSafe         Kind = "safe"
	KindProxyFactory Kind = "proxy_factory"
)

// Purpose selects one of the high-water-marks of a monitored address.
type Purpose string

const (
	PurposeTraces Purpose = "tx_block_number"
	PurposeEvents Purpose = "events_block_number"
	PurposeTokens Purpose = "tokens_block_number"
)

// AllPurposes lists every watermark column.
var AllPurposes = []Purpose{PurposeTraces, PurposeEvents, PurposeTokens}

// Source tells where a decoded element comes from.
type Source string

const (
	SourceTrace Source = "trace"
	SourceEvent Source = "event"
)

// Token transfer kinds.
const (
	TokenKindERC20  = "erc20"
	TokenKindERC721 = "erc721"
)

// Confirmation signature types.
const (
	SignatureTypeApprovedHash = "APPROVED_HASH"
)

// MonitoredAddress is an address the indexers scan for.
type MonitoredAddress struct {
	Address           common.Address `meddler:"address,address"`
	Kind              Kind           `meddler:"kind"`
	TxBlockNumber     uint64         `meddler:"tx_block_number"`
	EventsBlockNumber uint64         `meddler:"events_block_number"`
	TokensBlockNumber uint64         `meddler:"tokens_block_number"`
	CreationTxHash    *common.Hash   `meddler:"creation_tx_hash,hash"`
	CreatedAt         int64          `meddler:"created_at"`
}

// AddressWatermark is one watermark of one address.
type AddressWatermark struct {
	Address common.Address `meddler:"address,address"`
	Block   uint64         `meddler:"block"`
}

// Block is a stored block header.
type Block struct {
	Number     uint64      `meddler:"number"`
	Hash       common.Hash `meddler:"hash,hash"`
	ParentHash common.Hash `meddler:"parent_hash,hash"`
	Timestamp  uint64      `meddler:"timestamp"`
	GasLimit   uint64      `meddler:"gas_limit"`
	GasUsed    uint64      `meddler:"gas_used"`
	Confirmed  bool        `meddler:"confirmed"`
}

// Transaction is a stored transaction. Block linkage and receipt fields stay NULL until mined.
type Transaction struct {
	Hash        common.Hash     `meddler:"hash,hash"`
	BlockNumber *uint64         `meddler:"block_number"`
	TxIndex     *uint64         `meddler:"tx_index"`
	From        common.Address  `meddler:"from_address,address"`
	To          *common.Address `meddler:"to_address,address"`
	Nonce       uint64          `meddler:"nonce"`
	Value       *big.Int        `meddler:"value,bigint"`
	Data        []byte          `meddler:"data"`
	Gas         uint64          `meddler:"gas"`
	GasPrice    *big.Int        `meddler:"gas_price,bigint"`
	GasUsed     *uint64         `meddler:"gas_used"`
	Status      *uint64         `meddler:"status"`
}

// Trace is a stored internal transaction.
type Trace struct {
	ID              int64           `meddler:"id,pk"`
	TxHash          common.Hash     `meddler:"tx_hash,hash"`
	TraceAddress    string          `meddler:"trace_address"`
	SortKey         string          `meddler:"sort_key"`
	BlockNumber     uint64          `meddler:"block_number"`
	TraceType       string          `meddler:"trace_type"`
	CallType        string          `meddler:"call_type,zeroisnull"`
	From            *common.Address `meddler:"from_address,address"`
	To              *common.Address `meddler:"to_address,address"`
	Value           *big.Int        `meddler:"value,bigint"`
	GasUsed         *uint64         `meddler:"gas_used"`
	Input           []byte          `meddler:"input"`
	Output          []byte          `meddler:"output"`
	Error           string          `meddler:"error,zeroisnull"`
	ContractAddress *common.Address `meddler:"contract_address,address"`
}

// IsDelegateCall reports whether the trace is a delegatecall.
func (t *Trace) IsDelegateCall() bool {
	return t.CallType == "delegatecall"
}

// Event is a stored log.
type Event struct {
	ID          int64          `meddler:"id,pk"`
	TxHash      common.Hash    `meddler:"tx_hash,hash"`
	LogIndex    uint           `meddler:"log_index"`
	BlockNumber uint64         `meddler:"block_number"`
	Address     common.Address `meddler:"address,address"`
	Topic0      *common.Hash   `meddler:"topic0,hash"`
	Topics      []common.Hash  `meddler:"topics,json"`
	Data        []byte         `meddler:"data"`
}

// DecodedElement is a trace or log whose payload was recognised.
type DecodedElement struct {
	ID           int64             `meddler:"id,pk"`
	TxHash       common.Hash       `meddler:"tx_hash,hash"`
	Source       Source            `meddler:"source"`
	SourceIndex  string            `meddler:"source_index"`
	Address      common.Address    `meddler:"address,address"`
	FunctionName string            `meddler:"function_name"`
	Arguments    decoder.Arguments `meddler:"arguments,json"`
	BlockNumber  uint64            `meddler:"block_number"`
	TxIndex      uint64            `meddler:"tx_index"`
	SortKey      string            `meddler:"sort_key"`
	CallFrom     *common.Address   `meddler:"call_from,address"`
	CallTo       *common.Address   `meddler:"call_to,address"`
	CallType     string            `meddler:"call_type,zeroisnull"`
	GasUsed      *uint64           `meddler:"gas_used"`
	Processed    bool              `meddler:"processed"`
	ReplayError  *string           `meddler:"replay_error"`
}

// WalletStatus is the configuration of a wallet after one decoded element.
// It is stored both as an append-only snapshot and as the last status of the wallet.
type WalletStatus struct {
	Address          common.Address   `meddler:"address,address"`
	DecodedElementID int64            `meddler:"decoded_element_id"`
	Owners           []common.Address `meddler:"owners,json"`
	Threshold        uint64           `meddler:"threshold"`
	Nonce            uint64           `meddler:"nonce"`
	MasterCopy       *common.Address  `meddler:"master_copy,address"`
	FallbackHandler  *common.Address  `meddler:"fallback_handler,address"`
	Guard            *common.Address  `meddler:"guard,address"`
	EnabledModules   []common.Address `meddler:"enabled_modules,json"`
	TxHash           common.Hash      `meddler:"tx_hash,hash"`
	BlockNumber      uint64           `meddler:"block_number"`
	TxIndex          uint64           `meddler:"tx_index"`
	SortKey          string           `meddler:"sort_key"`
}

// MultisigTransaction is a wallet transaction keyed by its EIP-712 hash.
type MultisigTransaction struct {
	SafeTxHash     common.Hash    `meddler:"safe_tx_hash,hash"`
	Safe           common.Address `meddler:"safe,address"`
	To             common.Address `meddler:"to_address,address"`
	Value          *big.Int       `meddler:"value,bigint"`
	Data           []byte         `meddler:"data"`
	Operation      uint8          `meddler:"operation"`
	SafeTxGas      *big.Int       `meddler:"safe_tx_gas,bigint"`
	BaseGas        *big.Int       `meddler:"base_gas,bigint"`
	GasPrice       *big.Int       `meddler:"gas_price,bigint"`
	GasToken       common.Address `meddler:"gas_token,address"`
	RefundReceiver common.Address `meddler:"refund_receiver,address"`
	Signatures     []byte         `meddler:"signatures"`
	Nonce          uint64         `meddler:"nonce"`
	EthereumTxHash *common.Hash   `meddler:"ethereum_tx_hash,hash"`
	Failed         *bool          `meddler:"failed"`
}

// MultisigConfirmation is an owner approval of a multisig transaction.
type MultisigConfirmation struct {
	ID             int64          `meddler:"id,pk"`
	SafeTxHash     common.Hash    `meddler:"safe_tx_hash,hash"`
	Owner          common.Address `meddler:"owner,address"`
	EthereumTxHash *common.Hash   `meddler:"ethereum_tx_hash,hash"`
	SignatureType  string         `meddler:"signature_type"`
}

// ModuleTransaction is a transaction executed by an enabled module.
type ModuleTransaction struct {
	DecodedElementID int64          `meddler:"decoded_element_id"`
	Safe             common.Address `meddler:"safe,address"`
	Module           common.Address `meddler:"module,address"`
	To               common.Address `meddler:"to_address,address"`
	Value            *big.Int       `meddler:"value,bigint"`
	Data             []byte         `meddler:"data"`
	Operation        uint8          `meddler:"operation"`
	Failed           bool           `meddler:"failed"`
}

// TokenTransfer is an ERC20 or ERC721 transfer touching a monitored wallet.
type TokenTransfer struct {
	ID           int64          `meddler:"id,pk"`
	TxHash       common.Hash    `meddler:"tx_hash,hash"`
	LogIndex     uint           `meddler:"log_index"`
	BlockNumber  uint64         `meddler:"block_number"`
	TokenAddress common.Address `meddler:"token_address,address"`
	From         common.Address `meddler:"from_address,address"`
	To           common.Address `meddler:"to_address,address"`
	Value        *big.Int       `meddler:"value,bigint"`
	TokenID      *big.Int       `meddler:"token_id,bigint"`
	Kind         string         `meddler:"kind"`
}

// Status summarises the pipeline for operators.
type Status struct {
	MonitoredSafes    int64            `json:"monitored_safes"`
	ProxyFactories    int64            `json:"proxy_factories"`
	MinWatermarks     map[string]int64 `json:"min_watermarks"`
	LatestBlock       *uint64          `json:"latest_block,omitempty"`
	UnconfirmedBlocks int64            `json:"unconfirmed_blocks"`
	PendingElements   int64            `json:"pending_elements"`
	FailedElements    int64            `json:"failed_elements"`
	WalletsWithStatus int64            `json:"wallets_with_status"`
}
