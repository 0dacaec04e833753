package decoder

// Function and event names the state processor understands. Safe L2 events are mapped to the
// function names by the events processor.
const (
	FnSetup                            = "setup"
	FnAddOwnerWithThreshold            = "addOwnerWithThreshold"
	FnRemoveOwner                      = "removeOwner"
	FnRemoveOwnerWithThreshold         = "removeOwnerWithThreshold"
	FnSwapOwner                        = "swapOwner"
	FnChangeThreshold                  = "changeThreshold"
	FnChangeMasterCopy                 = "changeMasterCopy"
	FnExecTransaction                  = "execTransaction"
	FnApproveHash                      = "approveHash"
	FnEnableModule                     = "enableModule"
	FnDisableModule                    = "disableModule"
	FnSetFallbackHandler               = "setFallbackHandler"
	FnSetGuard                         = "setGuard"
	FnExecTransactionFromModule        = "execTransactionFromModule"
	FnExecTransactionFromModuleReturns = "execTransactionFromModuleReturnData"

	EvSafeMultiSigTransaction  = "SafeMultiSigTransaction"
	EvSafeModuleTransaction    = "SafeModuleTransaction"
	EvSafeSetup                = "SafeSetup"
	EvApproveHash              = "ApproveHash"
	EvSignMsg                  = "SignMsg"
	EvExecutionFailure         = "ExecutionFailure"
	EvExecutionSuccess         = "ExecutionSuccess"
	EvExecutionFromModuleOK    = "ExecutionFromModuleSuccess"
	EvExecutionFromModuleError = "ExecutionFromModuleFailure"
	EvAddedOwner               = "AddedOwner"
	EvRemovedOwner             = "RemovedOwner"
	EvChangedThreshold         = "ChangedThreshold"
	EvEnabledModule            = "EnabledModule"
	EvDisabledModule           = "DisabledModule"
	EvChangedFallbackHandler   = "ChangedFallbackHandler"
	EvChangedGuard             = "ChangedGuard"
	EvChangedMasterCopy        = "ChangedMasterCopy"
	EvSafeReceived             = "SafeReceived"
	EvProxyCreation            = "ProxyCreation"
	EvTransfer                 = "Transfer"
)

// Safe master copy functions. Older and newer setup layouts have different selectors.
var safeFunctions = []string{
	"setup(address[] _owners, uint256 _threshold, address to, bytes data, address fallbackHandler, " +
		"address paymentToken, uint256 payment, address paymentReceiver)",
	"setup(address[] _owners, uint256 _threshold, address to, bytes data, address paymentToken, " +
		"uint256 payment, address paymentReceiver)",
	"setup(address[] _owners, uint256 _threshold, address to, bytes data)",
	"addOwnerWithThreshold(address owner, uint256 _threshold)",
	"removeOwner(address prevOwner, address owner, uint256 _threshold)",
	"swapOwner(address prevOwner, address oldOwner, address newOwner)",
	"changeThreshold(uint256 _threshold)",
	"changeMasterCopy(address _masterCopy)",
	"execTransaction(address to, uint256 value, bytes data, uint8 operation, uint256 safeTxGas, " +
		"uint256 baseGas, uint256 gasPrice, address gasToken, address refundReceiver, bytes signatures)",
	"approveHash(bytes32 hashToApprove)",
	"enableModule(address module)",
	"disableModule(address prevModule, address module)",
	"setFallbackHandler(address handler)",
	"setGuard(address guard)",
	"execTransactionFromModule(address to, uint256 value, bytes data, uint8 operation)",
	"execTransactionFromModuleReturnData(address to, uint256 value, bytes data, uint8 operation)",
}

// Events emitted by Safe L2 master copies.
var safeEvents = []string{
	"SafeMultiSigTransaction(address to, uint256 value, bytes data, uint8 operation, uint256 safeTxGas, " +
		"uint256 baseGas, uint256 gasPrice, address gasToken, address refundReceiver, bytes signatures, " +
		"bytes additionalInfo)",
	"SafeModuleTransaction(address module, address to, uint256 value, bytes data, uint8 operation)",
	"SafeSetup(address indexed initiator, address[] owners, uint256 threshold, address initializer, " +
		"address fallbackHandler)",
	"ApproveHash(bytes32 indexed approvedHash, address indexed owner)",
	"SignMsg(bytes32 indexed msgHash)",
	"ExecutionFailure(bytes32 txHash, uint256 payment)",
	"ExecutionSuccess(bytes32 txHash, uint256 payment)",
	"ExecutionFromModuleSuccess(address indexed module)",
	"ExecutionFromModuleFailure(address indexed module)",
	"AddedOwner(address owner)",
	"RemovedOwner(address owner)",
	"ChangedThreshold(uint256 threshold)",
	"EnabledModule(address module)",
	"DisabledModule(address module)",
	"ChangedFallbackHandler(address handler)",
	"ChangedGuard(address guard)",
	"ChangedMasterCopy(address singleton)",
	"SafeReceived(address indexed sender, uint256 value)",
}

// Proxy factory events. The 1.4 factory indexes the proxy, older ones do not, and the oldest
// one does not report the singleton.
var factoryEvents = []string{
	"ProxyCreation(address indexed proxy, address singleton)",
	"ProxyCreation(address proxy, address singleton)",
	"ProxyCreation(address proxy)",
}

// Token events. ERC20 and ERC721 share the topic and differ in the number of indexed values.
var tokenEvents = []string{
	"Transfer(address indexed from, address indexed to, uint256 value)",
	"Transfer(address indexed from, address indexed to, uint256 indexed tokenId)",
}
