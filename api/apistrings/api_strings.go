package apistrings

const (
	/// Basic User Related Strings
	UserNotFound              = "user or account does not exist"
	UserDetailsAlreadyCreated = "email or phone number already exists"
	InvalidEmail              = "invalid email address, please check submitted email address"
	InvalidPhoneEmailInput    = "please enter a valid email and password"
	IncorrectEmailPass        = "incorrect email or password"
	InvalidProfileInput       = "check 'name' or 'avatar_url' keys, invalid request"
	InvalidWalletAddress      = "wallet address is not a usable Solana address"
	InvalidPushTokenInput     = "check 'expo_push_token' key, invalid request"

	/// Core Functionality Error
	ServerError = "a server error occurred, please try again later"

	/// Shared Wallet Related Strings
	WalletNotFound        = "shared wallet does not exist"
	WalletClosed          = "shared wallet has been closed"
	InvalidWalletID       = "entered wallet ID is invalid"
	InvalidWalletInput    = "check 'name', 'currency' or 'member_ids' keys, invalid request"
	InvalidEventInput     = "check 'member_id', 'kind', 'amount' or 'source_transaction_id' keys, invalid request"
	CurrencyNotSupported  = "entered currency is not supported"
	NotWalletMember       = "user is not a member of this wallet"
	NotWalletCreator      = "only the wallet creator may do this"
	MemberAlreadyInWallet = "user is already a member of this wallet"

	/// Funding Related Strings
	InvalidFundingInput  = "check 'amount' or 'currency' keys, invalid request"
	InvalidDepositInput  = "check 'signature' key, invalid request"
	InvalidTreasuryInput = "check 'treasury_address' key, invalid request"
	InvoiceNotFound      = "funding invoice does not exist"
	OnrampUnavailable    = "card payments are not available right now"
	ChainUnavailable     = "the Solana network could not be reached, please try again later"

	/// Link Related Strings
	InvalidLinkInput = "check 'uri' key, invalid request"

	/// Contact Related Strings
	ContactNotFound     = "contact does not exist"
	ContactExists       = "contact with this wallet address already exists"
	InvalidContactInput = "check 'name' or 'wallet_address' keys, invalid request"

	/// Group Related Strings
	GroupNotFound     = "group does not exist"
	InvalidGroupInput = "check 'name' key, invalid request"
	InviteNotFound    = "invite does not exist or has been revoked"
	InviteExpired     = "invite link has expired"
	BadInviteCode     = "invite code is not valid"

	/// Notification Related Strings
	NotificationNotFound   = "notification does not exist"
	InvalidActionInput     = "check 'action' key, invalid request"
	NotificationActionDone = "an action was already taken on this notification"

	/// Receipt Related Strings
	InvalidReceiptInput = "check 'image_data' key, invalid request"
	BadReceiptImage     = "image could not be decoded, please send a base64 or data URI payload"
	NotAReceipt         = "the image does not look like a receipt"
	AgentUnavailable    = "receipt analysis is not available right now"
)
