package errors

// Machine-readable codes for ledger refusals. The HTTP status for all of
// these is 422; clients branch on the code, not the message.
const (
	LedgerOutOfOrder     = 700
	LedgerDuplicateEvent = 701
	LedgerInsufficient   = 702
	LedgerUnknownMember  = 703
	LedgerWalletClosed   = 704
)

const (
	LedgerOutOfOrderMessage     = "event is older than the last applied event"
	LedgerDuplicateEventMessage = "event was already applied"
	LedgerInsufficientMessage   = "withdrawal exceeds the member's balance"
	LedgerUnknownMemberMessage  = "member does not belong to this wallet"
	LedgerWalletClosedMessage   = "shared wallet has been closed"
)
