package ledger

import "fmt"

var (
	ErrWalletNotFound      = fmt.Errorf("wallet not found")
	ErrWalletClosed        = fmt.Errorf("wallet is closed")
	ErrWalletMismatch      = fmt.Errorf("event does not belong to this wallet")
	ErrUnknownMember       = fmt.Errorf("member does not belong to this wallet")
	ErrUnknownKind         = fmt.Errorf("unknown ledger event kind")
	ErrNonPositiveAmount   = fmt.Errorf("event amount must be positive")
	ErrMissingSource       = fmt.Errorf("event is missing its source transaction id")
	ErrInsufficientBalance = fmt.Errorf("withdrawal exceeds the member's balance")
	ErrOutOfOrder          = fmt.Errorf("event is older than the last applied event")
	ErrDuplicateEvent      = fmt.Errorf("event was already applied")
	ErrMemberExists        = fmt.Errorf("user is already a member of this wallet")
	ErrNotCreator          = fmt.Errorf("only the wallet creator may do this")
)

type LedgerError struct {
	ErrorObj error
	WalletID string
}

func (l *LedgerError) Error() string {
	return l.ErrorObj.Error()
}

func (l *LedgerError) Unwrap() error {
	return l.ErrorObj
}

func (l *LedgerError) ErrorOut() string {
	return fmt.Sprintf("%v: %v", l.ErrorObj.Error(), l.WalletID)
}

func NewLedgerError(err error, walletID string) *LedgerError {
	return &LedgerError{
		ErrorObj: err,
		WalletID: walletID,
	}
}
