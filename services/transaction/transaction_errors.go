package transaction

import "fmt"

var (
	ErrHistoryUnavailable = fmt.Errorf("could not load transaction history")
	ErrRecordExists       = fmt.Errorf("transaction record already recorded")
)
