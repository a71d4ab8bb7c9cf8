package currency

import "fmt"

var (
	ErrUnsupportedCurrency = fmt.Errorf("unsupported currency")
	ErrUnknownMint         = fmt.Errorf("unknown token mint")
)

type CurrencyError struct {
	ErrorObj error
	Currency string
}

func (c *CurrencyError) Error() string {
	return c.ErrorObj.Error()
}

func (c *CurrencyError) ErrorOut() string {
	return fmt.Sprintf("%v: %v", c.ErrorObj.Error(), c.Currency)
}

func NewCurrencyError(err error, currency string) *CurrencyError {
	return &CurrencyError{
		ErrorObj: err,
		Currency: currency,
	}
}
