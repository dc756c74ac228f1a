package entity

// TransferMode selects which units transfer and convert operate in.
type TransferMode string

const (
	TransferModeCrypto TransferMode = "crypto"
	TransferModeFiat   TransferMode = "fiat"
)

// ParseTransferMode accepts "crypto" or "fiat".
func ParseTransferMode(s string) (TransferMode, error) {
	switch TransferMode(s) {
	case TransferModeCrypto, TransferModeFiat:
		return TransferMode(s), nil
	default:
		return "", ErrInvalidTransferMode
	}
}

// ConversionResult is the last input/output pair of the Convert dialog.
type ConversionResult struct {
	Mode      TransferMode `json:"mode"`
	Amount    string       `json:"amount"`
	Converted string       `json:"converted"`
}

// SessionState is the in-memory view state of one browser session.
// It is never persisted.
type SessionState struct {
	ID              string            `json:"id"`
	LoggedIn        bool              `json:"loggedIn"`
	UserName        string            `json:"userName"`
	UserAvatar      string            `json:"userAvatar"`
	WalletConnected bool              `json:"walletConnected"`
	WalletAddress   string            `json:"walletAddress"`
	EthBalance      string            `json:"ethBalance"`
	FiatBalance     string            `json:"fiatBalance"`
	ExchangeRate    *float64          `json:"exchangeRate"`
	TransferMode    TransferMode      `json:"transferMode"`
	ErrorMessage    string            `json:"errorMessage,omitempty"`
	Notice          string            `json:"notice,omitempty"`
	Conversion      *ConversionResult `json:"conversion,omitempty"`
}

// ShortAddress renders 0x1234...abcd for the wallet card.
func (s SessionState) ShortAddress() string {
	if len(s.WalletAddress) < 10 {
		return s.WalletAddress
	}
	return s.WalletAddress[:6] + "..." + s.WalletAddress[len(s.WalletAddress)-4:]
}

// Initial returns the avatar initial shown when no avatar image loads.
func (s SessionState) Initial() string {
	for _, r := range s.UserName {
		return string(r)
	}
	return "?"
}
