package entity

import "errors"

var (
	ErrProviderUnavailable   = errors.New("wallet provider unavailable")
	ErrProviderRequestFailed = errors.New("wallet provider request failed")
	ErrInvalidRecipient      = errors.New("invalid recipient address")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrRateFetchFailed       = errors.New("exchange rate fetch failed")

	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNotSignedIn         = errors.New("not signed in")
	ErrActionInFlight      = errors.New("action already in progress")
	ErrInvalidTransferMode = errors.New("invalid transfer mode")
	ErrInvalidSettings     = errors.New("invalid settings")
)

// Messages shown to the user, one per failure kind.
const (
	MsgProviderUnavailable   = "Ethereum provider not available. Please make sure your wallet is installed and unlocked, then refresh the page."
	MsgProviderRequestFailed = "Failed to connect wallet. Please make sure your wallet is unlocked and try again."
	MsgWalletNotConnected    = "Please connect your wallet to proceed with the crypto transfer."
	MsgInvalidRecipient      = "Invalid recipient address."
	MsgInvalidAmount         = "Invalid transfer amount."
	MsgTransferFailed        = "Crypto transfer failed. Please try again."
	MsgRateFetchFailed       = "Failed to fetch conversion rate."
	MsgNotSignedIn           = "Please sign in first."
	MsgActionInFlight        = "That action is already in progress."
	MsgInvalidTransferMode   = "Unknown transfer mode."
	MsgInvalidSettings       = "Username must be between 1 and 32 characters."
)

var userMessages = []struct {
	err error
	msg string
}{
	// Order matters: specific causes are matched before the kinds that wrap them.
	{ErrWalletNotConnected, MsgWalletNotConnected},
	{ErrInvalidRecipient, MsgInvalidRecipient},
	{ErrInvalidAmount, MsgInvalidAmount},
	{ErrProviderUnavailable, MsgProviderUnavailable},
	{ErrTransferFailed, MsgTransferFailed},
	{ErrProviderRequestFailed, MsgProviderRequestFailed},
	{ErrRateFetchFailed, MsgRateFetchFailed},
	{ErrNotSignedIn, MsgNotSignedIn},
	{ErrActionInFlight, MsgActionInFlight},
	{ErrInvalidTransferMode, MsgInvalidTransferMode},
	{ErrInvalidSettings, MsgInvalidSettings},
}

// UserMessage maps an error from the session operations to the text shown in the UI.
// Errors outside the taxonomy get a generic retry hint.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong. Please try again."
}
