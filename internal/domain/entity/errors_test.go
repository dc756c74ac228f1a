package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"provider unavailable", fmt.Errorf("dial: %w", ErrProviderUnavailable), MsgProviderUnavailable},
		{"connect failed", fmt.Errorf("%w: user rejected", ErrProviderRequestFailed), MsgProviderRequestFailed},
		{"invalid recipient wins over transfer failed", fmt.Errorf("%w: %w", ErrTransferFailed, ErrInvalidRecipient), MsgInvalidRecipient},
		{"transfer failed", fmt.Errorf("%w: reverted", ErrTransferFailed), MsgTransferFailed},
		{"rate", ErrRateFetchFailed, MsgRateFetchFailed},
		{"unknown", errors.New("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestParseTransferMode(t *testing.T) {
	m, err := ParseTransferMode("fiat")
	assert.NoError(t, err)
	assert.Equal(t, TransferModeFiat, m)

	_, err = ParseTransferMode("gold")
	assert.ErrorIs(t, err, ErrInvalidTransferMode)
}

func TestSessionStateShortAddress(t *testing.T) {
	s := SessionState{WalletAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"}
	assert.Equal(t, "0x71C7...976F", s.ShortAddress())
	assert.Equal(t, "?", SessionState{}.Initial())
	assert.Equal(t, "A", SessionState{UserName: "Anon"}.Initial())
}
