package port

import (
	"context"
	"math/big"

	"basebridge/internal/domain/entity"
)

// WalletProvider is the boundary to the user's wallet: account discovery,
// balance queries and transaction signing.
// Implementations return errors wrapping entity.ErrProviderUnavailable when
// the wallet cannot be reached at all.
type WalletProvider interface {
	// RequestAccounts asks the wallet for access and returns its accounts, first one primary.
	RequestAccounts(ctx context.Context) ([]string, error)

	// GetBalance returns the native balance of address in wei.
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetSigner returns a signer for one of the wallet's accounts.
	GetSigner(ctx context.Context, address string) (TransactionSigner, error)

	// Network describes the chain the provider is connected to.
	Network() entity.NetworkDefinition
}

// TransactionSigner signs and broadcasts value transfers for one account.
type TransactionSigner interface {
	Address() string
	SendTransaction(ctx context.Context, to string, value *big.Int) (PendingTransaction, error)
}

// PendingTransaction is a broadcast transaction awaiting confirmation.
type PendingTransaction interface {
	Hash() string
	// Wait blocks until the transaction is mined or ctx is done.
	Wait(ctx context.Context) (entity.TransferReceipt, error)
}
