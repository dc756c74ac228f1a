package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/domain/entity"
	"basebridge/internal/infrastructure/configloader"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
)

const (
	defaultConnectionTimeout   = 10 * time.Second
	defaultRPCCallTimeout      = 10 * time.Second
	defaultConfirmationTimeout = 2 * time.Minute
	defaultReceiptPollInterval = 2 * time.Second
)

// chainBackend is the part of ethclient.Client the wallet provider uses.
type chainBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

type dialFunc func(ctx context.Context, rawURL string) (chainBackend, error)

func dialEthClient(ctx context.Context, rawURL string) (chainBackend, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EVMWalletProviderOptions configures an EVMWalletProvider.
type EVMWalletProviderOptions struct {
	Network             entity.NetworkDefinition
	KeyStore            *keystore.KeyStore
	Passphrase          string
	ConnectionTimeout   time.Duration
	RPCCallTimeout      time.Duration
	ConfirmationTimeout time.Duration
	ReceiptPollInterval time.Duration
}

// EVMWalletProvider implements port.WalletProvider with a JSON-RPC node for
// chain access and a go-ethereum keystore for the user's accounts.
// The node connection is made lazily and cached; a failed dial is retried on
// the next call.
type EVMWalletProvider struct {
	netDef              entity.NetworkDefinition
	ks                  *keystore.KeyStore
	passphrase          string
	dial                dialFunc
	connectionTimeout   time.Duration
	rpcCallTimeout      time.Duration
	confirmationTimeout time.Duration
	pollInterval        time.Duration
	logger              port.Logger

	mu      sync.Mutex
	backend chainBackend
	chainID *big.Int
}

// NewEVMWalletProvider creates a wallet provider from explicit options.
func NewEVMWalletProvider(opts EVMWalletProviderOptions, logger port.Logger) *EVMWalletProvider {
	p := &EVMWalletProvider{
		netDef:              opts.Network,
		ks:                  opts.KeyStore,
		passphrase:          opts.Passphrase,
		dial:                dialEthClient,
		connectionTimeout:   opts.ConnectionTimeout,
		rpcCallTimeout:      opts.RPCCallTimeout,
		confirmationTimeout: opts.ConfirmationTimeout,
		pollInterval:        opts.ReceiptPollInterval,
		logger:              logger.With("component", "EVMWalletProvider", "network", opts.Network.Name),
	}
	if p.connectionTimeout <= 0 {
		p.connectionTimeout = defaultConnectionTimeout
	}
	if p.rpcCallTimeout <= 0 {
		p.rpcCallTimeout = defaultRPCCallTimeout
	}
	if p.confirmationTimeout <= 0 {
		p.confirmationTimeout = defaultConfirmationTimeout
	}
	if p.pollInterval <= 0 {
		p.pollInterval = defaultReceiptPollInterval
	}
	return p
}

// NewEVMWalletProviderFromConfig opens the configured keystore directory and
// builds the provider. The passphrase comes from the configured environment variable.
func NewEVMWalletProviderFromConfig(cfg configloader.WalletConfig, logger port.Logger) *EVMWalletProvider {
	ks := keystore.NewKeyStore(cfg.KeystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
	logger.Info("Keystore opened", "dir", cfg.KeystoreDir, "accounts", len(ks.Accounts()))
	return NewEVMWalletProvider(EVMWalletProviderOptions{
		Network:             cfg.Network,
		KeyStore:            ks,
		Passphrase:          cfg.Passphrase(),
		ConnectionTimeout:   time.Duration(cfg.ConnectionTimeoutSeconds) * time.Second,
		RPCCallTimeout:      time.Duration(cfg.RPCCallTimeoutSeconds) * time.Second,
		ConfirmationTimeout: time.Duration(cfg.ConfirmationTimeoutSeconds) * time.Second,
		ReceiptPollInterval: time.Duration(cfg.ReceiptPollIntervalMillis) * time.Millisecond,
	}, logger)
}

// Network returns the network definition of this provider.
func (p *EVMWalletProvider) Network() entity.NetworkDefinition {
	return p.netDef
}

// Close drops the cached node connection.
func (p *EVMWalletProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend != nil {
		p.backend.Close()
		p.backend = nil
		p.chainID = nil
	}
}

// client returns the cached node connection, dialing the primary RPC URL and
// then the fallbacks on first use. A node reporting a different chain ID is skipped.
func (p *EVMWalletProvider) client(ctx context.Context) (chainBackend, *big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.backend != nil {
		return p.backend, p.chainID, nil
	}

	rpcURLs := p.netDef.RPCURLs()
	if len(rpcURLs) == 0 {
		return nil, nil, fmt.Errorf("%w: no RPC URL configured for %s", entity.ErrProviderUnavailable, p.netDef.Name)
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
		backend, err := p.dial(dialCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			p.logger.Warn("RPC dial failed", "rpc", rpcURL, "error", err)
			continue
		}

		chainID, err := backend.ChainID(dialCtx)
		cancel()
		if err != nil {
			backend.Close()
			lastErr = fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
			p.logger.Warn("RPC chain ID check failed", "rpc", rpcURL, "error", err)
			continue
		}
		if p.netDef.ChainID != 0 && chainID.Uint64() != p.netDef.ChainID {
			backend.Close()
			lastErr = fmt.Errorf("chainID mismatch for %s: expected %d, got %d", rpcURL, p.netDef.ChainID, chainID.Uint64())
			p.logger.Warn("RPC serves a different chain", "rpc", rpcURL, "expected", p.netDef.ChainID, "got", chainID.Uint64())
			continue
		}

		p.logger.Info("Connected to RPC", "rpc", rpcURL, "chain_id", chainID.Uint64())
		p.backend = backend
		p.chainID = chainID
		return backend, chainID, nil
	}

	return nil, nil, fmt.Errorf("%w: all RPC connection attempts failed for network %s: %v", entity.ErrProviderUnavailable, p.netDef.Name, lastErr)
}

// RequestAccounts returns the keystore accounts after checking the node is
// reachable and the keystore passphrase unlocks the primary account.
func (p *EVMWalletProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.ks == nil {
		return nil, fmt.Errorf("%w: no keystore configured", entity.ErrProviderUnavailable)
	}
	accs := p.ks.Accounts()
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: keystore has no accounts", entity.ErrProviderUnavailable)
	}
	if _, _, err := p.client(ctx); err != nil {
		return nil, err
	}

	if err := p.ks.Unlock(accs[0], p.passphrase); err != nil {
		p.logger.Warn("Keystore unlock failed", "account", accs[0].Address.Hex(), "error", err)
		return nil, fmt.Errorf("%w: wallet locked: %v", entity.ErrProviderRequestFailed, err)
	}
	_ = p.ks.Lock(accs[0].Address)

	addresses := make([]string, len(accs))
	for i, acc := range accs {
		addresses[i] = acc.Address.Hex()
	}
	p.logger.Debug("Accounts requested", "count", len(addresses))
	return addresses, nil
}

// GetBalance returns the latest balance of address in wei.
func (p *EVMWalletProvider) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	backend, _, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.rpcCallTimeout)
	defer cancel()

	balance, err := backend.BalanceAt(callCtx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_getBalance for %s: %v", entity.ErrProviderRequestFailed, address, err)
	}
	return balance, nil
}

// GetSigner returns a signer for a keystore account.
func (p *EVMWalletProvider) GetSigner(ctx context.Context, address string) (port.TransactionSigner, error) {
	if p.ks == nil {
		return nil, fmt.Errorf("%w: no keystore configured", entity.ErrProviderUnavailable)
	}
	acc, err := p.ks.Find(accounts.Account{Address: common.HexToAddress(address)})
	if err != nil {
		return nil, fmt.Errorf("%w: account %s not in keystore: %v", entity.ErrProviderRequestFailed, address, err)
	}
	return &keystoreSigner{provider: p, account: acc}, nil
}

// keystoreSigner signs EIP-1559 value transfers with the keystore passphrase.
type keystoreSigner struct {
	provider *EVMWalletProvider
	account  accounts.Account
}

func (s *keystoreSigner) Address() string {
	return s.account.Address.Hex()
}

// SendTransaction builds, signs and broadcasts a plain value transfer.
func (s *keystoreSigner) SendTransaction(ctx context.Context, to string, value *big.Int) (port.PendingTransaction, error) {
	p := s.provider
	backend, chainID, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.rpcCallTimeout)
	defer cancel()

	tx, err := s.buildTransaction(callCtx, backend, chainID, common.HexToAddress(to), value)
	if err != nil {
		return nil, err
	}

	signed, err := p.ks.SignTxWithPassphrase(s.account, p.passphrase, tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := backend.SendTransaction(callCtx, signed); err != nil {
		return nil, fmt.Errorf("failed to broadcast transaction %s: %w", signed.Hash().Hex(), err)
	}

	p.logger.Info("Transaction broadcast",
		"hash", signed.Hash().Hex(),
		"from", s.account.Address.Hex(),
		"to", to,
		"value_wei", value.String(),
		"nonce", signed.Nonce())
	return &pendingTransaction{provider: p, backend: backend, tx: signed}, nil
}

func (s *keystoreSigner) buildTransaction(ctx context.Context, backend chainBackend, chainID *big.Int, to common.Address, value *big.Int) (*types.Transaction, error) {
	nonce, err := backend.PendingNonceAt(ctx, s.account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	// Pre-London chains have no base fee.
	if head.BaseFee == nil {
		gasPrice, err := backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      params.TxGas,
			To:       &to,
			Value:    value,
		}), nil
	}

	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip cap: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       params.TxGas,
		To:        &to,
		Value:     value,
	}), nil
}

type pendingTransaction struct {
	provider *EVMWalletProvider
	backend  chainBackend
	tx       *types.Transaction
}

func (t *pendingTransaction) Hash() string {
	return t.tx.Hash().Hex()
}

// Wait polls for the receipt until the transaction is mined, ctx is done or
// the confirmation timeout passes. A reverted transaction is an error.
func (t *pendingTransaction) Wait(ctx context.Context) (entity.TransferReceipt, error) {
	p := t.provider
	ctx, cancel := context.WithTimeout(ctx, p.confirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	hash := t.tx.Hash()
	for {
		receipt, err := t.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return entity.TransferReceipt{}, fmt.Errorf("transaction %s reverted in block %v", hash.Hex(), receipt.BlockNumber)
			}
			var block uint64
			if receipt.BlockNumber != nil {
				block = receipt.BlockNumber.Uint64()
			}
			p.logger.Info("Transaction mined", "hash", hash.Hex(), "block", block)
			return entity.TransferReceipt{TxHash: hash.Hex(), BlockNumber: block}, nil
		}
		if err != nil && !isNotFound(err) {
			p.logger.Debug("Receipt retrieval failed, retrying", "hash", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return entity.TransferReceipt{}, fmt.Errorf("waiting for transaction %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound) || strings.Contains(err.Error(), "not found")
}
