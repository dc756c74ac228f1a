package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/domain/entity"
	"basebridge/internal/pkg/metrics"
	"basebridge/internal/pkg/utils"
)

const maxUserNameLength = 32

// SessionDefaults are the initial values of a freshly mounted session.
type SessionDefaults struct {
	UserName          string
	UserAvatar        string
	FiatBalance       string
	FiatCurrency      string
	FiatTransferDelay time.Duration
}

// SessionContainer holds the view state of one session and implements every
// operation the views can trigger. State is guarded by mu, which is never held
// across wallet or network calls. ConnectWallet and Transfer each have an
// in-flight flag so a duplicate click while one is running is a no-op.
type SessionContainer struct {
	mu    sync.Mutex
	state entity.SessionState

	wallet   port.WalletProvider
	rates    port.ExchangeRateService
	defaults SessionDefaults
	logger   port.Logger

	connecting   atomic.Bool
	transferring atomic.Bool

	// gen is bumped by LogOut. Work started before a logout compares it
	// before writing wallet results back into the state.
	gen uint64
}

// NewSessionContainer creates a container in its initial state. wallet may be
// nil when no wallet provider could be set up.
func NewSessionContainer(id string, wallet port.WalletProvider, rates port.ExchangeRateService, defaults SessionDefaults, l port.Logger) *SessionContainer {
	c := &SessionContainer{
		wallet:   wallet,
		rates:    rates,
		defaults: defaults,
		logger:   l.With("session_id", id),
	}
	c.state = entity.SessionState{
		ID:           id,
		UserName:     defaults.UserName,
		UserAvatar:   defaults.UserAvatar,
		FiatBalance:  defaults.FiatBalance,
		TransferMode: entity.TransferModeCrypto,
	}
	return c
}

// ID returns the session ID.
func (c *SessionContainer) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ID
}

// Snapshot returns a copy of the current state.
func (c *SessionContainer) Snapshot() entity.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.ExchangeRate != nil {
		rate := *s.ExchangeRate
		s.ExchangeRate = &rate
	}
	if s.Conversion != nil {
		conv := *s.Conversion
		s.Conversion = &conv
	}
	return s
}

// FiatCurrency is the fiat unit label of this session.
func (c *SessionContainer) FiatCurrency() string {
	return c.defaults.FiatCurrency
}

// Network is the network label of the wallet provider, empty when there is none.
func (c *SessionContainer) Network() entity.NetworkDefinition {
	if c.wallet == nil {
		return entity.NetworkDefinition{}
	}
	return c.wallet.Network()
}

// fail records err as the user-visible message and returns it.
func (c *SessionContainer) fail(op string, err error) error {
	msg := entity.UserMessage(err)
	c.mu.Lock()
	c.state.ErrorMessage = msg
	c.mu.Unlock()
	c.logger.Warn("Session operation failed", "operation", op, "error", err)
	metrics.ObserveOperation(op, err)
	return err
}

func (c *SessionContainer) requireSignedIn(op string) error {
	c.mu.Lock()
	loggedIn := c.state.LoggedIn
	c.mu.Unlock()
	if !loggedIn {
		metrics.ObserveOperation(op, entity.ErrNotSignedIn)
		return fmt.Errorf("%s: %w", op, entity.ErrNotSignedIn)
	}
	return nil
}

// SignIn marks the session as logged in. No authentication takes place.
func (c *SessionContainer) SignIn() {
	c.mu.Lock()
	c.state.LoggedIn = true
	c.mu.Unlock()
	c.logger.Info("Signed in")
	metrics.ObserveOperation("sign_in", nil)
}

// LogOut returns to the sign-in card and forgets the wallet connection.
// User name, fiat balance and transfer mode are kept.
func (c *SessionContainer) LogOut() {
	c.mu.Lock()
	c.state.LoggedIn = false
	c.state.WalletConnected = false
	c.state.WalletAddress = ""
	c.state.EthBalance = ""
	c.state.Notice = ""
	c.state.Conversion = nil
	c.gen++
	c.mu.Unlock()
	c.logger.Info("Logged out")
	metrics.ObserveOperation("log_out", nil)
}

// ConnectWallet requests the wallet's accounts and loads the primary
// account's balance. On failure the connection fields are left untouched.
func (c *SessionContainer) ConnectWallet(ctx context.Context) error {
	const op = "connect_wallet"
	if err := c.requireSignedIn(op); err != nil {
		return err
	}
	if !c.connecting.CompareAndSwap(false, true) {
		metrics.ObserveOperation(op, entity.ErrActionInFlight)
		return entity.ErrActionInFlight
	}
	defer c.connecting.Store(false)

	if c.wallet == nil {
		return c.fail(op, fmt.Errorf("%w: no wallet provider configured", entity.ErrProviderUnavailable))
	}
	gen := c.generation()

	accounts, err := c.wallet.RequestAccounts(ctx)
	if err != nil {
		return c.fail(op, classifyProviderError(err))
	}
	if len(accounts) == 0 {
		return c.fail(op, fmt.Errorf("%w: wallet returned no accounts", entity.ErrProviderRequestFailed))
	}
	address := accounts[0]

	balance, err := c.wallet.GetBalance(ctx, address)
	if err != nil {
		return c.fail(op, classifyProviderError(err))
	}

	c.mu.Lock()
	if c.gen != gen || !c.state.LoggedIn {
		c.mu.Unlock()
		c.logger.Warn("Discarding wallet connection started before logout", "address", address)
		metrics.ObserveOperation(op, entity.ErrNotSignedIn)
		return fmt.Errorf("%s: %w", op, entity.ErrNotSignedIn)
	}
	c.state.WalletAddress = address
	c.state.EthBalance = utils.FormatEtherBalance(balance)
	c.state.WalletConnected = true
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	c.logger.Info("Wallet connected", "address", address)
	metrics.ObserveOperation(op, nil)
	return nil
}

func classifyProviderError(err error) error {
	if errors.Is(err, entity.ErrProviderUnavailable) || errors.Is(err, entity.ErrProviderRequestFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", entity.ErrProviderRequestFailed, err)
}

// SetTransferMode switches the units of the transfer and convert dialogs.
func (c *SessionContainer) SetTransferMode(mode entity.TransferMode) error {
	const op = "set_transfer_mode"
	if err := c.requireSignedIn(op); err != nil {
		return err
	}
	if _, err := entity.ParseTransferMode(string(mode)); err != nil {
		metrics.ObserveOperation(op, err)
		return err
	}

	c.mu.Lock()
	c.state.TransferMode = mode
	c.state.Conversion = nil
	c.mu.Unlock()
	metrics.ObserveOperation(op, nil)
	return nil
}

// Transfer sends amount to recipient in the current transfer mode.
//
// Crypto transfers require a connected wallet and a valid recipient, are
// signed and broadcast by the wallet provider, and only report success once
// mined. Fiat transfers are a mock: after a fixed delay they report success
// without validating anything or touching any balance.
func (c *SessionContainer) Transfer(ctx context.Context, recipient, amount string) (entity.TransferReceipt, error) {
	const op = "transfer"
	if err := c.requireSignedIn(op); err != nil {
		return entity.TransferReceipt{}, err
	}
	if !c.transferring.CompareAndSwap(false, true) {
		metrics.ObserveOperation(op, entity.ErrActionInFlight)
		return entity.TransferReceipt{}, entity.ErrActionInFlight
	}
	defer c.transferring.Store(false)

	recipient = strings.TrimSpace(recipient)
	amount = strings.TrimSpace(amount)

	c.mu.Lock()
	mode := c.state.TransferMode
	c.mu.Unlock()

	if mode == entity.TransferModeFiat {
		return c.simulateFiatTransfer(ctx, recipient, amount)
	}
	return c.cryptoTransfer(ctx, recipient, amount)
}

func (c *SessionContainer) cryptoTransfer(ctx context.Context, recipient, amount string) (entity.TransferReceipt, error) {
	const op = "transfer"

	c.mu.Lock()
	connected := c.state.WalletConnected
	from := c.state.WalletAddress
	gen := c.gen
	c.mu.Unlock()

	if !connected || c.wallet == nil {
		return entity.TransferReceipt{}, c.fail(op, entity.ErrWalletNotConnected)
	}
	if !utils.IsAddress(recipient) {
		return entity.TransferReceipt{}, c.fail(op, fmt.Errorf("%w: %w %q", entity.ErrTransferFailed, entity.ErrInvalidRecipient, recipient))
	}
	value, err := utils.ParseEther(amount)
	if err != nil || value.Sign() <= 0 {
		return entity.TransferReceipt{}, c.fail(op, fmt.Errorf("%w: %w %q", entity.ErrTransferFailed, entity.ErrInvalidAmount, amount))
	}

	signer, err := c.wallet.GetSigner(ctx, from)
	if err != nil {
		return entity.TransferReceipt{}, c.fail(op, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err))
	}
	pending, err := signer.SendTransaction(ctx, recipient, value)
	if err != nil {
		return entity.TransferReceipt{}, c.fail(op, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err))
	}
	c.logger.Info("Crypto transfer broadcast", "hash", pending.Hash(), "to", recipient, "amount", amount)

	receipt, err := pending.Wait(ctx)
	if err != nil {
		return entity.TransferReceipt{}, c.fail(op, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err))
	}
	receipt.Mode = entity.TransferModeCrypto
	receipt.Recipient = recipient
	receipt.Amount = amount
	receipt.Unit = c.nativeSymbol()

	notice := fmt.Sprintf("Crypto transfer of %s %s to %s successful!", amount, receipt.Unit, recipient)
	c.mu.Lock()
	current := c.gen == gen
	if current {
		c.state.ErrorMessage = ""
		c.state.Notice = notice
	}
	c.mu.Unlock()

	if current {
		c.refreshBalance(ctx, from)
	} else {
		c.logger.Warn("Transfer confirmed after logout", "hash", receipt.TxHash)
	}
	metrics.ObserveOperation(op, nil)
	return receipt, nil
}

func (c *SessionContainer) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *SessionContainer) nativeSymbol() string {
	if c.wallet != nil && c.wallet.Network().NativeSymbol != "" {
		return c.wallet.Network().NativeSymbol
	}
	return "ETH"
}

// refreshBalance reloads the wallet balance after a transfer. Failure keeps the old value.
func (c *SessionContainer) refreshBalance(ctx context.Context, address string) {
	balance, err := c.wallet.GetBalance(ctx, address)
	if err != nil {
		c.logger.Warn("Balance refresh after transfer failed", "address", address, "error", err)
		return
	}
	c.mu.Lock()
	if c.state.WalletConnected && c.state.WalletAddress == address {
		c.state.EthBalance = utils.FormatEtherBalance(balance)
	}
	c.mu.Unlock()
}

// simulateFiatTransfer is an explicit mock: there is no fiat rail behind it.
func (c *SessionContainer) simulateFiatTransfer(ctx context.Context, recipient, amount string) (entity.TransferReceipt, error) {
	const op = "transfer"

	timer := time.NewTimer(c.defaults.FiatTransferDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		metrics.ObserveOperation(op, ctx.Err())
		return entity.TransferReceipt{}, ctx.Err()
	case <-timer.C:
	}

	receipt := entity.TransferReceipt{
		Mode:      entity.TransferModeFiat,
		Recipient: recipient,
		Amount:    amount,
		Unit:      c.defaults.FiatCurrency,
		Simulated: true,
	}
	notice := fmt.Sprintf("Fiat transfer of %s %s to %s successful!", amount, receipt.Unit, recipient)
	c.mu.Lock()
	c.state.ErrorMessage = ""
	c.state.Notice = notice
	c.mu.Unlock()

	c.logger.Info("Simulated fiat transfer", "to", recipient, "amount", amount)
	metrics.ObserveOperation(op, nil)
	return receipt, nil
}

// Convert converts amount with the loaded rate in the current mode and keeps
// the result for the Convert dialog. It never fails; a missing rate yields RateUnavailable.
func (c *SessionContainer) Convert(amount string) (string, error) {
	const op = "convert"
	if err := c.requireSignedIn(op); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	converted := ConvertAmount(amount, c.state.ExchangeRate, c.state.TransferMode)
	c.state.Conversion = &entity.ConversionResult{
		Mode:      c.state.TransferMode,
		Amount:    strings.TrimSpace(amount),
		Converted: converted,
	}
	metrics.ObserveOperation(op, nil)
	return converted, nil
}

// FetchExchangeRate loads the shared rate into this session. On failure the
// rate stays nil and conversions return RateUnavailable.
func (c *SessionContainer) FetchExchangeRate(ctx context.Context) error {
	const op = "fetch_exchange_rate"
	if c.rates == nil {
		return c.fail(op, fmt.Errorf("%w: no quote source configured", entity.ErrRateFetchFailed))
	}

	rate, err := c.rates.EnsureRate(ctx)
	if err != nil {
		if !errors.Is(err, entity.ErrRateFetchFailed) {
			err = fmt.Errorf("%w: %v", entity.ErrRateFetchFailed, err)
		}
		return c.fail(op, err)
	}

	c.mu.Lock()
	c.state.ExchangeRate = &rate
	c.mu.Unlock()
	metrics.ObserveOperation(op, nil)
	return nil
}

// UpdateSettings changes the display name.
func (c *SessionContainer) UpdateSettings(userName string) error {
	const op = "update_settings"
	if err := c.requireSignedIn(op); err != nil {
		return err
	}

	userName = strings.TrimSpace(userName)
	if userName == "" || len([]rune(userName)) > maxUserNameLength {
		return c.fail(op, entity.ErrInvalidSettings)
	}

	c.mu.Lock()
	c.state.UserName = userName
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	metrics.ObserveOperation(op, nil)
	return nil
}

// ClearNotice drops the success banner once it has been shown.
func (c *SessionContainer) ClearNotice() {
	c.mu.Lock()
	c.state.Notice = ""
	c.mu.Unlock()
}

// DismissMessages clears the error and notice banners.
func (c *SessionContainer) DismissMessages() {
	c.mu.Lock()
	c.state.ErrorMessage = ""
	c.state.Notice = ""
	c.mu.Unlock()
}
