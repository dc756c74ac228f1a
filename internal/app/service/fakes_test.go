package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/domain/entity"
	"basebridge/internal/pkg/logger"
)

const testAddress = "0x71c7656ec7ab88b098defb751b7401b5f6d8976f"

type fakeWallet struct {
	mu          sync.Mutex
	accounts    []string
	accountsErr error
	balance     *big.Int
	balanceErr  error
	signerErr   error
	sendErr     error
	waitErr     error
	sendCalls   int
	sentTo      string
	sentValue   *big.Int
	release     chan struct{}

	// balanceEntered is signalled and balanceRelease awaited by GetBalance
	// when both are set.
	balanceEntered chan struct{}
	balanceRelease chan struct{}
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{
		accounts: []string{testAddress},
		balance:  big.NewInt(1_234_560_000_000_000_000),
	}
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]string, error) {
	return w.accounts, w.accountsErr
}

func (w *fakeWallet) GetBalance(context.Context, string) (*big.Int, error) {
	w.mu.Lock()
	entered, release := w.balanceEntered, w.balanceRelease
	w.mu.Unlock()
	if entered != nil && release != nil {
		entered <- struct{}{}
		<-release
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, w.balanceErr
}

func (w *fakeWallet) GetSigner(_ context.Context, address string) (port.TransactionSigner, error) {
	if w.signerErr != nil {
		return nil, w.signerErr
	}
	return &fakeSigner{wallet: w, address: address}, nil
}

func (w *fakeWallet) Network() entity.NetworkDefinition {
	return entity.NetworkDefinition{ChainID: 11155111, Name: "Sepolia Testnet", NativeSymbol: "ETH"}
}

func (w *fakeWallet) sends() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sendCalls
}

type fakeSigner struct {
	wallet  *fakeWallet
	address string
}

func (s *fakeSigner) Address() string { return s.address }

func (s *fakeSigner) SendTransaction(ctx context.Context, to string, value *big.Int) (port.PendingTransaction, error) {
	w := s.wallet
	w.mu.Lock()
	w.sendCalls++
	w.sentTo = to
	w.sentValue = value
	release := w.release
	w.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if w.sendErr != nil {
		return nil, w.sendErr
	}
	return &fakePending{err: w.waitErr}, nil
}

type fakePending struct {
	err error
}

func (p *fakePending) Hash() string { return "0xabc" }

func (p *fakePending) Wait(context.Context) (entity.TransferReceipt, error) {
	if p.err != nil {
		return entity.TransferReceipt{}, p.err
	}
	return entity.TransferReceipt{TxHash: "0xabc", BlockNumber: 9}, nil
}

type fakeQuotes struct {
	mu    sync.Mutex
	calls int
	rate  float64
	err   error
	delay time.Duration
}

func (q *fakeQuotes) GetSimplePrice(ctx context.Context, _, _ string) (float64, error) {
	q.mu.Lock()
	q.calls++
	rate, err, delay := q.rate, q.err, q.delay
	q.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return rate, err
}

func (q *fakeQuotes) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

var errQuoteDown = errors.New("503 from quote source")

func testDefaults() SessionDefaults {
	return SessionDefaults{
		UserName:          "Anon",
		UserAvatar:        "/static/placeholder.svg",
		FiatBalance:       "10000.00",
		FiatCurrency:      "NGN",
		FiatTransferDelay: 10 * time.Millisecond,
	}
}

func newTestContainer(wallet port.WalletProvider, quotes port.QuoteSource) *SessionContainer {
	var rates port.ExchangeRateService
	if quotes != nil {
		rates = NewExchangeRateService(quotes, "ethereum", "ngn", logger.NewNop())
	}
	return NewSessionContainer("test-session", wallet, rates, testDefaults(), logger.NewNop())
}
