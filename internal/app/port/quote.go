package port

import "context"

// QuoteSource fetches the price of one coin in one fiat currency.
type QuoteSource interface {
	GetSimplePrice(ctx context.Context, coinID, vsCurrency string) (float64, error)
}

// ExchangeRateService holds the ETH to fiat rate shared by all sessions.
type ExchangeRateService interface {
	// Rate returns the loaded rate, or false if no fetch has succeeded yet.
	Rate() (float64, bool)
	// EnsureRate returns the loaded rate or performs one fetch attempt.
	EnsureRate(ctx context.Context) (float64, error)
}
