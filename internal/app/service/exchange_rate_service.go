package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"basebridge/internal/app/port"
	"basebridge/internal/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// exchangeRateServiceImpl implements port.ExchangeRateService. The rate is
// fetched once and then served from memory; concurrent first fetches share one request.
type exchangeRateServiceImpl struct {
	quotes     port.QuoteSource
	coinID     string
	vsCurrency string
	logger     port.Logger

	group singleflight.Group
	mu    sync.RWMutex
	rate  float64
	ok    bool
}

// NewExchangeRateService creates the shared rate holder for the coinID/vsCurrency pair.
func NewExchangeRateService(quotes port.QuoteSource, coinID, vsCurrency string, l port.Logger) port.ExchangeRateService {
	return &exchangeRateServiceImpl{
		quotes:     quotes,
		coinID:     coinID,
		vsCurrency: vsCurrency,
		logger:     l.With("component", "ExchangeRateService", "pair", pairLabel(coinID, vsCurrency)),
	}
}

func pairLabel(coinID, vsCurrency string) string {
	return strings.ToLower(coinID) + "/" + strings.ToLower(vsCurrency)
}

// Rate returns the cached rate, if any.
func (s *exchangeRateServiceImpl) Rate() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate, s.ok
}

// EnsureRate returns the cached rate or makes a single fetch attempt.
// Failures are not retried; the next caller triggers a new attempt. The fetch
// is shared, so it runs detached from ctx; a cancelled caller stops waiting
// without failing the others.
func (s *exchangeRateServiceImpl) EnsureRate(ctx context.Context) (float64, error) {
	if rate, ok := s.Rate(); ok {
		return rate, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("rate", func() (any, error) {
		if rate, ok := s.Rate(); ok {
			return rate, nil
		}
		rate, err := s.quotes.GetSimplePrice(fetchCtx, s.coinID, s.vsCurrency)
		if err != nil {
			return 0.0, err
		}

		s.mu.Lock()
		s.rate, s.ok = rate, true
		s.mu.Unlock()

		metrics.ExchangeRate.WithLabelValues(pairLabel(s.coinID, s.vsCurrency)).Set(rate)
		s.logger.Info("Exchange rate loaded", "rate", rate)
		return rate, nil
	})

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("fetch %s rate: %w", pairLabel(s.coinID, s.vsCurrency), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.logger.Error("Failed to fetch exchange rate", "error", res.Err, "shared", res.Shared)
			return 0, fmt.Errorf("fetch %s rate: %w", pairLabel(s.coinID, s.vsCurrency), res.Err)
		}
		return res.Val.(float64), nil
	}
}
