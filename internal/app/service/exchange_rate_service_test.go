package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"basebridge/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRateFetchesOnce(t *testing.T) {
	quotes := &fakeQuotes{rate: 5_000_000, delay: 20 * time.Millisecond}
	svc := NewExchangeRateService(quotes, "ethereum", "ngn", logger.NewNop())

	_, ok := svc.Rate()
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := svc.EnsureRate(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 5_000_000.0, rate)
		}()
	}
	wg.Wait()

	rate, err := svc.EnsureRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5_000_000.0, rate)
	assert.Equal(t, 1, quotes.callCount())
}

func TestEnsureRateFailureIsNotCached(t *testing.T) {
	quotes := &fakeQuotes{err: errQuoteDown}
	svc := NewExchangeRateService(quotes, "ethereum", "ngn", logger.NewNop())

	_, err := svc.EnsureRate(context.Background())
	assert.ErrorIs(t, err, errQuoteDown)
	_, ok := svc.Rate()
	assert.False(t, ok)

	quotes.mu.Lock()
	quotes.err, quotes.rate = nil, 4_000_000
	quotes.mu.Unlock()

	rate, err := svc.EnsureRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4_000_000.0, rate)
	assert.Equal(t, 2, quotes.callCount())
}

func TestEnsureRateSurvivesCancelledCaller(t *testing.T) {
	quotes := &fakeQuotes{rate: 5_000_000, delay: 100 * time.Millisecond}
	svc := NewExchangeRateService(quotes, "ethereum", "ngn", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.EnsureRate(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool { return quotes.callCount() == 1 }, time.Second, time.Millisecond)

	second := make(chan float64, 1)
	go func() {
		rate, err := svc.EnsureRate(context.Background())
		assert.NoError(t, err)
		second <- rate
	}()
	cancel()

	assert.ErrorIs(t, <-first, context.Canceled)
	assert.Equal(t, 5_000_000.0, <-second)

	rate, ok := svc.Rate()
	assert.True(t, ok)
	assert.Equal(t, 5_000_000.0, rate)
	assert.Equal(t, 1, quotes.callCount())
}
