package service

import (
	"context"

	"basebridge/internal/app/port"
	"basebridge/internal/pkg/metrics"

	"github.com/google/uuid"
)

// SessionManager mounts session containers and looks them up by ID.
type SessionManager struct {
	repo     port.SessionRepository[*SessionContainer]
	wallet   port.WalletProvider
	rates    port.ExchangeRateService
	defaults SessionDefaults
	logger   port.Logger
}

// NewSessionManager creates a session manager. wallet may be nil.
func NewSessionManager(
	repo port.SessionRepository[*SessionContainer],
	wallet port.WalletProvider,
	rates port.ExchangeRateService,
	defaults SessionDefaults,
	l port.Logger,
) *SessionManager {
	return &SessionManager{
		repo:     repo,
		wallet:   wallet,
		rates:    rates,
		defaults: defaults,
		logger:   l,
	}
}

// Mount creates a new session in its initial state and loads the exchange
// rate into it. A failed rate fetch is recorded on the session, not returned.
func (m *SessionManager) Mount(ctx context.Context) *SessionContainer {
	id := uuid.NewString()
	c := NewSessionContainer(id, m.wallet, m.rates, m.defaults, m.logger)
	_ = c.FetchExchangeRate(ctx)

	m.repo.Save(id, c)
	metrics.ActiveSessions.Set(float64(m.repo.Count()))
	m.logger.Debug("Session mounted", "session_id", id)
	return c
}

// Get returns the live session with the given ID.
func (m *SessionManager) Get(id string) (*SessionContainer, bool) {
	if id == "" {
		return nil, false
	}
	c, ok := m.repo.Get(id)
	if ok {
		// Touch to extend the idle expiry.
		m.repo.Save(id, c)
	}
	return c, ok
}

// Unmount drops a session.
func (m *SessionManager) Unmount(id string) {
	m.repo.Delete(id)
	metrics.ActiveSessions.Set(float64(m.repo.Count()))
}

// ActiveSessions returns the number of live sessions.
func (m *SessionManager) ActiveSessions() int {
	return m.repo.Count()
}
