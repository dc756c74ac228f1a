package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/app/service"
	"basebridge/internal/domain/entity"
	"basebridge/internal/infrastructure/configloader"
	"basebridge/internal/infrastructure/sessionstore"
	"basebridge/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAccount   = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	testRecipient = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
)

type stubWallet struct{}

func (stubWallet) RequestAccounts(context.Context) ([]string, error) {
	return []string{testAccount}, nil
}

func (stubWallet) GetBalance(context.Context, string) (*big.Int, error) {
	return big.NewInt(2_000_000_000_000_000_000), nil
}

func (stubWallet) GetSigner(context.Context, string) (port.TransactionSigner, error) {
	return nil, errors.New("signing disabled in tests")
}

func (stubWallet) Network() entity.NetworkDefinition {
	return configloader.Sepolia
}

type stubQuotes struct{}

func (stubQuotes) GetSimplePrice(context.Context, string, string) (float64, error) {
	return 5_000_000, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T, wallet port.WalletProvider) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := configloader.Default()
	cfg.Splash.DelayMillis = 20
	cfg.Session.FiatTransferDelayMillis = 1

	nop := logger.NewNop()
	rates := service.NewExchangeRateService(stubQuotes{}, cfg.CoinGecko.CoinID, cfg.CoinGecko.VsCurrency, nop)
	store := sessionstore.New[*service.SessionContainer](time.Minute, time.Minute, nil)
	defaults := service.SessionDefaults{
		UserName:          cfg.Session.DefaultUserName,
		UserAvatar:        cfg.Session.AvatarURL,
		FiatBalance:       cfg.Session.FiatBalance,
		FiatCurrency:      cfg.Session.FiatCurrency,
		FiatTransferDelay: time.Duration(cfg.Session.FiatTransferDelayMillis) * time.Millisecond,
	}
	manager := service.NewSessionManager(store, wallet, rates, defaults, nop)

	router := SetupRouter(RouterDeps{
		Config:    cfg,
		Manager:   manager,
		Store:     NewCookieStore(cfg.Session.Secret, 1800, false),
		ZapLogger: zap.NewNop(),
		Logger:    nop,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "basebridge_session" {
			s.cookie = c
		}
	}
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) json(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)

	var out map[string]any
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func sessionField(t *testing.T, body map[string]any, key string) any {
	t.Helper()
	session, ok := body["session"].(map[string]any)
	require.True(t, ok, "response has no session: %v", body)
	return session[key]
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	rec := s.get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	assert.Equal(t, http.StatusOK, s.get("/static/logo.svg").Code)
	assert.Equal(t, http.StatusOK, s.get("/static/placeholder.svg").Code)
}

func TestSplashIndex(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	rec := s.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `hx-get="/splash/next"`)
}

func TestSplashNextRedirects(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	req := httptest.NewRequest(http.MethodGet, "/splash/next", nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/landing", rec.Header().Get("HX-Redirect"))

	rec = s.get("/splash/next")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/landing", rec.Header().Get("Location"))
}

func TestSplashNextClientGone(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/splash/next", nil).WithContext(ctx)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)

	assert.Empty(t, rec.Header().Get("HX-Redirect"))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestLandingPageFlow(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	rec := s.get("/landing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in with Google")
	require.NotNil(t, s.cookie)

	rec = s.postForm("/landing/signin", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/landing", rec.Header().Get("Location"))

	body := s.get("/landing").Body.String()
	assert.Contains(t, body, "Connect Wallet")
	assert.Contains(t, body, "Sepolia Testnet")
	assert.Contains(t, body, "10000.00 NGN")

	s.postForm("/landing/wallet/connect", nil)
	body = s.get("/landing").Body.String()
	assert.Contains(t, body, "0x71C7...976F")
	assert.Contains(t, body, "2.0000 ETH")

	s.postForm("/landing/mode", url.Values{"mode": {"fiat"}})
	s.postForm("/landing/convert", url.Values{"amount": {"10000"}})
	body = s.get("/landing").Body.String()
	assert.Contains(t, body, "Convert NGN to ETH")
	assert.Contains(t, body, `value="0.002000"`)

	s.postForm("/landing/transfer", url.Values{"recipient": {"Bola"}, "amount": {"500"}})
	body = s.get("/landing").Body.String()
	assert.Contains(t, body, "Fiat transfer of 500 NGN to Bola successful!")
	assert.NotContains(t, s.get("/landing").Body.String(), "successful!")

	s.postForm("/landing/settings", url.Values{"userName": {"Chioma"}})
	assert.Contains(t, s.get("/landing").Body.String(), "Chioma")

	s.postForm("/landing/logout", nil)
	assert.Contains(t, s.get("/landing").Body.String(), "Sign in with Google")
}

func TestLandingShowsTransferError(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	s.postForm("/landing/signin", nil)
	s.postForm("/landing/wallet/connect", nil)

	s.postForm("/landing/transfer", url.Values{"recipient": {"0x123"}, "amount": {"0.1"}})
	body := s.get("/landing").Body.String()
	assert.Contains(t, body, `id="error-message"`)
	assert.Contains(t, body, entity.MsgInvalidRecipient)
}

func TestLandingDismissClearsError(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	s.postForm("/landing/signin", nil)
	s.postForm("/landing/wallet/connect", nil)
	s.postForm("/landing/transfer", url.Values{"recipient": {"0x123"}, "amount": {"0.1"}})
	require.Contains(t, s.get("/landing").Body.String(), `id="dismiss-messages"`)

	rec := s.postForm("/landing/dismiss", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/landing", rec.Header().Get("Location"))

	body := s.get("/landing").Body.String()
	assert.NotContains(t, body, `id="error-message"`)
	assert.NotContains(t, body, entity.MsgInvalidRecipient)
	assert.Contains(t, body, "0x71C7...976F")
}

func TestAPIRequiresSignIn(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/v1/session/wallet/connect", nil},
		{http.MethodPut, "/api/v1/session/mode", ModeRequest{Mode: "fiat"}},
		{http.MethodPost, "/api/v1/session/transfer", TransferRequest{Recipient: testRecipient, Amount: "0.1"}},
		{http.MethodPost, "/api/v1/session/convert", ConvertRequest{Amount: "1"}},
		{http.MethodPut, "/api/v1/session/settings", SettingsRequest{UserName: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, body := s.json(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, entity.MsgNotSignedIn, body["error"])
		})
	}
}

func TestAPISessionFlow(t *testing.T) {
	s := newTestServer(t, stubWallet{})

	rec, body := s.json(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, sessionField(t, body, "loggedIn"))
	assert.Equal(t, 5_000_000.0, sessionField(t, body, "exchangeRate"))

	rec, body = s.json(http.MethodPost, "/api/v1/session/signin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, sessionField(t, body, "loggedIn"))

	rec, body = s.json(http.MethodPost, "/api/v1/session/wallet/connect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAccount, sessionField(t, body, "walletAddress"))
	assert.Equal(t, "2.0000", sessionField(t, body, "ethBalance"))

	rec, body = s.json(http.MethodPost, "/api/v1/session/convert", ConvertRequest{Amount: "0.01"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "50000.00", body["converted"])

	rec, body = s.json(http.MethodPost, "/api/v1/session/transfer", TransferRequest{Recipient: "0x123", Amount: "0.1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, entity.MsgInvalidRecipient, body["error"])

	rec, body = s.json(http.MethodPost, "/api/v1/session/transfer", TransferRequest{Recipient: testRecipient, Amount: "0.1"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, entity.MsgTransferFailed, body["error"])

	rec, _ = s.json(http.MethodPut, "/api/v1/session/mode", ModeRequest{Mode: "barter"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.json(http.MethodPut, "/api/v1/session/mode", ModeRequest{Mode: "fiat"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.json(http.MethodPost, "/api/v1/session/transfer", TransferRequest{Recipient: "Bola", Amount: "500"})
	require.Equal(t, http.StatusOK, rec.Code)
	receipt, ok := body["receipt"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, receipt["simulated"])
	assert.Empty(t, sessionField(t, body, "errorMessage"))

	rec, body = s.json(http.MethodPut, "/api/v1/session/settings", SettingsRequest{UserName: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, entity.MsgInvalidSettings, body["error"])

	rec, body = s.json(http.MethodPost, "/api/v1/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, sessionField(t, body, "walletConnected"))
	assert.Equal(t, "", sessionField(t, body, "walletAddress"))
}

func TestAPIProviderUnavailable(t *testing.T) {
	s := newTestServer(t, nil)
	s.json(http.MethodPost, "/api/v1/session/signin", nil)

	rec, body := s.json(http.MethodPost, "/api/v1/session/wallet/connect", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body["error"], "installed and unlocked")
	assert.Equal(t, false, sessionField(t, body, "walletConnected"))
}

func TestAPIMalformedBody(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/transfer", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, stubWallet{})
	s.json(http.MethodPost, "/api/v1/session/signin", nil)
	first := s.cookie

	s.cookie = nil
	_, body := s.json(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, false, sessionField(t, body, "loggedIn"))

	s.cookie = first
	_, body = s.json(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, true, sessionField(t, body, "loggedIn"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.ErrNotSignedIn, http.StatusUnauthorized},
		{entity.ErrActionInFlight, http.StatusConflict},
		{fmt.Errorf("%w: %w", entity.ErrTransferFailed, entity.ErrInvalidRecipient), http.StatusBadRequest},
		{entity.ErrWalletNotConnected, http.StatusBadRequest},
		{fmt.Errorf("dial: %w", entity.ErrProviderUnavailable), http.StatusServiceUnavailable},
		{entity.ErrProviderRequestFailed, http.StatusBadGateway},
		{fmt.Errorf("%w: reverted", entity.ErrTransferFailed), http.StatusBadGateway},
		{entity.ErrRateFetchFailed, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
