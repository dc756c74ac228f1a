package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/domain/entity"
	"basebridge/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// simplePriceResponse is the body of /simple/price: {"ethereum":{"ngn":5000000}}.
type simplePriceResponse map[string]map[string]float64

// coinGeckoClientImpl implements port.QuoteSource against the CoinGecko public API.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a CoinGecko quote source. requestsPerMinute caps
// outgoing requests; calls beyond it wait for a token or for ctx.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) port.QuoteSource {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{Name: "basebridge"},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// GetSimplePrice returns the price of coinID in vsCurrency. Any transport
// error, non-200 status, malformed body or missing rate wraps entity.ErrRateFetchFailed.
func (c *coinGeckoClientImpl) GetSimplePrice(ctx context.Context, coinID, vsCurrency string) (float64, error) {
	coinID = strings.ToLower(coinID)
	vsCurrency = strings.ToLower(vsCurrency)

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: rate limiter: %v", entity.ErrRateFetchFailed, err)
	}

	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", vsCurrency)
	requestURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	c.logger.Debug("Requesting simple price from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < c.timeout {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.QuoteRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
		return 0, fmt.Errorf("%w: request to %s: %v", entity.ErrRateFetchFailed, requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.QuoteRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return 0, fmt.Errorf("%w: %s returned status %d", entity.ErrRateFetchFailed, requestURL, resp.StatusCode())
	}

	var body simplePriceResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		metrics.QuoteRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return 0, fmt.Errorf("%w: malformed response from %s: %v", entity.ErrRateFetchFailed, requestURL, err)
	}

	price, ok := body[coinID][vsCurrency]
	if !ok || price <= 0 {
		metrics.QuoteRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.logger.Warn("CoinGecko response has no usable rate",
			zap.String("coinID", coinID),
			zap.String("vsCurrency", vsCurrency),
			zap.ByteString("responseBody", rawBody))
		return 0, fmt.Errorf("%w: no %s/%s rate in response", entity.ErrRateFetchFailed, coinID, vsCurrency)
	}

	metrics.QuoteRequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	c.logger.Debug("Fetched simple price", zap.String("coinID", coinID), zap.String("vsCurrency", vsCurrency), zap.Float64("price", price))
	return price, nil
}
