package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL        = "https://api.binance.com/api/v3"
	testnetBaseURL = "https://testnet.binance.vision/api/v3"
	recvWindow     = "5000" // How long a request is valid in milliseconds

	requestTimeout = 10 * time.Second

	OrderTypeMarket = "MARKET"
	OrderSideBuy    = "BUY"
	OrderSideSell   = "SELL"
)

// Client defines the interface for the exchange trading client.
type Client interface {
	TestConnection(ctx context.Context) bool
	GetServerTime(ctx context.Context) (int64, error)
	GetBalance(ctx context.Context, asset string) (Balance, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	GetLotSize(ctx context.Context, symbol string) (LotSize, error)
	PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*OrderResponse, error)
	GetTradeHistory(ctx context.Context, symbol string, limit int) ([]AccountTrade, error)
}

// RestClient is a client for the Binance spot REST API.
// It implements the Client interface.
type RestClient struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// ensure RestClient implements the interface
var _ Client = (*RestClient)(nil)

// Options tunes the client's rate limiter.
type Options struct {
	RateLimit      float64 // requests per second
	RateLimitBurst int
}

// NewRestClient creates a new exchange client bound to one environment.
// sandbox selects the testnet endpoint.
func NewRestClient(apiKey, secretKey string, sandbox bool, opts Options, logger *zap.Logger) *RestClient {
	var apiURL string
	if sandbox {
		apiURL = testnetBaseURL
		logger.Warn("Using Binance Testnet")
	} else {
		apiURL = baseURL
		logger.Info("Using Binance Production API")
	}

	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(requestTimeout)

	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 5
	}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimitBurst)

	return &RestClient{
		client:    client,
		apiKey:    apiKey,
		secretKey: secretKey,
		logger:    logger,
		limiter:   limiter,
	}
}

// param is a single request parameter. Signed requests are encoded in
// insertion order, not sorted, so the signature covers the exact payload sent.
type param struct {
	key   string
	value string
}

func encodeParams(params []param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// sign creates a HMAC-SHA256 signature over the encoded parameter string.
func (c *RestClient) sign(data string) string {
	h := hmac.New(sha256.New, []byte(c.secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// signParams appends the millisecond timestamp and the signature. The exchange
// rejects requests whose timestamp skew exceeds its tolerance; no local clock
// correction is attempted.
func (c *RestClient) signParams(params []param) string {
	params = append(params,
		param{"recvWindow", recvWindow},
		param{"timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10)},
	)
	query := encodeParams(params)
	return query + "&signature=" + c.sign(query)
}

// doRequest executes a single request after waiting for the rate limiter.
// There is no in-request retry: a failed call fails the cycle and the next
// scheduled cycle retries naturally.
func (c *RestClient) doRequest(ctx context.Context, method, path string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+path))
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{HTTPStatus: resp.StatusCode()}
		if jsonErr := json.Unmarshal(resp.Body(), apiErr); jsonErr != nil || apiErr.Msg == "" {
			apiErr.Msg = resp.String()
		}
		return nil, apiErr
	}

	return resp, nil
}

// TestConnection probes the exchange's liveness endpoint. It never returns an
// error; any failure reads as "not connected".
func (c *RestClient) TestConnection(ctx context.Context) bool {
	req := c.client.R()
	if _, err := c.doRequest(ctx, "GET", "/ping", req); err != nil {
		c.logger.Warn("Exchange connectivity check failed", zap.Error(err))
		return false
	}
	return true
}

// GetServerTime fetches the current server time from the exchange.
func (c *RestClient) GetServerTime(ctx context.Context) (int64, error) {
	type serverTimeResponse struct {
		ServerTime int64 `json:"serverTime"`
	}

	req := c.client.R().SetResult(&serverTimeResponse{})
	resp, err := c.doRequest(ctx, "GET", "/time", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	return resp.Result().(*serverTimeResponse).ServerTime, nil
}

// Balance holds the free, locked and total amounts for one asset.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
	Total  float64
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// GetBalance returns the balance for one asset. An asset with no holdings
// yields an all-zero record, never an error.
func (c *RestClient) GetBalance(ctx context.Context, asset string) (Balance, error) {
	query := c.signParams(nil)

	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetResult(&accountResponse{})

	// The signed query is appended verbatim; resty's query-param handling
	// re-encodes through url.Values and sorts the keys, which would break
	// the signature over the payload as received.
	resp, err := c.doRequest(ctx, "GET", "/account?"+query, req)
	if err != nil {
		return Balance{}, fmt.Errorf("failed to get account balances: %w", err)
	}

	account := resp.Result().(*accountResponse)
	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		return Balance{Asset: asset, Free: free, Locked: locked, Total: free + locked}, nil
	}

	return Balance{Asset: asset}, nil
}

// TickerPrice represents the response for a single ticker price.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetCurrentPrice fetches the latest price for a symbol.
func (c *RestClient) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&TickerPrice{})

	resp, err := c.doRequest(ctx, "GET", "/ticker/price", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get price for %s: %w", symbol, err)
	}

	ticker := resp.Result().(*TickerPrice)
	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q for %s: %w", ticker.Price, symbol, err)
	}
	return price, nil
}

// exchangeInfoResponse represents the response from the /exchangeInfo endpoint.
type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Status  string `json:"status"`
		Filters []struct {
			FilterType string `json:"filterType"`
			MinQty     string `json:"minQty,omitempty"`
			MaxQty     string `json:"maxQty,omitempty"`
			StepSize   string `json:"stepSize,omitempty"`
		} `json:"filters"`
	} `json:"symbols"`
}

// GetLotSize fetches the quantity-granularity filter for a symbol.
func (c *RestClient) GetLotSize(ctx context.Context, symbol string) (LotSize, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&exchangeInfoResponse{})

	resp, err := c.doRequest(ctx, "GET", "/exchangeInfo", req)
	if err != nil {
		return LotSize{}, fmt.Errorf("failed to get exchange info for %s: %w", symbol, err)
	}

	info := resp.Result().(*exchangeInfoResponse)
	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		for _, f := range s.Filters {
			if f.FilterType == "LOT_SIZE" {
				return LotSize{MinQty: f.MinQty, MaxQty: f.MaxQty, StepSize: f.StepSize}, nil
			}
		}
	}

	return LotSize{}, fmt.Errorf("LOT_SIZE filter not found for symbol %s", symbol)
}

// Fill is a partial execution within a placed order.
type Fill struct {
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
}

// OrderResponse represents the response from placing a new order.
type OrderResponse struct {
	Symbol       string `json:"symbol"`
	OrderID      int64  `json:"orderId"`
	TransactTime int64  `json:"transactTime"`
	ExecutedQty  string `json:"executedQty"`
	Status       string `json:"status"`
	Type         string `json:"type"`
	Side         string `json:"side"`
	Fills        []Fill `json:"fills"`
}

// AverageFillPrice is the quantity-weighted mean price across all fills.
func (o *OrderResponse) AverageFillPrice() float64 {
	var totalQty, weighted float64
	for _, f := range o.Fills {
		price, _ := strconv.ParseFloat(f.Price, 64)
		qty, _ := strconv.ParseFloat(f.Qty, 64)
		weighted += price * qty
		totalQty += qty
	}
	if totalQty == 0 {
		return 0
	}
	return weighted / totalQty
}

// TotalCommission sums the commission across all fills.
func (o *OrderResponse) TotalCommission() float64 {
	var total float64
	for _, f := range o.Fills {
		commission, _ := strconv.ParseFloat(f.Commission, 64)
		total += commission
	}
	return total
}

// PlaceMarketOrder issues a signed market order. The caller must have already
// normalized the quantity against the symbol's lot-size filter.
func (c *RestClient) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*OrderResponse, error) {
	body := c.signParams([]param{
		{"symbol", symbol},
		{"side", side},
		{"type", OrderTypeMarket},
		{"quantity", strconv.FormatFloat(quantity, 'f', -1, 64)},
	})

	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		SetResult(&OrderResponse{})

	resp, err := c.doRequest(ctx, "POST", "/order", req)
	if err != nil {
		c.logger.Error("Failed to place order",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("side", side),
		)
		return nil, fmt.Errorf("failed to place %s order: %w", side, err)
	}

	result := resp.Result().(*OrderResponse)
	c.logger.Info("Order placed",
		zap.Int64("order_id", result.OrderID),
		zap.String("status", result.Status),
		zap.String("executed_qty", result.ExecutedQty),
	)
	return result, nil
}

// AccountTrade is a single entry from the account's trade history.
type AccountTrade struct {
	Symbol          string `json:"symbol"`
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
}

// GetTradeHistory returns the most recent account trades for a symbol.
func (c *RestClient) GetTradeHistory(ctx context.Context, symbol string, limit int) ([]AccountTrade, error) {
	query := c.signParams([]param{
		{"symbol", symbol},
		{"limit", strconv.Itoa(limit)},
	})

	var trades []AccountTrade
	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetResult(&trades)

	// Signed query appended verbatim, same as GetBalance.
	resp, err := c.doRequest(ctx, "GET", "/myTrades?"+query, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade history: %w", err)
	}

	return *resp.Result().(*[]AccountTrade), nil
}
