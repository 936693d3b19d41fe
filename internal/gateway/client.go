package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"TickTrader/internal/model"
)

// Client talks to a market gateway. It implements both the data fetcher and
// the broker the engine needs.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewClient creates a new client with optional proxy support.
func NewClient(baseURL, apiKey, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Name identifies the gateway source in logs and run records.
func (c *Client) Name() string { return "gateway" }

func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T

	endpoint := c.BaseURL + "/api/v1" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return zero, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}

	var env apiResponse[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("decode %s: status %d, body: %s", path, resp.StatusCode, string(raw))
	}
	if env.Code != CodeSuccess || resp.StatusCode != http.StatusOK {
		code := env.Code
		if code == CodeSuccess {
			code = CodeInternal
		}
		return zero, &APIError{Status: resp.StatusCode, Code: code, Message: env.Message}
	}
	return env.Data, nil
}

func symbolQuery(sym string) url.Values {
	return url.Values{"symbol": {sym}}
}

// Access reports the data products granted to the API key.
func (c *Client) Access(ctx context.Context) (model.Access, error) {
	a, err := do[accessDTO](ctx, c, http.MethodGet, "/access", nil, nil)
	if err != nil {
		return model.Access{}, err
	}
	return model.Access{Basic: a.Basic, Advanced: a.Advanced}, nil
}

// Symbols lists tradable symbols.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	return do[[]string](ctx, c, http.MethodGet, "/symbols", nil, nil)
}

// Quote fetches the current quote of sym.
func (c *Client) Quote(ctx context.Context, sym string) (model.Quote, error) {
	q, err := do[quoteDTO](ctx, c, http.MethodGet, "/quote", symbolQuery(sym), nil)
	if err != nil {
		return model.Quote{}, err
	}
	return model.Quote{Symbol: q.Symbol, Ask: q.Ask, Bid: q.Bid, Price: q.Price, MaxShares: q.MaxShares}, nil
}

// Position fetches the account holding in sym.
func (c *Client) Position(ctx context.Context, sym string) (model.Position, error) {
	p, err := do[positionDTO](ctx, c, http.MethodGet, "/position", symbolQuery(sym), nil)
	if err != nil {
		return model.Position{}, err
	}
	return model.Position{
		LongShares: p.LongShares, LongAvgCost: p.LongAvgCost,
		ShortShares: p.ShortShares, ShortAvgCost: p.ShortAvgCost,
	}, nil
}

// Forecast fetches the advanced-data forecast of sym.
func (c *Client) Forecast(ctx context.Context, sym string) (float64, error) {
	f, err := do[forecastDTO](ctx, c, http.MethodGet, "/forecast", symbolQuery(sym), nil)
	if err != nil {
		return 0, err
	}
	return f.Forecast, nil
}

// FreeCapital fetches the account's free cash.
func (c *Client) FreeCapital(ctx context.Context) (float64, error) {
	a, err := do[accountDTO](ctx, c, http.MethodGet, "/account", nil, nil)
	if err != nil {
		return 0, err
	}
	return a.FreeCapital, nil
}

func (c *Client) submit(ctx context.Context, side model.Side, sym string, shares int64) error {
	_, err := do[orderDTO](ctx, c, http.MethodPost, "/orders", nil, orderRequest{
		Symbol: sym,
		Side:   wireSide(side),
		Shares: shares,
	})
	return err
}

// Buy submits a long market order.
func (c *Client) Buy(ctx context.Context, sym string, shares int64) error {
	return c.submit(ctx, model.SideBuy, sym, shares)
}

// Sell submits a long close.
func (c *Client) Sell(ctx context.Context, sym string, shares int64) error {
	return c.submit(ctx, model.SideSell, sym, shares)
}

// Short submits a short-open market order.
func (c *Client) Short(ctx context.Context, sym string, shares int64) error {
	return c.submit(ctx, model.SideShort, sym, shares)
}

// Cover submits a short close.
func (c *Client) Cover(ctx context.Context, sym string, shares int64) error {
	return c.submit(ctx, model.SideCover, sym, shares)
}
