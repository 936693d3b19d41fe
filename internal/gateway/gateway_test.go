package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/broker"
	"TickTrader/internal/collector"
	"TickTrader/internal/paper"
)

var (
	_ collector.Fetcher = (*Client)(nil)
	_ broker.Broker     = (*Client)(nil)
	_ Market            = (*paper.Exchange)(nil)
)

func newTestMarket(t *testing.T, advanced bool, apiKey string) (*paper.Exchange, *httptest.Server) {
	t.Helper()
	ex, err := paper.NewExchange(paper.Config{
		Seed:         3,
		Symbols:      []string{"ECP", "JGN"},
		StartingCash: 1e9,
		AdvancedData: advanced,
	}, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(ex, apiKey, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return ex, srv
}

func TestGateway_MarketData(t *testing.T) {
	ex, srv := newTestMarket(t, true, "")
	c := NewClient(srv.URL+"/", "", "")
	ctx := context.Background()

	acc, err := c.Access(ctx)
	require.NoError(t, err)
	assert.True(t, acc.Basic)
	assert.True(t, acc.Advanced)

	syms, err := c.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ECP", "JGN"}, syms)

	want, _ := ex.Quote(ctx, "ECP")
	got, err := c.Quote(ctx, "ECP")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantF, _ := ex.Forecast(ctx, "JGN")
	gotF, err := c.Forecast(ctx, "JGN")
	require.NoError(t, err)
	assert.Equal(t, wantF, gotF)

	free, err := c.FreeCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1e9, free)
}

func TestGateway_OrdersRoundTrip(t *testing.T) {
	ex, srv := newTestMarket(t, false, "")
	c := NewClient(srv.URL, "", "")
	ctx := context.Background()

	require.NoError(t, c.Buy(ctx, "ECP", 100))
	require.NoError(t, c.Short(ctx, "JGN", 50))

	pos, err := c.Position(ctx, "ECP")
	require.NoError(t, err)
	direct, _ := ex.Position(ctx, "ECP")
	assert.Equal(t, direct, pos)
	assert.Equal(t, int64(100), pos.LongShares)

	require.NoError(t, c.Sell(ctx, "ECP", 100))
	require.NoError(t, c.Cover(ctx, "JGN", 50))
	pos, _ = c.Position(ctx, "JGN")
	assert.Zero(t, pos.ShortShares)
}

func TestGateway_ErrorMapping(t *testing.T) {
	_, srv := newTestMarket(t, false, "")
	c := NewClient(srv.URL, "", "")
	ctx := context.Background()

	_, err := c.Quote(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = c.Forecast(ctx, "ECP")
	assert.ErrorIs(t, err, ErrNoAdvancedData)

	assert.ErrorIs(t, c.Sell(ctx, "ECP", 5), ErrRejected)
	assert.ErrorIs(t, c.Buy(ctx, "ECP", 0), ErrBadRequest)
	assert.ErrorIs(t, c.Buy(ctx, "ECP", 1<<40), ErrRejected)

	_, err = c.Quote(ctx, "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestGateway_BadSide(t *testing.T) {
	_, srv := newTestMarket(t, false, "")
	resp, err := http.Post(srv.URL+"/api/v1/orders", "application/json", strings.NewReader(`{"symbol":"ECP","side":"hold","shares":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestGateway_APIKey(t *testing.T) {
	_, srv := newTestMarket(t, false, "s3cret")
	ctx := context.Background()

	_, err := NewClient(srv.URL, "", "").Symbols(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = NewClient(srv.URL, "wrong", "").Symbols(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	syms, err := NewClient(srv.URL, "s3cret", "").Symbols(ctx)
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseSide(t *testing.T) {
	for _, in := range []string{"buy", "SELL", " Short ", "cover"} {
		_, err := parseSide(in)
		assert.NoError(t, err, in)
	}
	_, err := parseSide("hold")
	assert.ErrorIs(t, err, ErrBadRequest)
}
