package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/fund"
	"TickTrader/internal/model"
)

type captureSink struct {
	name   string
	events []Event
	err    error
}

func (c *captureSink) Name() string { return c.name }

func (c *captureSink) Publish(_ context.Context, ev Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func TestMulti_FailingSinkDoesNotStopOthers(t *testing.T) {
	var buf bytes.Buffer
	bad := &captureSink{name: "bad", err: errors.New("down")}
	good := &captureSink{name: "good"}
	m := NewMulti(zerolog.New(&buf), bad, nil, good)

	err := m.Publish(context.Background(), Event{Kind: EventTick})
	assert.ErrorIs(t, err, bad.err)
	assert.Len(t, bad.events, 1)
	assert.Len(t, good.events, 1)
	assert.Contains(t, buf.String(), `"sink":"bad"`)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(zerolog.New(&buf))

	s := fund.Summarize([]model.Snapshot{{Symbol: "ECP", BidPrice: 12, LongShares: 100, LongAvgCost: 10}}, 0)
	require.NoError(t, r.Publish(context.Background(), Event{
		Kind:      EventTick,
		Message:   "tick complete",
		Forecasts: []ForecastRow{{Symbol: "ECP", Count: 12, Forecast: 0.7, Held: true}},
		Portfolio: &s,
	}))

	out := buf.String()
	assert.Contains(t, out, "tick complete")
	assert.Contains(t, out, "<ECP>")
	assert.Contains(t, out, "Stocks profit : $200.000")
}

func TestOrderRows(t *testing.T) {
	rows := OrderRows([]model.Order{
		{ID: "1", Symbol: "A", Side: model.SideBuy, Shares: 3},
		{ID: "2", Symbol: "B", Side: model.SideCover, Err: errors.New("no shares")},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "BUY", rows[0].Side)
	assert.Empty(t, rows[0].Error)
	assert.Equal(t, "no shares", rows[1].Error)
	assert.Equal(t, 1, countFailed(rows))
}
