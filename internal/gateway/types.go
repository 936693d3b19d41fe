// Package gateway exposes a market over HTTP and consumes it remotely.
package gateway

import (
	"errors"
	"fmt"
	"strings"

	"TickTrader/internal/model"
)

// Response codes carried in the envelope. 0 means success.
const (
	CodeSuccess        = 0
	CodeBadRequest     = 1001
	CodeUnauthorized   = 1002
	CodeUnknownSymbol  = 1003
	CodeRejected       = 1004
	CodeNoAdvancedData = 1005
	CodeInternal       = 1099
)

var (
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnknownSymbol  = errors.New("unknown symbol")
	ErrRejected       = errors.New("order rejected")
	ErrNoAdvancedData = errors.New("advanced market data not available")
	ErrInternal       = errors.New("market internal error")
)

var codeErrors = map[int]error{
	CodeBadRequest:     ErrBadRequest,
	CodeUnauthorized:   ErrUnauthorized,
	CodeUnknownSymbol:  ErrUnknownSymbol,
	CodeRejected:       ErrRejected,
	CodeNoAdvancedData: ErrNoAdvancedData,
	CodeInternal:       ErrInternal,
}

// APIError is a non-success envelope returned by the market.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market api: status %d, code %d: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the code onto the package sentinel errors.
func (e *APIError) Unwrap() error {
	if err, ok := codeErrors[e.Code]; ok {
		return err
	}
	return ErrInternal
}

// apiResponse is the envelope of every reply.
type apiResponse[T any] struct {
	RequestID string `json:"request_id"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
}

type accessDTO struct {
	Basic    bool `json:"basic"`
	Advanced bool `json:"advanced"`
}

type quoteDTO struct {
	Symbol    string  `json:"symbol"`
	Ask       float64 `json:"ask"`
	Bid       float64 `json:"bid"`
	Price     float64 `json:"price"`
	MaxShares int64   `json:"max_shares"`
}

type positionDTO struct {
	Symbol       string  `json:"symbol"`
	LongShares   int64   `json:"long_shares"`
	LongAvgCost  float64 `json:"long_avg_cost"`
	ShortShares  int64   `json:"short_shares"`
	ShortAvgCost float64 `json:"short_avg_cost"`
}

type forecastDTO struct {
	Symbol   string  `json:"symbol"`
	Forecast float64 `json:"forecast"`
}

type accountDTO struct {
	FreeCapital float64 `json:"free_capital"`
}

type orderRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Shares int64  `json:"shares"`
}

type orderDTO struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Shares int64  `json:"shares"`
}

// wireSide renders a side as it travels on the wire.
func wireSide(s model.Side) string {
	return strings.ToLower(string(s))
}

// parseSide accepts buy, sell, short or cover in any case.
func parseSide(s string) (model.Side, error) {
	side := model.Side(strings.ToUpper(strings.TrimSpace(s)))
	switch side {
	case model.SideBuy, model.SideSell, model.SideShort, model.SideCover:
		return side, nil
	}
	return "", fmt.Errorf("%w: unknown side %q", ErrBadRequest, s)
}
