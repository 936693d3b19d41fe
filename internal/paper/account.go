package paper

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrPositionCap        = errors.New("position cap exceeded")
	ErrInsufficientShares = errors.New("insufficient shares")
)

type holding struct {
	Long     int64
	LongAvg  float64
	Short    int64
	ShortAvg float64
}

// Account tracks virtual cash and per-symbol long and short holdings.
// It is not safe for concurrent use; Exchange serializes access.
type Account struct {
	cash       float64
	commission float64
	realized   float64
	holdings   map[string]holding
}

// NewAccount creates an account with starting cash and a flat per-order commission.
func NewAccount(startingCash, commission float64) *Account {
	return &Account{
		cash:       startingCash,
		commission: commission,
		holdings:   make(map[string]holding),
	}
}

// Cash is the free cash balance.
func (a *Account) Cash() float64 { return a.cash }

// Realized is the profit closed out so far, after commissions.
func (a *Account) Realized() float64 { return a.realized }

func (a *Account) holding(sym string) holding { return a.holdings[sym] }

func (a *Account) put(sym string, h holding) {
	if h.Long == 0 && h.Short == 0 {
		delete(a.holdings, sym)
		return
	}
	a.holdings[sym] = h
}

func (a *Account) checkOpen(h holding, n, maxShares int64, price float64) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	if h.Long+h.Short+n > maxShares {
		return fmt.Errorf("%w: holding %d, cap %d, requested %d", ErrPositionCap, h.Long+h.Short, maxShares, n)
	}
	if cost := float64(n)*price + a.commission; cost > a.cash {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, a.cash)
	}
	return nil
}

// buy opens or adds to a long at ask.
func (a *Account) buy(sym string, n, maxShares int64, ask float64) error {
	h := a.holding(sym)
	if err := a.checkOpen(h, n, maxShares, ask); err != nil {
		return err
	}
	h.LongAvg = (h.LongAvg*float64(h.Long) + ask*float64(n)) / float64(h.Long+n)
	h.Long += n
	a.cash -= float64(n)*ask + a.commission
	a.put(sym, h)
	return nil
}

// sell closes some or all of a long at bid.
func (a *Account) sell(sym string, n int64, bid float64) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	h := a.holding(sym)
	if n > h.Long {
		return fmt.Errorf("%w: long %d, requested %d", ErrInsufficientShares, h.Long, n)
	}
	a.cash += float64(n)*bid - a.commission
	a.realized += float64(n)*(bid-h.LongAvg) - a.commission
	h.Long -= n
	if h.Long == 0 {
		h.LongAvg = 0
	}
	a.put(sym, h)
	return nil
}

// short opens or adds to a short at bid. The notional is held as collateral.
func (a *Account) short(sym string, n, maxShares int64, bid float64) error {
	h := a.holding(sym)
	if err := a.checkOpen(h, n, maxShares, bid); err != nil {
		return err
	}
	h.ShortAvg = (h.ShortAvg*float64(h.Short) + bid*float64(n)) / float64(h.Short+n)
	h.Short += n
	a.cash -= float64(n)*bid + a.commission
	a.put(sym, h)
	return nil
}

// cover closes some or all of a short at ask, returning the collateral plus
// shares × (avg − ask).
func (a *Account) cover(sym string, n int64, ask float64) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	h := a.holding(sym)
	if n > h.Short {
		return fmt.Errorf("%w: short %d, requested %d", ErrInsufficientShares, h.Short, n)
	}
	profit := float64(n) * (h.ShortAvg - ask)
	a.cash += float64(n)*h.ShortAvg + profit - a.commission
	a.realized += profit - a.commission
	h.Short -= n
	if h.Short == 0 {
		h.ShortAvg = 0
	}
	a.put(sym, h)
	return nil
}
