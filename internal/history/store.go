// Package history keeps the bounded per-instrument snapshot windows.
package history

import (
	"errors"
	"fmt"

	"TickTrader/internal/model"
)

// ErrNotFound is returned for a symbol that was never recorded.
var ErrNotFound = errors.New("history: symbol not found")

// Store owns one Window per symbol. It is not safe for concurrent use; the
// control loop is its only writer and reader.
type Store struct {
	windows map[string]*Window
	order   []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{windows: make(map[string]*Window)}
}

// Record appends s to the window of symbol, creating the window on first use.
func (st *Store) Record(symbol string, s model.Snapshot) {
	w, ok := st.windows[symbol]
	if !ok {
		w = &Window{}
		st.windows[symbol] = w
		st.order = append(st.order, symbol)
	}
	w.Push(s)
}

// Latest returns the most recent snapshot of symbol.
func (st *Store) Latest(symbol string) (model.Snapshot, error) {
	w, ok := st.windows[symbol]
	if !ok {
		return model.Snapshot{}, fmt.Errorf("latest %q: %w", symbol, ErrNotFound)
	}
	s, _ := w.Latest()
	return s, nil
}

// Len returns the window length of symbol, 0 when never observed.
func (st *Store) Len(symbol string) int {
	return st.windows[symbol].Len()
}

// Window returns the window of symbol or nil.
func (st *Store) Window(symbol string) *Window {
	return st.windows[symbol]
}

// Symbols lists recorded symbols in first-observation order.
func (st *Store) Symbols() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}
