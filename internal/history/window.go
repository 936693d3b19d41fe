package history

import "TickTrader/internal/model"

// Capacity is the number of snapshots kept per instrument.
const Capacity = 12

// Window is a fixed-size ring of snapshots, oldest first.
type Window struct {
	buf   [Capacity]model.Snapshot
	start int
	n     int
}

// Push appends s, evicting the oldest snapshot once the window is full.
func (w *Window) Push(s model.Snapshot) {
	if w.n < Capacity {
		w.buf[(w.start+w.n)%Capacity] = s
		w.n++
		return
	}
	w.buf[w.start] = s
	w.start = (w.start + 1) % Capacity
}

// Len returns the number of snapshots held, 0..Capacity.
func (w *Window) Len() int {
	if w == nil {
		return 0
	}
	return w.n
}

// Full reports whether the window holds Capacity snapshots.
func (w *Window) Full() bool { return w.Len() == Capacity }

// At returns the i-th snapshot, 0 being the oldest.
func (w *Window) At(i int) model.Snapshot {
	if i < 0 || i >= w.n {
		panic("history: index out of range")
	}
	return w.buf[(w.start+i)%Capacity]
}

// Latest returns the newest snapshot and false if the window is empty.
func (w *Window) Latest() (model.Snapshot, bool) {
	if w.Len() == 0 {
		return model.Snapshot{}, false
	}
	return w.At(w.n - 1), true
}

// Asks returns the ask prices oldest to newest.
func (w *Window) Asks() []float64 {
	out := make([]float64, w.Len())
	for i := range out {
		out[i] = w.At(i).AskPrice
	}
	return out
}
