package strategy

import (
	"time"
)

// SignalSeries is a per-bar signal with entry and exit reasons, aligned to
// the panel's time index
type SignalSeries struct {
	Timestamps   []time.Time
	Values       []Signal
	EntryReasons []string
	ExitReasons  []string
}

// NewSignalSeries creates an all-Hold series over the given time index
func NewSignalSeries(index []time.Time) *SignalSeries {
	ts := make([]time.Time, len(index))
	copy(ts, index)
	return &SignalSeries{
		Timestamps:   ts,
		Values:       make([]Signal, len(index)),
		EntryReasons: make([]string, len(index)),
		ExitReasons:  make([]string, len(index)),
	}
}

// Len returns the number of bars
func (s *SignalSeries) Len() int {
	return len(s.Values)
}

// Set records a signal and its reason at bar i
func (s *SignalSeries) Set(i int, signal Signal, reason string) {
	s.Values[i] = signal
	switch signal {
	case SignalBuy:
		s.EntryReasons[i] = reason
		s.ExitReasons[i] = ""
	case SignalSell:
		s.ExitReasons[i] = reason
		s.EntryReasons[i] = ""
	default:
		s.EntryReasons[i] = ""
		s.ExitReasons[i] = ""
	}
}

// Reason returns the reason attached to the signal at bar i
func (s *SignalSeries) Reason(i int) string {
	switch s.Values[i] {
	case SignalBuy:
		return s.EntryReasons[i]
	case SignalSell:
		return s.ExitReasons[i]
	}
	return ""
}

// Count returns the number of non-Hold bars
func (s *SignalSeries) Count() int {
	return s.Buys() + s.Sells()
}

// Buys returns the number of Buy bars
func (s *SignalSeries) Buys() int {
	return s.count(SignalBuy)
}

// Sells returns the number of Sell bars
func (s *SignalSeries) Sells() int {
	return s.count(SignalSell)
}

func (s *SignalSeries) count(signal Signal) int {
	n := 0
	for _, v := range s.Values {
		if v == signal {
			n++
		}
	}
	return n
}

// Reindex aligns the series to another time index. Timestamps missing from
// this series become Hold.
func (s *SignalSeries) Reindex(index []time.Time) *SignalSeries {
	pos := make(map[int64]int, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		pos[ts.UnixNano()] = i
	}
	out := NewSignalSeries(index)
	for i, ts := range index {
		if j, ok := pos[ts.UnixNano()]; ok {
			out.Values[i] = s.Values[j]
			out.EntryReasons[i] = s.EntryReasons[j]
			out.ExitReasons[i] = s.ExitReasons[j]
		}
	}
	return out
}

// AlignedWith reports whether the series shares exactly the given time index
func (s *SignalSeries) AlignedWith(index []time.Time) bool {
	if len(s.Timestamps) != len(index) {
		return false
	}
	for i := range index {
		if !s.Timestamps[i].Equal(index[i]) {
			return false
		}
	}
	return true
}
