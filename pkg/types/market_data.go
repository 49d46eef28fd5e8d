package types

import (
	"math"
	"time"
)

// OHLCV is a single price point of a PriceSeries
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// IsValid reports whether all prices of the bar are finite and positive.
// Volume is not checked; a missing volume is recorded as 0.
func (c OHLCV) IsValid() bool {
	for _, p := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return false
		}
	}
	return true
}

// Timestamps returns the time index of the series
func Timestamps(data []OHLCV) []time.Time {
	ts := make([]time.Time, len(data))
	for i, c := range data {
		ts[i] = c.Timestamp
	}
	return ts
}

// Closes returns the close column of the series
func Closes(data []OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Close
	}
	return out
}

// IsStrictlyAscending reports whether timestamps are ascending and unique
func IsStrictlyAscending(data []OHLCV) bool {
	for i := 1; i < len(data); i++ {
		if !data[i].Timestamp.After(data[i-1].Timestamp) {
			return false
		}
	}
	return true
}
