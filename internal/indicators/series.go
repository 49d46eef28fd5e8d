package indicators

import (
	"math"
	"sort"
)

// nanSeries returns a series of n undefined values
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func isDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// smaSeries is the rolling mean; a value is defined only when the whole window is defined
func smaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	sum := 0.0
	run := 0 // consecutive defined values ending at i
	for i, v := range values {
		if !isDefined(v) {
			sum = 0
			run = 0
			continue
		}
		sum += v
		run++
		if run > period {
			sum -= values[i-period]
			run = period
		}
		if run == period {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// emaSeries seeds with the SMA of the first period defined values, then applies
// the standard 2/(n+1) smoothing
func emaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	start := -1
	for i, v := range values {
		if isDefined(v) {
			start = i
			break
		}
	}
	if start < 0 || len(values)-start < period {
		return out
	}

	sum := 0.0
	for i := start; i < start+period; i++ {
		if !isDefined(values[i]) {
			return out
		}
		sum += values[i]
	}
	ema := sum / float64(period)
	out[start+period-1] = ema

	for i := start + period; i < len(values); i++ {
		if !isDefined(values[i]) {
			continue
		}
		ema = values[i]*alpha + ema*(1-alpha)
		out[i] = ema
	}
	return out
}

// rollingStd is the population standard deviation over the window
func rollingStd(values []float64, means []float64, period int) []float64 {
	out := nanSeries(len(values))
	for i := period - 1; i < len(values); i++ {
		if !isDefined(means[i]) {
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - means[i]
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}

// rollingExtremes returns the highest high and lowest low over the window
func rollingExtremes(highs, lows []float64, period int) (hh, ll []float64) {
	hh = nanSeries(len(highs))
	ll = nanSeries(len(lows))
	for i := period - 1; i < len(highs); i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		hh[i] = hi
		ll[i] = lo
	}
	return hh, ll
}

// RollingMedian is the median over a trailing window; undefined until the window is full
func RollingMedian(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	window := make([]float64, period)
	for i := period - 1; i < len(values); i++ {
		copy(window, values[i-period+1:i+1])
		sort.Float64s(window)
		if period%2 == 1 {
			out[i] = window[period/2]
		} else {
			out[i] = (window[period/2-1] + window[period/2]) / 2
		}
	}
	return out
}

// trueRange of each bar; the first bar uses high-low
func trueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			out[i] = highs[i] - lows[i]
			continue
		}
		// True Range = max(High-Low, abs(High-PrevClose), abs(Low-PrevClose))
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// SMASeries exposes the rolling mean for callers building ad hoc columns
func SMASeries(values []float64, period int) []float64 {
	return smaSeries(values, period)
}

// EMASeries exposes the exponential moving average for ad hoc columns
func EMASeries(values []float64, period int) []float64 {
	return emaSeries(values, period)
}
