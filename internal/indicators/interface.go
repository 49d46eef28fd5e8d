package indicators

import (
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// Column names of the indicator panel
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"

	ColRSI        = "rsi"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColSMA20      = "sma_20"
	ColSMA50      = "sma_50"
	ColEMA12      = "ema_12"
	ColEMA26      = "ema_26"
	ColBBUpper    = "bb_upper"
	ColBBMiddle   = "bb_middle"
	ColBBLower    = "bb_lower"
	ColStochK     = "stoch_k"
	ColStochD     = "stoch_d"
	ColWilliamsR  = "williams_r"
	ColATR        = "atr"
	ColADX        = "adx"
	ColCCI        = "cci"
)

// TechnicalIndicator computes one or more panel columns from a price series.
// Values are NaN until the indicator's window is full; an error means the
// computation itself failed.
type TechnicalIndicator interface {
	Compute(data []types.OHLCV) (map[string][]float64, error)
	GetName() string
	GetRequiredPeriods() int
	Columns() []string
}

type ohlc struct {
	opens, highs, lows, closes, volumes []float64
}

func columnsOf(data []types.OHLCV) ohlc {
	c := ohlc{
		opens:   make([]float64, len(data)),
		highs:   make([]float64, len(data)),
		lows:    make([]float64, len(data)),
		closes:  make([]float64, len(data)),
		volumes: make([]float64, len(data)),
	}
	for i, bar := range data {
		c.opens[i] = bar.Open
		c.highs[i] = bar.High
		c.lows[i] = bar.Low
		c.closes[i] = bar.Close
		c.volumes[i] = bar.Volume
	}
	return c
}
