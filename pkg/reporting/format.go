package reporting

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// Display precision
const (
	moneyPlaces   = 2
	percentPlaces = 2
	pricePlaces   = 4
	ratioPlaces   = 3
)

const reportDateLayout = "2006-01-02 15:04"

// toDecimal converts a float for display. Non-finite values become zero;
// callers that can see infinity handle it before formatting.
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func formatMoney(v float64) string {
	return "$" + toDecimal(v).StringFixed(moneyPlaces)
}

func formatPercent(v float64) string {
	return toDecimal(v).StringFixed(percentPlaces) + "%"
}

func formatPrice(v float64) string {
	return toDecimal(v).StringFixed(pricePlaces)
}

func formatRatio(v float64) string {
	return toDecimal(v).StringFixed(ratioPlaces)
}

func formatProfitFactor(pf orchestrator.ProfitFactor) string {
	if pf.IsInf() {
		return "∞"
	}
	return formatRatio(float64(pf))
}

// round rounds half away from zero at the given decimal places
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return toDecimal(v).Round(places).InexactFloat64()
}

func winLoss(pnl float64) string {
	if pnl >= 0 {
		return "WIN"
	}
	return "LOSS"
}
