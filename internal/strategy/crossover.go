package strategy

// Crossover rules. Any comparison involving an undefined (NaN) value is
// false, so a series never fires before its window is full.

// crossesBelow fires where the previous value was at or above the threshold
// and the current one is under it
func crossesBelow(values []float64, threshold float64) []bool {
	out := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i-1] >= threshold && values[i] < threshold
	}
	return out
}

// crossesAbove fires where the previous value was at or below the threshold
// and the current one is over it
func crossesAbove(values []float64, threshold float64) []bool {
	out := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i-1] <= threshold && values[i] > threshold
	}
	return out
}

// crossesUnder fires where series a moves from at-or-above b to below it
func crossesUnder(a, b []float64) []bool {
	out := make([]bool, len(a))
	for i := 1; i < len(a) && i < len(b); i++ {
		out[i] = a[i-1] >= b[i-1] && a[i] < b[i]
	}
	return out
}

// crossesOver fires where series a moves from at-or-below b to above it
func crossesOver(a, b []float64) []bool {
	out := make([]bool, len(a))
	for i := 1; i < len(a) && i < len(b); i++ {
		out[i] = a[i-1] <= b[i-1] && a[i] > b[i]
	}
	return out
}

func crossThreshold(values []float64, dir Direction, threshold float64) []bool {
	if dir == DirectionBelow {
		return crossesBelow(values, threshold)
	}
	return crossesAbove(values, threshold)
}

func crossSeries(a, b []float64, dir Direction) []bool {
	if dir == DirectionBelow {
		return crossesUnder(a, b)
	}
	return crossesOver(a, b)
}

// roleDirection is the conventional direction for a clause that names none:
// entries look for oversold dips, exits for overbought spikes
func roleDirection(role Role) Direction {
	if role == RoleExit {
		return DirectionAbove
	}
	return DirectionBelow
}

func countTrue(fires []bool) int {
	n := 0
	for _, f := range fires {
		if f {
			n++
		}
	}
	return n
}
