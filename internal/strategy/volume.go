package strategy

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

var (
	volumeWords     = []string{"volume", "vol", "حجم"}
	highVolumeWords = []string{
		"high", "higher", "above", "spike", "spikes", "surge", "surges", "increase", "increasing",
		"large", "heavy", "greater", "more than", "بالا", "زیاد", "افزایش", "بیشتر",
	}
	lowVolumeWords = []string{
		"low", "lower", "below", "decrease", "decreasing", "small", "light", "thin", "less than",
		"پایین", "کم", "کاهش",
	}

	multiplierPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:x|×|times|برابر)`)
	percentPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// VolumeInterpreter compares volume against its rolling median
type VolumeInterpreter struct {
	window     int
	highFactor float64
	lowFactor  float64
}

// NewVolumeInterpreter creates a volume interpreter over a 20-bar median
func NewVolumeInterpreter() *VolumeInterpreter {
	return &VolumeInterpreter{window: 20, highFactor: 1.5, lowFactor: 0.5}
}

func (v *VolumeInterpreter) Name() string {
	return "volume"
}

func (v *VolumeInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	if !containsAny(clause.Norm, volumeWords...) {
		return nil, false
	}
	_, highAt, _ := firstOf(clause.Norm, highVolumeWords)
	_, lowAt, _ := firstOf(clause.Norm, lowVolumeWords)
	if highAt < 0 && lowAt < 0 {
		return v.bareMultiple(clause, panel)
	}
	low := lowAt >= 0 && (highAt < 0 || lowAt < highAt)

	factor := v.highFactor
	if low {
		factor = v.lowFactor
	}
	if m, ok := firstFloat(multiplierPattern, clause.Norm); ok && m > 0 {
		factor = m
	} else if p, ok := firstFloat(percentPattern, clause.Norm); ok {
		if low && p < 100 {
			factor = 1 - p/100
		} else if !low {
			factor = 1 + p/100
		}
	}
	return v.contribution(panel, factor, low)
}

// bareMultiple handles a clause that sizes volume without saying high or
// low: a multiple above one is high volume, below one is low volume
func (v *VolumeInterpreter) bareMultiple(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	m, ok := firstFloat(multiplierPattern, clause.Norm)
	if !ok {
		p, pok := firstFloat(percentPattern, clause.Norm)
		if !pok {
			return nil, false
		}
		m = p / 100
	}
	switch {
	case m > 1:
		return v.contribution(panel, m, false)
	case m > 0 && m < 1:
		return v.contribution(panel, m, true)
	default:
		return nil, false
	}
}

// contribution fires on bars whose volume is beyond factor times the median
func (v *VolumeInterpreter) contribution(panel *indicators.Panel, factor float64, low bool) (*Contribution, bool) {
	volumes, ok := panel.Column(indicators.ColVolume)
	if !ok || !hasPositive(volumes) {
		return nil, false
	}
	median := indicators.RollingMedian(volumes, v.window)
	fires := make([]bool, len(volumes))
	for i := range volumes {
		if !(median[i] > 0) {
			continue
		}
		if low {
			fires[i] = volumes[i] < factor*median[i]
		} else {
			fires[i] = volumes[i] > factor*median[i]
		}
	}

	side := "above"
	if low {
		side = "below"
	}
	return &Contribution{
		Fires:  fires,
		Reason: fmt.Sprintf("volume %s %.2fx %d-bar median", side, factor, v.window),
	}, true
}

func hasPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}

func firstFloat(pattern *regexp.Regexp, text string) (float64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return v, err == nil
}
