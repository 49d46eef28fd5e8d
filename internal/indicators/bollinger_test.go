package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBollingerBands(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	assert.NotNil(t, bb)
	assert.Equal(t, 20, bb.period)
	assert.Equal(t, 2.0, bb.stdDev)
}

func TestBollingerBands_Compute_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	out, err := bb.Compute(generateTestData(10)) // Less than period
	require.NoError(t, err)

	assert.Equal(t, 0, countDefined(out[ColBBMiddle]))
	assert.Equal(t, 0, countDefined(out[ColBBUpper]))
}

func TestBollingerBands_Compute_BandOrdering(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	out, err := bb.Compute(generateTestData(30))
	require.NoError(t, err)

	i := 29
	assert.Greater(t, out[ColBBMiddle][i], 0.0)
	assert.Greater(t, out[ColBBUpper][i], out[ColBBMiddle][i])
	assert.Less(t, out[ColBBLower][i], out[ColBBMiddle][i])
}

func TestBollingerBands_Compute_StandardDeviation(t *testing.T) {
	bb := NewBollingerBands(2, 2.0)
	data := generateFlatData(2)
	data[0].Close = 98
	data[1].Close = 102

	out, err := bb.Compute(data)
	require.NoError(t, err)

	// Mean 100, population deviation 2
	assert.InDelta(t, 100.0, out[ColBBMiddle][1], 1e-9)
	assert.InDelta(t, 104.0, out[ColBBUpper][1], 1e-9)
	assert.InDelta(t, 96.0, out[ColBBLower][1], 1e-9)
}

func TestBollingerBands_Compute_FlatCollapses(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	out, err := bb.Compute(generateFlatData(25))
	require.NoError(t, err)

	assert.InDelta(t, lastValue(out[ColBBMiddle]), lastValue(out[ColBBUpper]), 1e-9)
	assert.InDelta(t, lastValue(out[ColBBMiddle]), lastValue(out[ColBBLower]), 1e-9)
}

func TestBollingerBands_Compute_VolatileWidens(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)
	calm, err := bb.Compute(generateTestData(25))
	require.NoError(t, err)
	wild, err := bb.Compute(generateVolatileData(25))
	require.NoError(t, err)

	calmWidth := lastValue(calm[ColBBUpper]) - lastValue(calm[ColBBLower])
	wildWidth := lastValue(wild[ColBBUpper]) - lastValue(wild[ColBBLower])
	assert.Greater(t, wildWidth, calmWidth)
	assert.False(t, math.IsNaN(wildWidth))
}
