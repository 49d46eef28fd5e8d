package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStochastic_Compute(t *testing.T) {
	stoch := NewStochastic(14, 3)
	out, err := stoch.Compute(generateTrendData(30, 1.0))
	require.NoError(t, err)

	k := out[ColStochK]
	d := out[ColStochD]
	assert.True(t, math.IsNaN(k[12]))
	assert.False(t, math.IsNaN(k[13]))
	assert.True(t, math.IsNaN(d[14]))
	assert.False(t, math.IsNaN(d[15]))

	// Close sits 1 below the highest high of a 2-per-bar-wide range
	// range = (200+29+1) - (200+16-1) = 15, close - low = 14
	assert.InDelta(t, 100*14.0/15.0, lastValue(k), 1e-9)
	assert.InDelta(t, lastValue(k), lastValue(d), 1e-9)
}

func TestWilliamsR_Compute(t *testing.T) {
	wr := NewWilliamsR(14)
	out, err := wr.Compute(generateTrendData(30, -1.0))
	require.NoError(t, err)

	v := lastValue(out[ColWilliamsR])
	assert.LessOrEqual(t, v, 0.0)
	assert.GreaterOrEqual(t, v, -100.0)
	// Close is 1 above the lowest low of a 15-wide range
	assert.InDelta(t, -100*14.0/15.0, v, 1e-9)
}

func TestATR_Compute(t *testing.T) {
	atr := NewATR(14)
	out, err := atr.Compute(generateFlatData(20))
	require.NoError(t, err)

	values := out[ColATR]
	assert.True(t, math.IsNaN(values[12]))
	assert.InDelta(t, 2.0, values[13], 1e-9)
	assert.InDelta(t, 2.0, lastValue(values), 1e-9)
}

func TestADX_Compute_StrongTrend(t *testing.T) {
	adx := NewADX(14)
	out, err := adx.Compute(generateTrendData(60, 2.0))
	require.NoError(t, err)

	values := out[ColADX]
	assert.True(t, math.IsNaN(values[26]))
	assert.False(t, math.IsNaN(values[27]))
	// One-directional movement: +DM only, DX = 100
	assert.InDelta(t, 100.0, lastValue(values), 1e-6)
}

func TestADX_Compute_ShortSeries(t *testing.T) {
	out, err := NewADX(14).Compute(generateTestData(20))
	require.NoError(t, err)
	assert.Equal(t, 0, countDefined(out[ColADX]))
}

func TestCCI_Compute(t *testing.T) {
	cci := NewCCI(20)

	flat, err := cci.Compute(generateFlatData(25))
	require.NoError(t, err)
	assert.Equal(t, 0.0, lastValue(flat[ColCCI]))

	rising, err := cci.Compute(generateTrendData(25, 1.0))
	require.NoError(t, err)
	assert.Greater(t, lastValue(rising[ColCCI]), 100.0)
	assert.True(t, math.IsNaN(rising[ColCCI][18]))
}
