package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMA(t *testing.T) {
	sma := NewSMA(20)

	assert.NotNil(t, sma)
	assert.Equal(t, 20, sma.period)
	assert.Equal(t, []string{"sma_20"}, sma.Columns())
}

func TestSMA_Compute_InsufficientData(t *testing.T) {
	sma := NewSMA(20)
	data := generateTestData(10) // Less than period

	out, err := sma.Compute(data)
	require.NoError(t, err)
	assert.Equal(t, 0, countDefined(out["sma_20"]))
}

func TestSMA_Compute_ExactPeriod(t *testing.T) {
	sma := NewSMA(5)
	data := generateTestData(5)

	out, err := sma.Compute(data)
	require.NoError(t, err)

	// Calculate expected SMA manually
	expectedSum := 0.0
	for _, d := range data {
		expectedSum += d.Close
	}
	expectedSMA := expectedSum / 5.0

	assert.InDelta(t, expectedSMA, out["sma_5"][4], 0.0001)
	assert.True(t, math.IsNaN(out["sma_5"][3]))
}

func TestSMA_Compute_RollingWindow(t *testing.T) {
	sma := NewSMA(5)
	data := generateTestData(10)

	out, err := sma.Compute(data)
	require.NoError(t, err)

	// Should use only the last 5 values
	expectedSum := 0.0
	for i := 5; i < 10; i++ {
		expectedSum += data[i].Close
	}
	assert.InDelta(t, expectedSum/5.0, out["sma_5"][9], 0.0001)
	assert.Equal(t, 6, countDefined(out["sma_5"]))
}

func TestSMA_Compute_ConsistentValues(t *testing.T) {
	sma := NewSMA(5)
	out, err := sma.Compute(generateFlatData(10))
	require.NoError(t, err)

	assert.InDelta(t, 100.0, lastValue(out["sma_5"]), 0.0001)
}

func TestSMASeries_RestartsAfterUndefined(t *testing.T) {
	values := []float64{1, 2, math.NaN(), 3, 4, 5}
	out := smaSeries(values, 2)

	assert.InDelta(t, 1.5, out[1], 1e-9)
	assert.True(t, math.IsNaN(out[2]))
	assert.True(t, math.IsNaN(out[3]))
	assert.InDelta(t, 3.5, out[4], 1e-9)
	assert.InDelta(t, 4.5, out[5], 1e-9)
}

func TestEMA_Compute_SeededWithSMA(t *testing.T) {
	ema := NewEMA(3)
	data := generateFlatData(5)
	data[0].Close, data[1].Close, data[2].Close = 1, 2, 3
	data[3].Close, data[4].Close = 4, 5

	out, err := ema.Compute(data)
	require.NoError(t, err)

	values := out["ema_3"]
	assert.True(t, math.IsNaN(values[1]))
	assert.InDelta(t, 2.0, values[2], 1e-9) // SMA seed
	assert.InDelta(t, 3.0, values[3], 1e-9) // 4*0.5 + 2*0.5
	assert.InDelta(t, 4.0, values[4], 1e-9)
}

func TestRollingMedian(t *testing.T) {
	out := RollingMedian([]float64{5, 1, 3, 10, 2}, 3)

	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 3.0, out[2])
	assert.Equal(t, 3.0, out[3])
	assert.Equal(t, 3.0, out[4])
}
