package correlate

import (
	"context"
	"math"
	"testing"

	"nomen/domain/core"
	"nomen/domain/feature"
	domainstats "nomen/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixFromColumns(keys []core.FeatureKey, cols ...[]float64) *feature.Matrix {
	n := len(cols[0])
	m := feature.NewMatrix(keys, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		if err := m.Append(row); err != nil {
			panic(err)
		}
	}
	return m
}

func TestSweepLengthMismatch(t *testing.T) {
	m := matrixFromColumns([]core.FeatureKey{"a"}, []float64{1, 2, 3})
	_, _, err := NewEngine(Options{}).Sweep(context.Background(), m, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestSweepInsufficientData(t *testing.T) {
	m := matrixFromColumns([]core.FeatureKey{"a"}, []float64{1, 2})
	_, _, err := NewEngine(Options{}).Sweep(context.Background(), m, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

// TestPearsonReferenceFixture pins r and the two-tailed p-value against
// values from scipy.stats.pearsonr on the same data.
func TestPearsonReferenceFixture(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 2, 3, 4, 3}

	m := matrixFromColumns([]core.FeatureKey{"x"}, x)
	results, summary, err := NewEngine(Options{MinSampleSize: 3}).Sweep(context.Background(), m, y)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, summary.TestsRun)

	// scipy.stats.pearsonr([1,2,3,4,5], [1,2,3,4,3]) -> (0.8320502943..., 0.0805054...)
	assert.InDelta(t, 6.0/math.Sqrt(52.0), results[0].R, 1e-12)
	assert.InDelta(t, 0.080505, results[0].PValue, 1e-4)
	assert.Equal(t, 5, results[0].N)
	assert.False(t, results[0].Significant)
}

func TestPerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	m := matrixFromColumns([]core.FeatureKey{"x"}, x)
	results, _, err := NewEngine(Options{MinSampleSize: 3}).Sweep(context.Background(), m, y)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.InDelta(t, 1.0, results[0].R, 1e-12)
	assert.Equal(t, 0.0, results[0].PValue)
	assert.True(t, results[0].Significant)
	assert.Contains(t, results[0].Warnings, domainstats.WarningPerfectCorrelation)
}

// TestSignificanceInvariant checks Significant == (PValue < Alpha) across a
// sweep with mixed-strength columns.
func TestSignificanceInvariant(t *testing.T) {
	outcome := []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}
	strong := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	noisy := []float64{5, 1, 4, 2, 9, 3, 8, 2, 7, 1}

	m := matrixFromColumns([]core.FeatureKey{"strong", "noisy"}, strong, noisy)
	engine := NewEngine(Options{Alpha: 0.05, MinSampleSize: 3})
	results, _, err := engine.Sweep(context.Background(), m, outcome)
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, r.PValue < engine.Alpha(), r.Significant, "feature %s", r.FeatureKey)
		assert.GreaterOrEqual(t, r.PValue, 0.0)
		assert.LessOrEqual(t, r.PValue, 1.0)
	}
}

// TestLowSampleWarnsAndProceeds verifies the below-threshold behavior: no
// hard failure, results tagged LOW_N.
func TestLowSampleWarnsAndProceeds(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 3, 2, 5, 4}

	m := matrixFromColumns([]core.FeatureKey{"x"}, x)
	results, summary, err := NewEngine(Options{MinSampleSize: 30}).Sweep(context.Background(), m, y)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, results[0].Warnings, domainstats.WarningLowN)
	assert.Equal(t, 1, summary.Warnings[domainstats.WarningLowN])
}

func TestZeroVarianceColumnSkipped(t *testing.T) {
	outcome := []float64{1, 2, 3, 4, 5}
	flat := []float64{7, 7, 7, 7, 7}
	varying := []float64{2, 1, 4, 3, 6}

	m := matrixFromColumns([]core.FeatureKey{"flat", "varying"}, flat, varying)
	results, summary, err := NewEngine(Options{MinSampleSize: 3}).Sweep(context.Background(), m, outcome)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.FeatureKey("varying"), results[0].FeatureKey)
	assert.Equal(t, 1, summary.TestsSkipped)
	assert.Equal(t, 1, summary.SkipReasons[domainstats.WarningZeroVariance])
}

func TestNaNRowsDropped(t *testing.T) {
	outcome := []float64{1, 2, 3, 4, 5, 6}
	col := []float64{2, math.NaN(), 6, 8, 10, 12}

	m := matrixFromColumns([]core.FeatureKey{"x"}, col)
	results, _, err := NewEngine(Options{MinSampleSize: 3}).Sweep(context.Background(), m, outcome)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].N)
}

// TestFDRCorrection verifies BH q-values: q = p*m/rank, never below p for
// rank < m, clamped to 1, and equal to p for the single-test family.
func TestFDRCorrection(t *testing.T) {
	results := []domainstats.CorrelationResult{
		{FeatureKey: "a", PValue: 0.01},
		{FeatureKey: "b", PValue: 0.04},
		{FeatureKey: "c", PValue: 0.90},
	}
	applyFDRCorrection(results)

	assert.InDelta(t, 0.03, results[0].QValue, 1e-12) // 0.01 * 3/1
	assert.InDelta(t, 0.06, results[1].QValue, 1e-12) // 0.04 * 3/2
	assert.InDelta(t, 0.90, results[2].QValue, 1e-12) // 0.90 * 3/3

	single := []domainstats.CorrelationResult{{FeatureKey: "only", PValue: 0.2}}
	applyFDRCorrection(single)
	assert.InDelta(t, 0.2, single[0].QValue, 1e-12)
}

// TestSweepDeterministicOrder checks results come back in column order even
// though columns run concurrently.
func TestSweepDeterministicOrder(t *testing.T) {
	outcome := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	cols := [][]float64{
		{8, 7, 6, 5, 4, 3, 2, 1},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{2, 1, 4, 3, 6, 5, 8, 7},
	}
	keys := []core.FeatureKey{"c0", "c1", "c2"}

	m := matrixFromColumns(keys, cols...)
	engine := NewEngine(Options{MinSampleSize: 3, Concurrency: 3})

	first, _, err := engine.Sweep(context.Background(), m, outcome)
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, _, err := engine.Sweep(context.Background(), m, outcome)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	for i, r := range first {
		assert.Equal(t, keys[i], r.FeatureKey)
	}
}
