package diversity

import (
	"fmt"
	"math"
	"testing"

	"nomen/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShannonEntropyUniform verifies entropy of a uniform distribution over
// n categories equals log2(n).
func TestShannonEntropyUniform(t *testing.T) {
	for _, n := range []int{2, 4, 8, 100} {
		counts := make(map[string]int, n)
		for i := 0; i < n; i++ {
			counts[fmt.Sprintf("name-%d", i)] = 7
		}
		assert.InDelta(t, math.Log2(float64(n)), ShannonEntropy(counts), 1e-12, "n=%d", n)
	}
}

func TestShannonEntropyMonopoly(t *testing.T) {
	assert.Equal(t, 0.0, ShannonEntropy(map[string]int{"Only": 42}))
}

// TestHHIBounds verifies the two reference points: monopoly = 10000 and
// uniform over n = 10000/n.
func TestHHIBounds(t *testing.T) {
	assert.InDelta(t, 10000.0, HHI(map[string]int{"Only": 13}), 1e-9)

	for _, n := range []int{2, 5, 10, 50} {
		counts := make(map[string]int, n)
		for i := 0; i < n; i++ {
			counts[fmt.Sprintf("name-%d", i)] = 3
		}
		assert.InDelta(t, 10000.0/float64(n), HHI(counts), 1e-9, "n=%d", n)
	}
}

// TestExampleScenario pins the worked example: {"Alice": 50, "Bob": 30,
// "Carol": 20} gives entropy ~1.485 bits and HHI = 50^2+30^2+20^2 = 3800.
func TestExampleScenario(t *testing.T) {
	counts := map[string]int{"Alice": 50, "Bob": 30, "Carol": 20}

	assert.InDelta(t, 1.4855, ShannonEntropy(counts), 1e-4)
	assert.InDelta(t, 3800.0, HHI(counts), 1e-9)
}

func TestGiniImpurity(t *testing.T) {
	assert.Equal(t, 0.0, GiniImpurity(map[string]int{"Only": 10}))

	uniform := map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}
	assert.InDelta(t, 0.75, GiniImpurity(uniform), 1e-12)
}

func TestSummarize(t *testing.T) {
	counts := map[string]int{"Alice": 50, "Bob": 30, "Carol": 20}

	summary, err := Summarize(counts)
	require.NoError(t, err)

	assert.Equal(t, 100, summary.TotalCount)
	assert.Equal(t, 3, summary.UniqueNames)
	assert.InDelta(t, 3800.0, summary.HHI, 1e-9)
	assert.InDelta(t, math.Exp2(summary.ShannonEntropy), summary.EffectiveNames, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(map[string]int{})
	assert.ErrorIs(t, err, core.ErrEmptyCorpus)

	_, err = Summarize(map[string]int{"ghost": 0})
	assert.ErrorIs(t, err, core.ErrEmptyCorpus)
}
