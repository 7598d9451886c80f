package correlate

import (
	"context"
	"math"
	"sort"

	"nomen/domain/core"
	"nomen/domain/feature"
	domainstats "nomen/domain/stats"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the significance threshold used when none is configured.
const DefaultAlpha = 0.05

// DefaultMinSampleSize is the sample size below which the engine warns but
// still proceeds.
const DefaultMinSampleSize = 30

// Options configures the correlation engine.
type Options struct {
	Alpha         float64
	MinSampleSize int
	Concurrency   int // feature columns evaluated in parallel; 0 means 4
}

// Engine computes per-feature Pearson correlation against an outcome vector
// with two-tailed p-values and Benjamini-Hochberg FDR correction across the
// feature family.
type Engine struct {
	alpha       float64
	minN        int
	concurrency int
}

// NewEngine creates a correlation engine. Zero-valued options take defaults.
func NewEngine(opts Options) *Engine {
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = DefaultAlpha
	}
	if opts.MinSampleSize <= 0 {
		opts.MinSampleSize = DefaultMinSampleSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Engine{
		alpha:       opts.Alpha,
		minN:        opts.MinSampleSize,
		concurrency: opts.Concurrency,
	}
}

// Alpha returns the configured significance threshold.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// MinSampleSize returns the configured warning threshold.
func (e *Engine) MinSampleSize() int {
	return e.minN
}

// SweepSummary counts what happened during a sweep, for the run manifest.
type SweepSummary struct {
	TestsRun     int                             `json:"tests_run"`
	TestsSkipped int                             `json:"tests_skipped"`
	SkipReasons  map[domainstats.WarningCode]int `json:"skip_reasons,omitempty"`
	Warnings     map[domainstats.WarningCode]int `json:"warnings,omitempty"`
}

// Sweep correlates every feature column against the outcome vector. Results
// come back in column order; zero-variance columns are skipped and counted.
// A sample below MinSampleSize logs a warning and proceeds with a LOW_N tag
// on every result rather than failing.
func (e *Engine) Sweep(ctx context.Context, matrix *feature.Matrix, outcomes []float64) ([]domainstats.CorrelationResult, *SweepSummary, error) {
	if matrix.RowCount() != len(outcomes) {
		return nil, nil, core.NewLengthMismatchError(matrix.RowCount(), len(outcomes))
	}
	if matrix.RowCount() < 3 {
		return nil, nil, core.ErrInsufficientData
	}

	log := zerolog.Ctx(ctx)
	lowN := matrix.RowCount() < e.minN
	if lowN {
		log.Warn().
			Int("n", matrix.RowCount()).
			Int("min_n", e.minN).
			Msg("sample below minimum size, proceeding anyway")
	}

	cols := matrix.ColumnCount()
	perColumn := make([]*domainstats.CorrelationResult, cols)
	skips := make([]domainstats.WarningCode, cols)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := 0; i < cols; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, skip, err := e.correlateColumn(matrix.FeatureKeys[i], matrix.Column(i), outcomes)
			if err != nil {
				return err
			}
			if skip != "" {
				skips[i] = skip
				return nil
			}
			if lowN {
				result.AddWarning(domainstats.WarningLowN)
			}
			perColumn[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := &SweepSummary{
		SkipReasons: make(map[domainstats.WarningCode]int),
		Warnings:    make(map[domainstats.WarningCode]int),
	}

	results := make([]domainstats.CorrelationResult, 0, cols)
	for i, r := range perColumn {
		if r == nil {
			summary.TestsSkipped++
			summary.SkipReasons[skips[i]]++
			continue
		}
		summary.TestsRun++
		for _, w := range r.Warnings {
			summary.Warnings[w]++
		}
		results = append(results, *r)
	}

	applyFDRCorrection(results)
	return results, summary, nil
}

// correlateColumn computes Pearson r and a two-tailed p-value for one
// feature column. Returns a skip reason instead of a result when the column
// cannot be tested.
func (e *Engine) correlateColumn(key core.FeatureKey, col, outcomes []float64) (*domainstats.CorrelationResult, domainstats.WarningCode, error) {
	x, y := dropUnpaired(col, outcomes)
	n := len(x)
	if n < 3 {
		return nil, domainstats.WarningLowN, nil
	}

	if isConstant(x) || isConstant(y) {
		return nil, domainstats.WarningZeroVariance, nil
	}

	r, err := stats.Pearson(x, y)
	if err != nil || math.IsNaN(r) {
		return nil, domainstats.WarningZeroVariance, nil
	}

	pValue := pearsonPValue(r, n)

	result, err := domainstats.NewCorrelationResult(key, domainstats.TestPearson, r, pValue, n, e.alpha)
	if err != nil {
		return nil, "", err
	}
	if math.Abs(r) >= 1.0 {
		result.AddWarning(domainstats.WarningPerfectCorrelation)
	}
	return result, "", nil
}

// pearsonPValue converts r to a two-tailed p-value via the Student's t
// distribution with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	df := float64(n - 2)
	if df <= 0 {
		return 1.0
	}
	if math.Abs(r) >= 1.0 {
		return 0.0
	}

	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - tDist.CDF(math.Abs(t)))
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// applyFDRCorrection fills QValue using Benjamini-Hochberg across the
// feature family: q_i = p_i * m / rank_i, clamped to [0, 1].
func applyFDRCorrection(results []domainstats.CorrelationResult) {
	m := len(results)
	if m == 0 {
		return
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return results[order[a]].PValue < results[order[b]].PValue
	})

	for rank, idx := range order {
		q := results[idx].PValue * float64(m) / float64(rank+1)
		if q > 1.0 {
			q = 1.0
		}
		results[idx].QValue = q
	}
}

// dropUnpaired removes rows where either side is NaN or infinite.
func dropUnpaired(x, y []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(x))
	outY := make([]float64, 0, len(y))
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isConstant(data []float64) bool {
	for i := 1; i < len(data); i++ {
		if data[i] != data[0] {
			return false
		}
	}
	return true
}
