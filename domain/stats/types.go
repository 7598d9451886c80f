package stats

import (
	"fmt"
	"math"

	"nomen/domain/core"
)

// TestType defines the statistical test performed
type TestType string

const (
	TestPearson  TestType = "pearson"  // Pearson correlation
	TestSpearman TestType = "spearman" // Spearman rank correlation
)

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningLowN               WarningCode = "LOW_N"               // Sample size below configured minimum
	WarningZeroVariance       WarningCode = "ZERO_VARIANCE"       // Feature column has no variance
	WarningPerfectCorrelation WarningCode = "PERFECT_CORRELATION" // r = ±1.0 (likely derived feature)
)

// Signal classifies effect strength into interpretation bands
type Signal string

const (
	SignalWeak       Signal = "weak"
	SignalModerate   Signal = "moderate"
	SignalStrong     Signal = "strong"
	SignalVeryStrong Signal = "very_strong"
)

// ClassifySignal maps |r| and p-value into an interpretation band.
// A non-significant result is always "weak" regardless of magnitude.
func ClassifySignal(r, pValue, alpha float64) Signal {
	if pValue > alpha {
		return SignalWeak
	}
	absR := math.Abs(r)
	switch {
	case absR > 0.8:
		return SignalVeryStrong
	case absR > 0.6:
		return SignalStrong
	case absR > 0.3:
		return SignalModerate
	default:
		return SignalWeak
	}
}

// CorrelationResult captures the association between one feature column and
// the outcome vector.
// INVARIANTS:
// - N always present and > 0
// - PValue always present (0.0 to 1.0)
// - Significant == (PValue < Alpha) for the alpha the engine ran with
type CorrelationResult struct {
	FeatureKey  core.FeatureKey `json:"feature_key"`
	TestType    TestType        `json:"test_type"`
	R           float64         `json:"r"`
	PValue      float64         `json:"p_value"`
	QValue      float64         `json:"q_value,omitempty"` // BH-corrected q-value
	N           int             `json:"n"`
	Alpha       float64         `json:"alpha"`
	Significant bool            `json:"significant"`
	Signal      Signal          `json:"signal"`
	Warnings    []WarningCode   `json:"warnings,omitempty"`
}

// NewCorrelationResult creates a validated correlation result. Significance
// is derived from p-value and alpha, never set independently.
func NewCorrelationResult(key core.FeatureKey, test TestType, r, pValue float64, n int, alpha float64) (*CorrelationResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be > 0, got %d", n)
	}
	if pValue < 0.0 || pValue > 1.0 {
		return nil, fmt.Errorf("p-value must be in [0.0, 1.0], got %f", pValue)
	}
	if key == "" {
		return nil, fmt.Errorf("feature key must be set")
	}

	return &CorrelationResult{
		FeatureKey:  key,
		TestType:    test,
		R:           r,
		PValue:      pValue,
		N:           n,
		Alpha:       alpha,
		Significant: pValue < alpha,
		Signal:      ClassifySignal(r, pValue, alpha),
	}, nil
}

// AddWarning appends a structured warning code.
func (r *CorrelationResult) AddWarning(code WarningCode) {
	r.Warnings = append(r.Warnings, code)
}

// DiversitySummary holds concentration statistics over a name-frequency
// distribution.
type DiversitySummary struct {
	TotalCount     int     `json:"total_count"`
	UniqueNames    int     `json:"unique_names"`
	ShannonEntropy float64 `json:"shannon_entropy"` // bits
	HHI            float64 `json:"hhi"`             // 0..10000
	Gini           float64 `json:"gini"`            // 0..1
	EffectiveNames float64 `json:"effective_names"` // 2^entropy
}
