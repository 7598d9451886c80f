package diversity

import (
	"math"

	"nomen/domain/core"
	"nomen/domain/stats"
)

// ShannonEntropy computes entropy in bits over a name-frequency
// distribution. A uniform distribution over n names yields log2(n).
func ShannonEntropy(counts map[string]int) float64 {
	total := totalCount(counts)
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range counts {
		if count <= 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// HHI computes the Herfindahl-Hirschman index on percentage shares: a
// single-name monopoly scores 10000, a uniform distribution over n names
// scores 10000/n.
func HHI(counts map[string]int) float64 {
	total := totalCount(counts)
	if total == 0 {
		return 0
	}

	hhi := 0.0
	for _, count := range counts {
		share := 100.0 * float64(count) / float64(total)
		hhi += share * share
	}
	return hhi
}

// GiniImpurity computes 1 - sum(p_i^2) over the distribution: 0 for a
// monopoly, approaching 1 as names spread evenly.
func GiniImpurity(counts map[string]int) float64 {
	total := totalCount(counts)
	if total == 0 {
		return 0
	}

	sumSquares := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		sumSquares += p * p
	}
	return 1.0 - sumSquares
}

// Summarize computes the full diversity summary for a name-frequency
// distribution.
func Summarize(counts map[string]int) (*stats.DiversitySummary, error) {
	total := totalCount(counts)
	if total == 0 {
		return nil, core.ErrEmptyCorpus
	}

	entropy := ShannonEntropy(counts)
	unique := 0
	for _, count := range counts {
		if count > 0 {
			unique++
		}
	}

	return &stats.DiversitySummary{
		TotalCount:     total,
		UniqueNames:    unique,
		ShannonEntropy: entropy,
		HHI:            HHI(counts),
		Gini:           GiniImpurity(counts),
		EffectiveNames: math.Exp2(entropy),
	}, nil
}

func totalCount(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		if count > 0 {
			total += count
		}
	}
	return total
}
