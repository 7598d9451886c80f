package extract

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"nomen/domain/core"
	"nomen/domain/feature"
	"nomen/internal/errors"
)

// Extractor converts entity names into fixed-length numeric feature vectors.
// Fitting captures corpus-level statistics (vocabulary document frequency,
// mean name length); after fitting, Transform is a pure function of the name,
// the configuration, and the fitted state.
type Extractor struct {
	cfg   feature.Config
	keys  []core.FeatureKey
	state CorpusState
}

// CorpusState holds the statistics captured by Fit. Exported for pipeline
// persistence; identical state + config guarantees identical vectors.
type CorpusState struct {
	Fitted       bool            `json:"fitted"`
	CorpusSize   int             `json:"corpus_size"`
	TokenDocFreq map[string]int  `json:"token_doc_freq,omitempty"`
	MeanNameLen  float64         `json:"mean_name_len"`
	CorpusHash   core.CorpusHash `json:"corpus_hash,omitempty"`
}

// New creates an extractor for the given configuration. Unknown categories
// fail here, before any data is touched.
func New(cfg feature.Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid extractor configuration")
	}
	return &Extractor{
		cfg:  cfg,
		keys: featureKeys(cfg),
	}, nil
}

// featureKeys derives the ordered feature columns for a configuration.
// Canonical category order keeps column order independent of how the caller
// listed categories.
func featureKeys(cfg feature.Config) []core.FeatureKey {
	var keys []core.FeatureKey
	for _, cat := range feature.AllCategories() {
		if !cfg.Has(cat) {
			continue
		}
		switch cat {
		case feature.CategoryPhonetic:
			keys = append(keys,
				"plosive_count", "sibilant_count", "liquid_count",
				"harshness", "melodiousness")
		case feature.CategoryVowel:
			keys = append(keys, "vowel_density", "syllable_count")
		case feature.CategoryLength:
			keys = append(keys, "name_length", "token_count")
		case feature.CategoryRarity:
			keys = append(keys, "rarity")
		case feature.CategorySemantic:
			for _, field := range semanticFieldNames() {
				keys = append(keys, core.FeatureKey("semantic_"+field))
			}
		}
	}
	return keys
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() feature.Config {
	return e.cfg
}

// FeatureKeys returns the ordered feature columns this extractor produces.
func (e *Extractor) FeatureKeys() []core.FeatureKey {
	return e.keys
}

// State returns the fitted corpus state.
func (e *Extractor) State() CorpusState {
	return e.state
}

// Restore rebuilds an extractor from persisted config + state.
func Restore(cfg feature.Config, state CorpusState) (*Extractor, error) {
	ex, err := New(cfg)
	if err != nil {
		return nil, err
	}
	ex.state = state
	return ex, nil
}

// Fingerprint identifies the fitted extractor: same config + same corpus
// means the same fingerprint and therefore identical Transform output.
func (e *Extractor) Fingerprint() core.Hash {
	return core.NewHash([]byte(fmt.Sprintf("%s|%s", e.cfg.Hash(), e.state.CorpusHash)))
}

// Fit captures corpus statistics from the full set of entity names.
func (e *Extractor) Fit(names []string) error {
	if len(names) == 0 {
		return core.ErrEmptyCorpus
	}

	docFreq := make(map[string]int)
	totalLen := 0.0
	for _, name := range names {
		totalLen += float64(len([]rune(name)))
		seen := make(map[string]bool)
		for _, tok := range tokenize(name) {
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}

	e.state = CorpusState{
		Fitted:       true,
		CorpusSize:   len(names),
		TokenDocFreq: docFreq,
		MeanNameLen:  totalLen / float64(len(names)),
		CorpusHash:   core.ComputeCorpusHash(names),
	}
	return nil
}

// Transform derives the feature vector for one name. The extractor must be
// fitted first.
func (e *Extractor) Transform(name string) (feature.Vector, error) {
	if !e.state.Fitted {
		return feature.Vector{}, core.ErrNotFitted
	}

	values := make([]float64, 0, len(e.keys))
	for _, cat := range feature.AllCategories() {
		if !e.cfg.Has(cat) {
			continue
		}
		switch cat {
		case feature.CategoryPhonetic:
			values = append(values, phoneticFeatures(name)...)
		case feature.CategoryVowel:
			values = append(values, vowelFeatures(name)...)
		case feature.CategoryLength:
			values = append(values, lengthFeatures(name)...)
		case feature.CategoryRarity:
			values = append(values, e.rarity(name))
		case feature.CategorySemantic:
			values = append(values, semanticFeatures(name)...)
		}
	}

	return feature.Vector{Name: name, Keys: e.keys, Values: values}, nil
}

// TransformAll derives the feature matrix for a corpus, row per name.
func (e *Extractor) TransformAll(names []string) (*feature.Matrix, error) {
	matrix := feature.NewMatrix(e.keys, len(names))
	for _, name := range names {
		vec, err := e.Transform(name)
		if err != nil {
			return nil, err
		}
		if err := matrix.Append(vec.Values); err != nil {
			return nil, err
		}
	}
	return matrix, nil
}

// ---- feature computations ----

func phoneticFeatures(name string) []float64 {
	lower := strings.ToLower(name)

	var plosiveCount, sibilantCount, liquidCount, vowelCount, letterCount float64
	for _, r := range lower {
		if !unicode.IsLetter(r) {
			continue
		}
		letterCount++
		switch {
		case plosives[r]:
			plosiveCount++
		case sibilants[r]:
			sibilantCount++
		case liquids[r]:
			liquidCount++
		case vowels[r]:
			vowelCount++
		}
	}

	// Digraphs read as a single sound; credit them on top of the per-letter
	// pass so "sh" outranks a lone "s".
	for _, d := range sibilantDigraphs {
		sibilantCount += float64(strings.Count(lower, d))
	}
	for _, d := range plosiveDigraphs {
		plosiveCount += float64(strings.Count(lower, d))
	}

	harshness := 0.0
	if letterCount > 0 {
		harshness = (plosiveCount + sibilantCount) / letterCount
	}

	// Balance of soft sounds against hard ones; 0.5 when the name carries
	// neither (divide-by-zero default).
	melodiousness := 0.5
	if soft, hard := vowelCount+liquidCount, plosiveCount+sibilantCount; soft+hard > 0 {
		melodiousness = soft / (soft + hard)
	}

	return []float64{plosiveCount, sibilantCount, liquidCount, harshness, melodiousness}
}

func vowelFeatures(name string) []float64 {
	lower := strings.ToLower(name)

	var vowelCount, letterCount float64
	for _, r := range lower {
		if unicode.IsLetter(r) {
			letterCount++
			if vowels[r] {
				vowelCount++
			}
		}
	}

	density := 0.0
	if letterCount > 0 {
		density = vowelCount / letterCount
	}

	return []float64{density, float64(countSyllables(lower))}
}

// countSyllables approximates syllables by counting vowel runs, minimum one
// per token with at least one letter.
func countSyllables(lower string) int {
	total := 0
	for _, tok := range strings.Fields(lower) {
		runs := 0
		inRun := false
		hasLetter := false
		for _, r := range tok {
			if unicode.IsLetter(r) {
				hasLetter = true
			}
			if vowels[r] {
				if !inRun {
					runs++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
		if runs == 0 && hasLetter {
			runs = 1
		}
		total += runs
	}
	return total
}

func lengthFeatures(name string) []float64 {
	letters := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return []float64{float64(letters), float64(len(strings.Fields(name)))}
}

// rarity scores a name by the mean inverse document frequency of its tokens
// against the fitted corpus. Tokens never seen during Fit score highest.
func (e *Extractor) rarity(name string) float64 {
	toks := tokenize(name)
	if len(toks) == 0 {
		return 0
	}

	n := float64(e.state.CorpusSize)
	sum := 0.0
	for _, tok := range toks {
		df := float64(e.state.TokenDocFreq[tok])
		sum += math.Log((1 + n) / (1 + df))
	}
	return sum / float64(len(toks))
}

func semanticFeatures(name string) []float64 {
	lower := strings.ToLower(name)
	values := make([]float64, 0, len(semanticFields))
	for _, field := range semanticFieldNames() {
		hits := 0.0
		for _, kw := range semanticFields[field] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		values = append(values, hits)
	}
	return values
}

// tokenize lowercases and splits a name into letter-only tokens.
func tokenize(name string) []string {
	lower := strings.ToLower(name)
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			toks = append(toks, t)
		}
	}
	return toks
}
