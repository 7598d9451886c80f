package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nomen/domain/core"
	domainreport "nomen/domain/report"
	"nomen/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []stats.CorrelationResult {
	return []stats.CorrelationResult{
		{FeatureKey: "vowel_density", TestType: stats.TestPearson, R: 0.12, PValue: 0.40, QValue: 0.60, N: 50, Alpha: 0.05, Signal: stats.SignalWeak},
		{FeatureKey: "harshness", TestType: stats.TestPearson, R: -0.72, PValue: 0.001, QValue: 0.003, N: 50, Alpha: 0.05, Significant: true, Signal: stats.SignalStrong},
		{FeatureKey: "rarity", TestType: stats.TestPearson, R: 0.35, PValue: 0.02, QValue: 0.03, N: 50, Alpha: 0.05, Significant: true, Signal: stats.SignalModerate},
	}
}

func TestAssembleRanksByAbsoluteR(t *testing.T) {
	a := NewAssembler(0.05)
	rep := a.Assemble(core.RunID("run-1"), "test.csv", sampleResults(), nil)

	require.Len(t, rep.Results, 3)
	assert.Equal(t, core.FeatureKey("harshness"), rep.Results[0].FeatureKey)
	assert.Equal(t, core.FeatureKey("rarity"), rep.Results[1].FeatureKey)
	assert.Equal(t, core.FeatureKey("vowel_density"), rep.Results[2].FeatureKey)
}

func TestAssembleTiesBreakByFeatureKey(t *testing.T) {
	results := []stats.CorrelationResult{
		{FeatureKey: "zeta", R: 0.5, N: 10},
		{FeatureKey: "alpha", R: -0.5, N: 10},
	}

	rep := NewAssembler(0.05).Assemble(core.RunID("run-1"), "src", results, nil)
	assert.Equal(t, core.FeatureKey("alpha"), rep.Results[0].FeatureKey)
}

func TestInterpretationMentionsTopFeature(t *testing.T) {
	rep := NewAssembler(0.05).Assemble(core.RunID("run-1"), "src", sampleResults(), nil)

	assert.Contains(t, rep.Interpretation, "harshness")
	assert.Contains(t, rep.Interpretation, "strong")
	assert.Contains(t, rep.Interpretation, "negative")
	assert.Contains(t, rep.Interpretation, "Benjamini-Hochberg")
}

func TestInterpretationEmptyResults(t *testing.T) {
	rep := NewAssembler(0.05).Assemble(core.RunID("run-1"), "src", nil, nil)
	assert.Contains(t, rep.Interpretation, "No testable features")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "report.json")

	a := NewAssembler(0.05)
	rep := a.Assemble(core.RunID("run-1"), "test.csv", sampleResults(), nil)
	require.NoError(t, a.Write(rep, domainreport.FormatJSON, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domainreport.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rep.RunID, decoded.RunID)
	assert.Len(t, decoded.Results, 3)
	assert.Equal(t, rep.Results[0].FeatureKey, decoded.Results[0].FeatureKey)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")

	a := NewAssembler(0.05)
	rep := a.Assemble(core.RunID("run-1"), "test.csv", sampleResults(), nil)
	require.NoError(t, a.Write(rep, domainreport.FormatCSV, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 rows
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "harshness", records[1][0])
	assert.Equal(t, "true", records[1][6])
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	a := NewAssembler(0.05)
	rep := a.Assemble(core.RunID("run-1"), "test.csv", sampleResults(), nil)
	require.NoError(t, a.Write(rep, domainreport.FormatXLSX, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "feature_key", rows[0][0])
	assert.Equal(t, "harshness", rows[1][0])
}

func TestWriteMarkdownAndHTML(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(0.05)

	div := &stats.DiversitySummary{TotalCount: 100, UniqueNames: 3, ShannonEntropy: 1.4855, HHI: 3800, Gini: 0.62, EffectiveNames: 2.8}
	rep := a.Assemble(core.RunID("run-1"), "test.csv", sampleResults(), div)

	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, a.Write(rep, domainreport.FormatMarkdown, mdPath))
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "| 1 | harshness |")
	assert.Contains(t, string(md), "Shannon entropy")

	htmlPath := filepath.Join(dir, "report.html")
	require.NoError(t, a.Write(rep, domainreport.FormatHTML, htmlPath))
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "<table>") || strings.Contains(string(html), "<h1"))
}

func TestWriteUnsupportedFormat(t *testing.T) {
	a := NewAssembler(0.05)
	rep := a.Assemble(core.RunID("run-1"), "src", sampleResults(), nil)
	err := a.Write(rep, domainreport.Format("pickle"), filepath.Join(t.TempDir(), "report.pickle"))
	assert.Error(t, err)
}
