package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nomen/domain/core"
	domainreport "nomen/domain/report"
	"nomen/domain/stats"
	"nomen/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// Assembler ranks correlation results, renders the natural-language
// interpretation, and serializes reports. Reports are written once and never
// mutated.
type Assembler struct {
	alpha float64
}

// NewAssembler creates a report assembler using alpha for interpretation
// wording (which results count as significant).
func NewAssembler(alpha float64) *Assembler {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}
	return &Assembler{alpha: alpha}
}

// Assemble builds a report from sweep output: results ranked by |r|
// descending (ties broken by feature key for stable output) plus a templated
// interpretation.
func (a *Assembler) Assemble(runID core.RunID, source string, results []stats.CorrelationResult, div *stats.DiversitySummary) *domainreport.Report {
	ranked := make([]stats.CorrelationResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := math.Abs(ranked[i].R), math.Abs(ranked[j].R)
		if ri != rj {
			return ri > rj
		}
		return ranked[i].FeatureKey < ranked[j].FeatureKey
	})

	return &domainreport.Report{
		ID:             core.ReportID(core.NewID()),
		RunID:          runID,
		Source:         source,
		Results:        ranked,
		Diversity:      div,
		Interpretation: a.interpret(ranked),
		CreatedAt:      core.Now(),
	}
}

// interpret renders the templated narrative for the ranked results.
func (a *Assembler) interpret(ranked []stats.CorrelationResult) string {
	if len(ranked) == 0 {
		return "No testable features were found in this cohort."
	}

	significant := 0
	for _, r := range ranked {
		if r.Significant {
			significant++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tested %d features; %d reached significance at alpha=%.2g.", len(ranked), significant, a.alpha)

	top := ranked[0]
	direction := "positive"
	if top.R < 0 {
		direction = "negative"
	}
	switch top.Signal {
	case stats.SignalWeak:
		fmt.Fprintf(&b, " The strongest association, %s, is only %s (r=%.3f, p=%.3f).",
			top.FeatureKey, top.Signal, top.R, top.PValue)
	default:
		fmt.Fprintf(&b, " %s shows a %s %s association with the outcome (r=%.3f, p=%.3f, q=%.3f).",
			top.FeatureKey, top.Signal, direction, top.R, top.PValue, top.QValue)
	}

	if significant > 0 {
		fmt.Fprintf(&b, " Q-values carry the Benjamini-Hochberg correction across all %d tests.", len(ranked))
	}
	return b.String()
}

// Write serializes the report to the given path, creating parent directories
// as needed.
func (a *Assembler) Write(rep *domainreport.Report, format domainreport.Format, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.IOError("failed to create report directory", err)
		}
	}

	switch format {
	case domainreport.FormatJSON:
		return a.writeJSON(rep, path)
	case domainreport.FormatCSV:
		return a.writeCSV(rep, path)
	case domainreport.FormatXLSX:
		return a.writeXLSX(rep, path)
	case domainreport.FormatMarkdown:
		return a.writeMarkdown(rep, path)
	case domainreport.FormatHTML:
		return a.writeHTML(rep, path)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported report format: %s", format))
	}
}

func (a *Assembler) writeJSON(rep *domainreport.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.IOError("failed to write JSON report", err)
	}
	return nil
}

var csvHeader = []string{"feature_key", "test_type", "r", "p_value", "q_value", "n", "significant", "signal", "warnings"}

func (a *Assembler) writeCSV(rep *domainreport.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.IOError("failed to create CSV report", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.IOError("failed to write CSV header", err)
	}
	for _, r := range rep.Results {
		record := []string{
			r.FeatureKey.String(),
			string(r.TestType),
			strconv.FormatFloat(r.R, 'g', -1, 64),
			strconv.FormatFloat(r.PValue, 'g', -1, 64),
			strconv.FormatFloat(r.QValue, 'g', -1, 64),
			strconv.Itoa(r.N),
			strconv.FormatBool(r.Significant),
			string(r.Signal),
			joinWarnings(r.Warnings),
		}
		if err := w.Write(record); err != nil {
			return errors.IOError("failed to write CSV row", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (a *Assembler) writeXLSX(rep *domainreport.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, name := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "failed to write XLSX header")
		}
	}
	for i, r := range rep.Results {
		values := []interface{}{
			r.FeatureKey.String(), string(r.TestType), r.R, r.PValue, r.QValue,
			r.N, r.Significant, string(r.Signal), joinWarnings(r.Warnings),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "failed to write XLSX row")
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError("failed to save XLSX report", err)
	}
	return nil
}

func (a *Assembler) writeMarkdown(rep *domainreport.Report, path string) error {
	if err := os.WriteFile(path, []byte(a.renderMarkdown(rep)), 0644); err != nil {
		return errors.IOError("failed to write Markdown report", err)
	}
	return nil
}

func (a *Assembler) writeHTML(rep *domainreport.Report, path string) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(a.renderMarkdown(rep)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	out := markdown.Render(doc, renderer)

	if err := os.WriteFile(path, out, 0644); err != nil {
		return errors.IOError("failed to write HTML report", err)
	}
	return nil
}

func (a *Assembler) renderMarkdown(rep *domainreport.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Name-outcome analysis: %s\n\n", rep.Source)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", rep.RunID, rep.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "%s\n\n", rep.Interpretation)

	b.WriteString("| Rank | Feature | r | p | q | N | Signal |\n")
	b.WriteString("|------|---------|---|---|---|---|--------|\n")
	for i, r := range rep.Results {
		fmt.Fprintf(&b, "| %d | %s | %.4f | %.4g | %.4g | %d | %s |\n",
			i+1, r.FeatureKey, r.R, r.PValue, r.QValue, r.N, r.Signal)
	}

	if rep.Diversity != nil {
		d := rep.Diversity
		b.WriteString("\n## Name diversity\n\n")
		fmt.Fprintf(&b, "- Unique names: %d of %d\n", d.UniqueNames, d.TotalCount)
		fmt.Fprintf(&b, "- Shannon entropy: %.4f bits (%.1f effective names)\n", d.ShannonEntropy, d.EffectiveNames)
		fmt.Fprintf(&b, "- HHI: %.1f\n", d.HHI)
		fmt.Fprintf(&b, "- Gini impurity: %.4f\n", d.Gini)
	}
	return b.String()
}

func joinWarnings(warnings []stats.WarningCode) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = string(w)
	}
	return strings.Join(parts, ";")
}
