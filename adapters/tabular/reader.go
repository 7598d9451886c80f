package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nomen/domain/entity"
	"nomen/internal/errors"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Reader loads cohorts from CSV and XLSX files. The name and outcome columns
// are located by header; rows with a blank or unparseable outcome are
// skipped and counted, not fatal.
type Reader struct {
	NameColumn    string
	OutcomeColumn string
}

// NewReader creates a tabular cohort reader for the given column headers.
func NewReader(nameColumn, outcomeColumn string) *Reader {
	return &Reader{NameColumn: nameColumn, OutcomeColumn: outcomeColumn}
}

// Read loads a cohort from path, dispatching on file extension.
func (r *Reader) Read(ctx context.Context, path string) (*entity.Cohort, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("cohort file %s", path))
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}

	return r.toCohort(ctx, path, rows)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError("failed to open CSV file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows handled downstream
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError("failed to parse CSV file", err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError("failed to open XLSX file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	return rows, nil
}

func (r *Reader) toCohort(ctx context.Context, source string, rows [][]string) (*entity.Cohort, error) {
	if len(rows) < 2 {
		return nil, errors.InvalidInput("cohort file needs a header row and at least one data row")
	}

	nameIdx, outcomeIdx := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case strings.ToLower(r.NameColumn):
			nameIdx = i
		case strings.ToLower(r.OutcomeColumn):
			outcomeIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("name column %q not found in header", r.NameColumn))
	}
	if outcomeIdx < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("outcome column %q not found in header", r.OutcomeColumn))
	}

	entities := make([]entity.Entity, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		if nameIdx >= len(row) || outcomeIdx >= len(row) {
			skipped++
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		outcomeStr := strings.TrimSpace(row[outcomeIdx])
		if name == "" || outcomeStr == "" {
			skipped++
			continue
		}
		outcome, err := strconv.ParseFloat(outcomeStr, 64)
		if err != nil {
			skipped++
			continue
		}
		entities = append(entities, entity.Entity{Name: name, Outcome: outcome})
	}

	if skipped > 0 {
		zerolog.Ctx(ctx).Warn().
			Str("source", source).
			Int("skipped", skipped).
			Int("loaded", len(entities)).
			Msg("skipped rows with missing or non-numeric outcomes")
	}
	if len(entities) == 0 {
		return nil, errors.InvalidInput("no usable rows in cohort file")
	}

	return entity.NewCohort(source, entities), nil
}
