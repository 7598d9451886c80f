package app

import (
	"context"
	"fmt"
	"os"
	"testing"

	"nomen/domain/core"
	"nomen/domain/entity"
	"nomen/domain/feature"
	domainreport "nomen/domain/report"
	"nomen/internal/correlate"
	"nomen/internal/extract"
	"nomen/internal/pipeline"
	"nomen/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saved    []*domainreport.Report
	saveErr  error
	manifest *domainreport.Manifest
}

func (f *fakeRepo) Save(ctx context.Context, rep *domainreport.Report, manifest *domainreport.Manifest) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rep)
	f.manifest = manifest
	return nil
}

func (f *fakeRepo) GetByRun(ctx context.Context, runID core.RunID) (*domainreport.Report, error) {
	for _, rep := range f.saved {
		if rep.RunID == runID {
			return rep, nil
		}
	}
	return nil, core.ErrRunNotFound
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int) ([]domainreport.Manifest, error) {
	if f.manifest == nil {
		return nil, nil
	}
	return []domainreport.Manifest{*f.manifest}, nil
}

func testCohort(t *testing.T) *entity.Cohort {
	t.Helper()
	names := []string{
		"Bitcoin", "Ethereum", "Solana", "Cardano", "Polkadot",
		"Dogecoin", "Avalanche", "Chainlink", "Polygon", "Litecoin",
		"Stellar", "Cosmos", "Monero", "Tezos", "Algorand",
	}
	entities := make([]entity.Entity, len(names))
	for i, name := range names {
		entities[i] = entity.Entity{
			Name:    name,
			Outcome: float64((i*37)%100 + len(name)),
		}
	}
	return entity.NewCohort("fixture", entities)
}

func testService(t *testing.T, repo *fakeRepo) *AnalysisService {
	t.Helper()
	extractor, err := extract.New(feature.DefaultConfig())
	require.NoError(t, err)
	engine := correlate.NewEngine(correlate.Options{Alpha: 0.05, MinSampleSize: 10})
	assembler := report.NewAssembler(0.05)
	p := pipeline.New(extractor, engine, assembler)
	if repo == nil {
		return NewAnalysisService(p, assembler, nil)
	}
	return NewAnalysisService(p, assembler, repo)
}

func TestRunWritesRequestedFormats(t *testing.T) {
	svc := testService(t, nil)
	outDir := t.TempDir()

	resp, err := svc.Run(context.Background(), RunRequest{
		Cohort:  testCohort(t),
		Formats: []domainreport.Format{domainreport.FormatJSON, domainreport.FormatCSV, domainreport.FormatMarkdown},
		OutDir:  outDir,
	})
	require.NoError(t, err)

	require.Len(t, resp.Paths, 3)
	for _, path := range resp.Paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Contains(t, resp.Paths[2], ".md")
	assert.NotEmpty(t, resp.Result.Report.Results)
}

func TestRunDefaultsToJSON(t *testing.T) {
	svc := testService(t, nil)

	resp, err := svc.Run(context.Background(), RunRequest{
		Cohort: testCohort(t),
		OutDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Paths, 1)
	assert.Contains(t, resp.Paths[0], ".json")
}

func TestRunPersistsWhenRepoWired(t *testing.T) {
	repo := &fakeRepo{}
	svc := testService(t, repo)

	resp, err := svc.Run(context.Background(), RunRequest{
		Cohort: testCohort(t),
		OutDir: t.TempDir(),
	})
	require.NoError(t, err)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, resp.Result.Report.RunID, repo.saved[0].RunID)
	assert.Equal(t, 15, repo.manifest.SampleSize)
}

func TestRunPersistenceFailureKeepsFiles(t *testing.T) {
	repo := &fakeRepo{saveErr: fmt.Errorf("connection refused")}
	svc := testService(t, repo)

	resp, err := svc.Run(context.Background(), RunRequest{
		Cohort: testCohort(t),
		OutDir: t.TempDir(),
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Len(t, resp.Paths, 1)
	_, statErr := os.Stat(resp.Paths[0])
	assert.NoError(t, statErr)
}

func TestRunRejectsEmptyCohort(t *testing.T) {
	svc := testService(t, nil)

	_, err := svc.Run(context.Background(), RunRequest{
		Cohort: entity.NewCohort("empty", nil),
		OutDir: t.TempDir(),
	})
	assert.Error(t, err)
}
