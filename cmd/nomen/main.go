package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nomen/adapters/collect"
	"nomen/adapters/postgres"
	"nomen/adapters/tabular"
	"nomen/app"
	"nomen/domain/entity"
	"nomen/domain/feature"
	domainreport "nomen/domain/report"
	"nomen/internal/config"
	"nomen/internal/correlate"
	"nomen/internal/diversity"
	"nomen/internal/extract"
	"nomen/internal/logging"
	"nomen/internal/pipeline"
	"nomen/internal/report"
	"nomen/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	logger := logging.New(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx := logger.WithContext(context.Background())

	root := &cobra.Command{
		Use:           "nomen",
		Short:         "Correlate name features with outcomes",
		Long:          "nomen extracts lexical and phonetic features from entity names and tests them against a numeric outcome.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(cfg), newDiversityCmd(), newFetchCmd(cfg))

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		alpha         float64
		minN          int
		phoneticsOnly bool
		skipNgrams    bool
		formats       []string
		outDir        string
		nameColumn    string
		outcomeColumn string
		savePipeline  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <cohort-file>",
		Short: "Run the full name-outcome analysis over a CSV or XLSX cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			featCfg := feature.DefaultConfig()
			if phoneticsOnly {
				featCfg = feature.PhoneticsOnlyConfig()
			}
			if skipNgrams {
				featCfg = withoutCategory(featCfg, feature.CategoryRarity)
			}

			parsed, err := parseFormats(formats)
			if err != nil {
				return err
			}

			extractor, err := extract.New(featCfg)
			if err != nil {
				return err
			}
			engine := correlate.NewEngine(correlate.Options{Alpha: alpha, MinSampleSize: minN})
			assembler := report.NewAssembler(alpha)
			pipe := pipeline.New(extractor, engine, assembler)

			var repo ports.ReportRepository
			if cfg.Database.Enabled {
				db, err := postgres.Connect(ctx, cfg.Database.URL)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = postgres.NewReportRepository(db)
			}

			cohort, err := tabular.NewReader(nameColumn, outcomeColumn).Read(ctx, args[0])
			if err != nil {
				return err
			}

			svc := app.NewAnalysisService(pipe, assembler, repo)
			resp, err := svc.Run(ctx, app.RunRequest{
				Cohort:  cohort,
				Formats: parsed,
				OutDir:  outDir,
			})
			if err != nil {
				return err
			}

			if savePipeline != "" {
				if err := pipe.Save(savePipeline); err != nil {
					return err
				}
			}

			for _, path := range resp.Paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Analysis.Alpha, "significance threshold")
	cmd.Flags().IntVar(&minN, "min-n", cfg.Analysis.MinSampleSize, "minimum sample size before low-N warnings")
	cmd.Flags().BoolVar(&phoneticsOnly, "phonetics-only", false, "restrict features to sound-based categories")
	cmd.Flags().BoolVar(&skipNgrams, "skip-ngrams", false, "skip corpus-frequency rarity features")
	cmd.Flags().StringSliceVar(&formats, "format", []string{"json"}, "report formats: json, csv, xlsx, markdown, html")
	cmd.Flags().StringVar(&outDir, "out", cfg.Paths.OutputDir, "directory for report files")
	cmd.Flags().StringVar(&nameColumn, "name-column", "name", "header of the entity-name column")
	cmd.Flags().StringVar(&outcomeColumn, "outcome-column", "outcome", "header of the numeric outcome column")
	cmd.Flags().StringVar(&savePipeline, "save-pipeline", "", "write the fitted pipeline snapshot to this path")
	return cmd
}

func newDiversityCmd() *cobra.Command {
	var (
		nameColumn    string
		outcomeColumn string
	)

	cmd := &cobra.Command{
		Use:   "diversity <cohort-file>",
		Short: "Compute name concentration statistics (entropy, HHI, Gini) for a cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cohort, err := tabular.NewReader(nameColumn, outcomeColumn).Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			summary, err := diversity.Summarize(cohort.NameCounts())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&nameColumn, "name-column", "name", "header of the entity-name column")
	cmd.Flags().StringVar(&outcomeColumn, "outcome-column", "outcome", "header of the numeric outcome column")
	return cmd
}

func newFetchCmd(cfg *config.Config) *cobra.Command {
	var (
		limit int
		out   string
		query string
		words []string
	)

	cmd := &cobra.Command{
		Use:   "fetch <usgs|arxiv|ngrams|gutenberg>",
		Short: "Run a collector and write the cohort to a local CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := collect.NewClient(cfg.Collector)

			var collector ports.Collector
			switch args[0] {
			case "usgs":
				collector = collect.NewUSGSCollector(client)
			case "arxiv":
				collector = collect.NewArxivCollector(client, query)
			case "ngrams":
				collector = collect.NewNgramsCollector(client, words)
			case "gutenberg":
				collector = collect.NewGutenbergCollector(client)
			default:
				return fmt.Errorf("unknown collector: %s", args[0])
			}

			cohort, err := collector.Collect(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if err := writeCohortCSV(out, cohort); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entities -> %s\n", collector.Name(), cohort.Len(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entities to fetch (0 = collector default)")
	cmd.Flags().StringVar(&out, "out", "cohort.csv", "output CSV path")
	cmd.Flags().StringVar(&query, "query", "cat:cs.LG", "arXiv search query")
	cmd.Flags().StringSliceVar(&words, "words", []string{"fortune", "doom", "king", "storm", "gold"}, "words for the ngrams collector")
	return cmd
}

func withoutCategory(cfg feature.Config, drop feature.Category) feature.Config {
	kept := make([]feature.Category, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		if cat != drop {
			kept = append(kept, cat)
		}
	}
	cfg.Categories = kept
	return cfg
}

func parseFormats(raw []string) ([]domainreport.Format, error) {
	formats := make([]domainreport.Format, 0, len(raw))
	for _, s := range raw {
		f, ok := domainreport.ParseFormat(strings.ToLower(strings.TrimSpace(s)))
		if !ok {
			return nil, fmt.Errorf("unsupported report format: %s", s)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func writeCohortCSV(path string, cohort *entity.Cohort) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "outcome"}); err != nil {
		return err
	}
	for _, e := range cohort.Entities {
		record := []string{e.Name, strconv.FormatFloat(e.Outcome, 'f', -1, 64)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
