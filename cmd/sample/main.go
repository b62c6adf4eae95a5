// Command sample draws a reproducible audit sample from a tabular
// population (CSV file or SQLite table) and writes the selected rows plus a
// reconciled sampling summary.
//
// Typical use:
//
//	sample -input population.csv -stratify Region,Risk -method statistical -seed 42
//	sample -input accounts.db -table accounts -method percentage -percentage 10
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/sample.report/internal/config"
	"github.com/banshee-data/sample.report/internal/monitoring"
	"github.com/banshee-data/sample.report/internal/population"
	"github.com/banshee-data/sample.report/internal/report"
	"github.com/banshee-data/sample.report/internal/sampling"
	"github.com/banshee-data/sample.report/internal/version"
)

// stratifyFlag accumulates -stratify values, splitting comma-separated
// lists and dropping duplicates while preserving first-seen order.
type stratifyFlag []string

func (s *stratifyFlag) String() string { return strings.Join(*s, ",") }

func (s *stratifyFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dup := false
		for _, existing := range *s {
			if existing == part {
				dup = true
				break
			}
		}
		if !dup {
			*s = append(*s, part)
		}
	}
	return nil
}

var (
	input         = flag.String("input", "", "Population input: CSV file, or SQLite database with -table/-query")
	sqlTable      = flag.String("table", "", "SQLite table holding the population")
	sqlQuery      = flag.String("query", "", "SQLite SELECT returning the population (overrides -table)")
	method        = flag.String("method", "", "Sampling method: statistical, simple_random, percentage or systematic")
	confidence    = flag.Float64("confidence", 0, "Confidence level for statistical sizing")
	ter           = flag.Float64("ter", 0, "Tolerable error rate for statistical sizing")
	eer           = flag.Float64("eer", 0, "Expected error rate for statistical sizing")
	size          = flag.Int("size", -1, "Fixed sample size")
	percentage    = flag.Float64("percentage", 0, "Percentage of the population to sample")
	step          = flag.Int("step", 0, "Interval for systematic sampling")
	popSize       = flag.Int("population-size", 0, "Override the population size used for statistical sizing")
	idColumn      = flag.String("id-column", "", "Column holding record identifiers for the summary")
	seed          = flag.Int64("seed", 0, "Random seed for reproducibility")
	noRandomStart = flag.Bool("no-random-start", false, "Disable the random start offset for systematic sampling")
	configPath    = flag.String("config", "", "JSON run configuration (flags override its values)")
	outDir        = flag.String("out", "outputs", "Directory to write outputs")
	chart         = flag.Bool("chart", false, "Also write an HTML distribution chart (stratified runs)")
	quiet         = flag.Bool("quiet", false, "Only print output file paths")
	showVersion   = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	var stratify stratifyFlag
	flag.Var(&stratify, "stratify", "Columns to stratify by; comma-separated or repeated")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sample %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	monitoring.SetQuiet(*quiet)

	if *input == "" {
		log.Fatal("-input is required")
	}

	cfg, err := buildConfig(stratify)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	table, err := loadPopulation(*input, *sqlTable, *sqlQuery)
	if err != nil {
		log.Fatalf("failed to load population: %v", err)
	}
	monitoring.Logf("loaded population: %d rows, %d columns", table.Size(), len(table.Columns))

	result, err := sampling.Run(table, cfg)
	if err != nil {
		log.Fatalf("sampling failed: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	samplePath := filepath.Join(*outDir, fmt.Sprintf("sample_%s.csv", ts))
	summaryPath := filepath.Join(*outDir, fmt.Sprintf("sampling_summary_%s.json", ts))

	if err := report.SaveSampleCSV(samplePath, table, result.Rows); err != nil {
		log.Fatalf("failed to write sample: %v", err)
	}
	if err := report.SaveSummaryJSON(summaryPath, result.Summary); err != nil {
		log.Fatalf("failed to write summary: %v", err)
	}

	printOverview(result)
	fmt.Printf("Sample saved to: %s\n", samplePath)
	fmt.Printf("Summary saved to: %s\n", summaryPath)

	if *chart {
		chartPath := filepath.Join(*outDir, fmt.Sprintf("distribution_%s.html", ts))
		if err := report.SaveDistributionChart(chartPath, result.Summary); err != nil {
			monitoring.Logf("WARNING: chart not written: %v", err)
		} else {
			fmt.Printf("Chart saved to: %s\n", chartPath)
		}
	}
}

// buildConfig merges the optional JSON config file with command-line flags;
// any flag the user set explicitly wins over the file.
func buildConfig(stratify []string) (sampling.Config, error) {
	fileCfg := &config.RunConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return sampling.Config{}, err
		}
		fileCfg = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	m, err := sampling.ParseMethod(pickString(set["method"], *method, fileCfg.GetMethod()))
	if err != nil {
		return sampling.Config{}, err
	}

	cfg := sampling.Config{
		Method:             m,
		Confidence:         pickFloat(set["confidence"], *confidence, fileCfg.GetConfidence()),
		TolerableErrorRate: pickFloat(set["ter"], *ter, fileCfg.GetTolerableErrorRate()),
		ExpectedErrorRate:  pickFloat(set["eer"], *eer, fileCfg.GetExpectedErrorRate()),
		IDColumn:           pickString(set["id-column"], *idColumn, fileCfg.GetIDColumn()),
		Seed:               fileCfg.GetSeed(),
		RandomStart:        fileCfg.GetSystematicRandomStart(),
	}
	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["no-random-start"] {
		cfg.RandomStart = !*noRandomStart
	}

	cfg.StratifyFields = fileCfg.Stratify
	if len(stratify) > 0 {
		cfg.StratifyFields = stratify
	}

	cfg.SampleSize = fileCfg.SampleSize
	if set["size"] && *size >= 0 {
		cfg.SampleSize = size
	}
	cfg.SamplePercentage = fileCfg.SamplePercentage
	if set["percentage"] {
		cfg.SamplePercentage = percentage
	}
	cfg.SystematicStep = fileCfg.SystematicStep
	if set["step"] {
		cfg.SystematicStep = step
	}
	cfg.PopulationSize = fileCfg.PopulationSize
	if set["population-size"] {
		cfg.PopulationSize = popSize
	}

	if fileCfg.Overrides != nil {
		cfg.Overrides = sampling.Overrides{
			Justification: fileCfg.Overrides.Justification,
			Coverage:      fileCfg.Overrides.Coverage,
			Adjustments:   fileCfg.Overrides.Adjustments,
		}
	}
	return cfg, nil
}

func pickString(flagSet bool, flagVal, fileVal string) string {
	if flagSet {
		return flagVal
	}
	return fileVal
}

func pickFloat(flagSet bool, flagVal, fileVal float64) float64 {
	if flagSet {
		return flagVal
	}
	return fileVal
}

// loadPopulation picks the source by flags and file extension: SQLite when a
// table or query is given or the path looks like a database, CSV otherwise.
func loadPopulation(path, table, query string) (*population.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	isDB := table != "" || query != "" || ext == ".db" || ext == ".sqlite" || ext == ".sqlite3"
	if isDB {
		return population.LoadSQLite(path, table, query)
	}
	return population.LoadCSV(path)
}

func printOverview(result *sampling.Result) {
	s := result.Summary
	fmt.Printf("Selected %d of %d records using method '%s'.\n", s.Sample.Size, s.Population.Size, s.Methodology.Method)
	if s.AllocationShortfall > 0 {
		fmt.Printf("Note: %d requested units could not be placed (strata saturated).\n", s.AllocationShortfall)
	}
	if len(s.StratifyFields) == 0 || len(s.Allocations) == 0 {
		return
	}
	fmt.Println("Per-stratum sample counts:")
	for _, a := range s.Allocations {
		fmt.Printf("- %s: %d of %d (%.2f%% of sample, %.2f%% of population)\n",
			a.Stratum.Label(), a.SampleCount, a.PopulationCount,
			a.ShareOfSample*100, a.ShareOfPopulation*100)
	}
}
