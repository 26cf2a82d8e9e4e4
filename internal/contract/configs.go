package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vcsinsight/hotspot/schema"
)

// Default values for configuration.
const (
	DefaultTimeWindowDays = 365
	DefaultTopN           = 10
	DefaultPrecision      = 1
	MaxPrecision          = 3
)

// DefaultWorkers is the default number of concurrent aggregation workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ScoreWeights holds the constants of the weighted score function.
type ScoreWeights struct {
	Changes float64
	Authors float64
}

// DefaultScoreWeights weighs changes and authors equally.
var DefaultScoreWeights = ScoreWeights{Changes: 1.0, Authors: 1.0}

// WeightsRawInput holds the optional weight overrides from the YAML config file.
type WeightsRawInput struct {
	Changes *float64 `mapstructure:"changes"`
	Authors *float64 `mapstructure:"authors"`
}

// Config holds the runtime configuration for the analysis.
// It is treated as read-only once ProcessAndValidate returns.
type Config struct {
	RepoPath       string
	TimeWindowDays int
	Now            time.Time // Reference instant; the window ends here

	IncludePatterns    []string
	ExcludePatterns    []string
	UseDefaultIncludes bool
	UseDefaultExcludes bool
	IncludeMerges      bool

	TopN      int
	Workers   int
	Mode      schema.ScoringMode
	Weights   ScoreWeights
	AuthorKey schema.AuthorKey

	Output     schema.OutputMode
	OutputFile string
	Detail     bool
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Repo              string          `mapstructure:"repo"`
	TimeWindow        int             `mapstructure:"time-window"`
	Format            string          `mapstructure:"format"`
	Top               int             `mapstructure:"top"`
	Include           []string        `mapstructure:"include"`
	Exclude           []string        `mapstructure:"exclude"`
	NoDefaultIncludes bool            `mapstructure:"no-default-includes"`
	NoDefaultExcludes bool            `mapstructure:"no-default-excludes"`
	IncludeMerges     bool            `mapstructure:"include-merges"`
	Workers           int             `mapstructure:"workers"`
	Mode              string          `mapstructure:"mode"`
	AuthorKey         string          `mapstructure:"author-key"`
	Detail            bool            `mapstructure:"detail"`
	Precision         int             `mapstructure:"precision"`
	OutputFile        string          `mapstructure:"output-file"`
	Width             int             `mapstructure:"width"`
	Color             string          `mapstructure:"color"`
	Verbose           bool            `mapstructure:"verbose"`
	AnalysisBackend   string          `mapstructure:"analysis-backend"`
	AnalysisDBConnect string          `mapstructure:"analysis-db-connect"`
	Weights           WeightsRawInput `mapstructure:"weights"`
}

// Cutoff is the oldest commit time still inside the analysis window.
func (c *Config) Cutoff() time.Time {
	return c.Now.Add(-time.Duration(c.TimeWindowDays) * 24 * time.Hour)
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.IncludePatterns = slices.Clone(c.IncludePatterns)
	clone.ExcludePatterns = slices.Clone(c.ExcludePatterns)
	return &clone
}

// Params summarizes the settings that shape a result, for run tracking.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"time_window_days":     c.TimeWindowDays,
		"top":                  c.TopN,
		"mode":                 string(c.Mode),
		"author_key":           string(c.AuthorKey),
		"include":              c.IncludePatterns,
		"exclude":              c.ExcludePatterns,
		"use_default_includes": c.UseDefaultIncludes,
		"use_default_excludes": c.UseDefaultExcludes,
		"include_merges":       c.IncludeMerges,
		"workers":              c.Workers,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Nothing here touches the repository.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPatterns(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input.Weights); err != nil {
		return err
	}
	if err := ValidateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveRepoPath(cfg, input)
}

// Revalidate checks the fields a caller may override on a cloned Config, as
// the MCP tools do with their arguments. Patterns are trimmed and the
// repository path is made absolute again.
func Revalidate(cfg *Config) error {
	if cfg.TimeWindowDays <= 0 {
		return invalidField("time-window", cfg.TimeWindowDays, "must be greater than 0")
	}
	if cfg.TopN <= 0 {
		return invalidField("top", cfg.TopN, "must be greater than 0")
	}
	mode := schema.ScoringMode(strings.ToLower(string(cfg.Mode)))
	if _, ok := schema.ValidScoringModes[mode]; !ok {
		return invalidField("mode", cfg.Mode, "must be product, weighted")
	}
	cfg.Mode = mode

	var err error
	if cfg.IncludePatterns, err = cleanPatterns("include", cfg.IncludePatterns); err != nil {
		return err
	}
	if cfg.ExcludePatterns, err = cleanPatterns("exclude", cfg.ExcludePatterns); err != nil {
		return err
	}
	return resolveRepoPath(cfg, &ConfigRawInput{Repo: cfg.RepoPath})
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackendConfigs validates the run tracking backend. An empty backend disables tracking.
// The runs subcommands call it directly since they never touch a repository.
func ValidateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.AnalysisBackend)))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return invalidField("analysis-backend", input.AnalysisBackend, "must be sqlite, mysql, postgresql, none")
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return invalidField("analysis-db-connect", "<redacted>", "%v", err)
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose
	cfg.IncludeMerges = input.IncludeMerges
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return invalidField("color", input.Color, "%v", err)
		}
		cfg.UseColors = colors
	}

	if input.TimeWindow <= 0 {
		return invalidField("time-window", input.TimeWindow, "must be greater than 0")
	}
	cfg.TimeWindowDays = input.TimeWindow

	if input.Top <= 0 {
		return invalidField("top", input.Top, "must be greater than 0")
	}
	cfg.TopN = input.Top

	if input.Workers <= 0 {
		return invalidField("workers", input.Workers, "must be greater than 0")
	}
	cfg.Workers = input.Workers

	cfg.Mode = schema.ScoringMode(strings.ToLower(input.Mode))
	if _, ok := schema.ValidScoringModes[cfg.Mode]; !ok {
		return invalidField("mode", input.Mode, "must be product, weighted")
	}

	cfg.AuthorKey = schema.AuthorKey(strings.ToLower(input.AuthorKey))
	if _, ok := schema.ValidAuthorKeys[cfg.AuthorKey]; !ok {
		return invalidField("author-key", input.AuthorKey, "must be name, email, name-email")
	}

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return invalidField("precision", input.Precision, "must be between 1 and %d", MaxPrecision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return invalidField("format", input.Format, "must be json, csv, text, parquet")
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return invalidField("output-file", "", "is required for parquet output")
	}

	return nil
}

// processPatterns trims the user globs and checks that each one compiles.
func processPatterns(cfg *Config, input *ConfigRawInput) error {
	cfg.UseDefaultIncludes = !input.NoDefaultIncludes
	cfg.UseDefaultExcludes = !input.NoDefaultExcludes

	var err error
	if cfg.IncludePatterns, err = cleanPatterns("include", input.Include); err != nil {
		return err
	}
	if cfg.ExcludePatterns, err = cleanPatterns("exclude", input.Exclude); err != nil {
		return err
	}
	return nil
}

func cleanPatterns(field string, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, invalidField(field, p, "is not a valid glob pattern")
		}
		out = append(out, p)
	}
	return out, nil
}

// processWeights applies the optional weight overrides on top of the defaults.
func processWeights(cfg *Config, raw WeightsRawInput) error {
	cfg.Weights = DefaultScoreWeights
	if raw.Changes != nil {
		if *raw.Changes <= 0 {
			return invalidField("weights.changes", *raw.Changes, "must be greater than 0")
		}
		cfg.Weights.Changes = *raw.Changes
	}
	if raw.Authors != nil {
		if *raw.Authors <= 0 {
			return invalidField("weights.authors", *raw.Authors, "must be greater than 0")
		}
		cfg.Weights.Authors = *raw.Authors
	}
	return nil
}

// resolveRepoPath makes the repository path absolute. Whether it actually holds
// a repository is decided later, when the history is opened.
func resolveRepoPath(cfg *Config, input *ConfigRawInput) error {
	repo := strings.TrimSpace(input.Repo)
	if repo == "" {
		return invalidField("repo", "", "is required")
	}
	if strings.HasPrefix(repo, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			repo = filepath.Join(home, repo[2:])
		}
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return invalidField("repo", repo, "cannot be resolved: %v", err)
	}
	cfg.RepoPath = abs
	return nil
}
