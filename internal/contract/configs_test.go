package contract

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcsinsight/hotspot/schema"
)

// validInput returns the raw input produced by the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Repo:       ".",
		TimeWindow: DefaultTimeWindowDays,
		Format:     string(schema.JSONOut),
		Top:        DefaultTopN,
		Workers:    2,
		Mode:       string(schema.ProductMode),
		AuthorKey:  string(schema.AuthorNameEmail),
		Precision:  DefaultPrecision,
		Color:      "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ConfigRawInput)
		wantField string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "csv format", mutate: func(in *ConfigRawInput) { in.Format = "CSV" }},
		{name: "zero time window", mutate: func(in *ConfigRawInput) { in.TimeWindow = 0 }, wantField: "time-window"},
		{name: "negative time window", mutate: func(in *ConfigRawInput) { in.TimeWindow = -3 }, wantField: "time-window"},
		{name: "zero top", mutate: func(in *ConfigRawInput) { in.Top = 0 }, wantField: "top"},
		{name: "large top is allowed", mutate: func(in *ConfigRawInput) { in.Top = 100000 }},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, wantField: "workers"},
		{name: "invalid mode", mutate: func(in *ConfigRawInput) { in.Mode = "hot" }, wantField: "mode"},
		{name: "invalid format", mutate: func(in *ConfigRawInput) { in.Format = "xml" }, wantField: "format"},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Format = "parquet" }, wantField: "output-file"},
		{name: "invalid author key", mutate: func(in *ConfigRawInput) { in.AuthorKey = "login" }, wantField: "author-key"},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 4 }, wantField: "precision"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, wantField: "color"},
		{name: "missing repo", mutate: func(in *ConfigRawInput) { in.Repo = "  " }, wantField: "repo"},
		{name: "malformed include", mutate: func(in *ConfigRawInput) { in.Include = []string{"src/[a-"} }, wantField: "include"},
		{name: "malformed exclude", mutate: func(in *ConfigRawInput) { in.Exclude = []string{"{a,b"} }, wantField: "exclude"},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.AnalysisBackend = "redis" }, wantField: "analysis-backend"},
		{
			name: "mysql without connection",
			mutate: func(in *ConfigRawInput) {
				in.AnalysisBackend = "mysql"
			},
			wantField: "analysis-db-connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error should wrap ErrInvalidConfig")
			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.wantField, fieldErr.Field)
		})
	}
}

func TestProcessAndValidate_Populates(t *testing.T) {
	input := validInput()
	input.Repo = "some/repo"
	input.Include = []string{" src/**/*.go ", "", "lib/**"}
	input.Exclude = []string{"**/gen/**"}
	input.NoDefaultExcludes = true
	input.IncludeMerges = true
	input.Color = "no"
	changes := 2.0
	input.Weights = WeightsRawInput{Changes: &changes}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	abs, _ := filepath.Abs("some/repo")
	assert.Equal(t, abs, cfg.RepoPath)
	assert.Equal(t, []string{"src/**/*.go", "lib/**"}, cfg.IncludePatterns)
	assert.Equal(t, []string{"**/gen/**"}, cfg.ExcludePatterns)
	assert.True(t, cfg.UseDefaultIncludes)
	assert.False(t, cfg.UseDefaultExcludes)
	assert.True(t, cfg.IncludeMerges)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, ScoreWeights{Changes: 2.0, Authors: 1.0}, cfg.Weights)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.False(t, cfg.Now.IsZero())
}

func TestProcessAndValidate_InvalidWeights(t *testing.T) {
	input := validInput()
	zero := 0.0
	input.Weights = WeightsRawInput{Authors: &zero}
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "weights.authors")
}

func TestConfigCutoff(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	cfg := &Config{Now: now, TimeWindowDays: 30}
	assert.Equal(t, time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC), cfg.Cutoff())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{IncludePatterns: []string{"a"}, ExcludePatterns: []string{"b"}, TopN: 3}
	clone := cfg.Clone()
	clone.IncludePatterns[0] = "changed"
	clone.ExcludePatterns = append(clone.ExcludePatterns, "c")
	clone.TopN = 5

	assert.Equal(t, []string{"a"}, cfg.IncludePatterns)
	assert.Equal(t, []string{"b"}, cfg.ExcludePatterns)
	assert.Equal(t, 3, cfg.TopN)
}

func TestRevalidate(t *testing.T) {
	valid := func() *Config {
		return &Config{RepoPath: "repo", TimeWindowDays: 30, TopN: 5, Mode: "Weighted"}
	}

	cfg := valid()
	cfg.IncludePatterns = []string{" src/** ", ""}
	require.NoError(t, Revalidate(cfg))
	assert.Equal(t, schema.WeightedMode, cfg.Mode)
	assert.Equal(t, []string{"src/**"}, cfg.IncludePatterns)
	assert.True(t, filepath.IsAbs(cfg.RepoPath))

	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"time-window", func(c *Config) { c.TimeWindowDays = 0 }},
		{"top", func(c *Config) { c.TopN = -1 }},
		{"mode", func(c *Config) { c.Mode = "risk" }},
		{"exclude", func(c *Config) { c.ExcludePatterns = []string{"[z"} }},
		{"repo", func(c *Config) { c.RepoPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			var fieldErr *FieldError
			require.ErrorAs(t, Revalidate(cfg), &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/hotspot"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=hotspot"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=hotspot"))
}
