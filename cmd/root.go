package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vcsinsight/hotspot/core"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/iocache"
	"github.com/vcsinsight/hotspot/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd ranks the files of a repository by recent change activity.
var rootCmd = &cobra.Command{
	Use:   "hotspot",
	Short: "Rank the files of a Git repository by recent change activity.",
	Long: `Hotspot walks the commit history of a Git repository inside a time window
and ranks files by how often they changed and by how many distinct authors.

Files are filtered by include/exclude glob patterns. By default only common
source code extensions are included and vendor or build directories are
excluded. Exclusions always win over inclusions.

Examples:
  # Top 10 files of the last year as JSON
  hotspot --repo .

  # Last 90 days, 25 files, as a table
  hotspot --repo . --time-window 90 --top 25 --format text

  # Only Go files outside generated code, counting merges
  hotspot --repo . --no-default-includes --include '**/*.go' --exclude '**/gen/**' --include-merges

  # Write a CSV report
  hotspot --repo . --format csv --output-file hotspots.csv`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Args:               cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(cmd, "")
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteHotspotAnalysis(rootCtx, cfg, iocache.Manager)
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".hotspot") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("HOTSPOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("time-window", contract.DefaultTimeWindowDays)
	viper.SetDefault("top", contract.DefaultTopN)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("mode", schema.ProductMode)
	viper.SetDefault("format", schema.JSONOut)
	viper.SetDefault("author-key", schema.AuthorNameEmail)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("analysis-backend", "")
	viper.SetDefault("analysis-db-connect", "")
	viper.SetDefault("color", "yes")
}

// loadConfigFile reads the config file if present. A missing file is fine.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the run tracking store.
// defaultRepo is used when neither a flag, env var nor config file names a repository.
func sharedSetup(cmd *cobra.Command, defaultRepo string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Viper splits string slices on commas; patterns like {a,b} must survive.
	for _, name := range []string{"include", "exclude"} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		patterns, err := cmd.Flags().GetStringArray(name)
		if err != nil {
			return err
		}
		if name == "include" {
			input.Include = patterns
		} else {
			input.Exclude = patterns
		}
	}
	if input.Repo == "" {
		input.Repo = defaultRepo
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	if cfg.Verbose {
		contract.EnableDebugLog()
	}

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
