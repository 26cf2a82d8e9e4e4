// Package cmd defines the command-line interface for hotspot.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("repo", "", "Path to the repository root")
	rootCmd.PersistentFlags().Int("time-window", contract.DefaultTimeWindowDays, "Number of days of history to analyze")
	rootCmd.PersistentFlags().String("format", string(schema.JSONOut), "Output format: json or csv or text or parquet")
	rootCmd.PersistentFlags().Int("top", contract.DefaultTopN, "Number of files to report")
	rootCmd.PersistentFlags().StringArray("include", nil, "Glob a path must match (repeatable, added to the default includes)")
	rootCmd.PersistentFlags().StringArray("exclude", nil, "Glob that removes a path (repeatable, added to the default excludes)")
	rootCmd.PersistentFlags().Bool("no-default-includes", false, "Do not apply the default source code includes")
	rootCmd.PersistentFlags().Bool("no-default-excludes", false, "Do not apply the default vendor and build excludes")
	rootCmd.PersistentFlags().Bool("include-merges", false, "Count merge commits")
	rootCmd.PersistentFlags().String("mode", string(schema.ProductMode), "Scoring mode: product or weighted")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent aggregation workers")
	rootCmd.PersistentFlags().String("author-key", string(schema.AuthorNameEmail), "Author identity: name or email or name-email")
	rootCmd.PersistentFlags().Bool("detail", false, "Print first and last change times and the main contributor")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for scores")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug diagnostics to stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for run tracking (sqlite file path or mysql/postgresql DSN)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
