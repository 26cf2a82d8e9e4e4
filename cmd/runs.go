package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/iocache"
	"github.com/vcsinsight/hotspot/schema"
)

// errTrackingDisabled is returned by runs subcommands when no backend is configured.
var errTrackingDisabled = errors.New("run tracking is disabled; set --analysis-backend")

// runsBackendSetup loads the backend settings only. Runs subcommands never
// touch a repository, so the full sharedSetup is skipped.
func runsBackendSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	raw := &contract.ConfigRawInput{
		AnalysisBackend:   viper.GetString("analysis-backend"),
		AnalysisDBConnect: viper.GetString("analysis-db-connect"),
	}
	if err := contract.ValidateBackendConfigs(cfg, raw); err != nil {
		return err
	}
	if cfg.AnalysisBackend == "" {
		return errTrackingDisabled
	}
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsStoreSetup additionally opens the global store.
func runsStoreSetup(_ *cobra.Command, _ []string) error {
	if err := runsBackendSetup(); err != nil {
		return err
	}
	return iocache.InitStores(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

// runsMigrateSetup prepares a migration. SQLite defaults to the home directory file.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := runsBackendSetup(); err != nil {
		return err
	}
	if cfg.AnalysisBackend == schema.SQLiteBackend && cfg.AnalysisDBConnect == "" {
		cfg.AnalysisDBConnect = iocache.GetAnalysisDBFilePath()
	}
	return nil
}

// runsCmd manages the history of tracked analysis runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked analysis runs",
	Long: `Manage the history of analysis runs recorded with --analysis-backend.

When enabled, every analysis stores its run metadata (time, configuration,
duration, commit counts) and the ranked hotspot entries it reported.

Supported backends: SQLite (default file ~/.hotspot_analysis.db), MySQL, PostgreSQL, or none.

Examples:
  # Record a run in SQLite
  hotspot --repo . --analysis-backend sqlite

  # Check tracking status
  hotspot runs status --analysis-backend sqlite

  # Export for pandas or DuckDB
  hotspot runs export --analysis-backend sqlite --output-file history`,
}

// runsStatusCmd shows run tracking statistics.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics",
	PreRunE: runsStoreSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			return errTrackingDisabled
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get analysis status: %w", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
		return nil
	},
}

// runsExportCmd exports tracked runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet",
	Long: `Export all tracked runs and hotspot entries to two Parquet files:

  <output-file>.analysis_runs.parquet
  <output-file>.hotspots.parquet

Example:
  hotspot runs export --analysis-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.hotspots.parquet') LIMIT 10"`,
	PreRunE: runsStoreSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteAnalysisExport(iocache.Manager, cfg.OutputFile)
	},
}

// runsClearCmd removes all tracked runs.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs",
	Long: `Delete all stored analysis runs and hotspot entries.

For SQLite the database file is removed. For MySQL and PostgreSQL the tracking
tables are dropped. This cannot be undone; consider exporting first.`,
	PreRunE: runsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		dbFile := cfg.AnalysisDBConnect
		if cfg.AnalysisBackend != schema.SQLiteBackend {
			dbFile = iocache.GetAnalysisDBFilePath()
		}
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, dbFile, cfg.AnalysisDBConnect); err != nil {
			return fmt.Errorf("failed to clear analysis data: %w", err)
		}
		fmt.Println("Analysis data cleared successfully.")
		return nil
	},
}

// runsMigrateCmd runs database migrations for the run tracking store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hotspot runs migrate --analysis-backend postgresql --analysis-db-connect "host=localhost dbname=hotspot"

  # Rollback to the initial state
  hotspot runs migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}
