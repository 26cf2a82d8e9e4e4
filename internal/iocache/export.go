package iocache

import (
	"errors"
	"fmt"

	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/parquet"
)

// ExecuteAnalysisExport writes every tracked run and hotspot entry to two
// Parquet files next to outputFile.
func ExecuteAnalysisExport(mgr contract.StoreManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetAnalysisStore()
	if store == nil {
		return errors.New("run tracking is disabled; set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total analysis runs: %d\n", status.TotalRuns)
	fmt.Printf("Total hotspot records: %d\n", status.TableSizes[hotspotsTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}

	hotspots, err := store.GetAllHotspotRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve hotspots: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(analysisRuns)
	parquetHotspots := parquet.ConvertHotspotRecords(hotspots)

	analysisRunsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, analysisRunsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(parquetRuns), analysisRunsFile)

	hotspotsFile := outputFile + ".hotspots.parquet"
	if err := parquet.WriteHotspotsParquet(parquetHotspots, hotspotsFile); err != nil {
		return fmt.Errorf("failed to write hotspots: %w", err)
	}
	fmt.Printf("Exported %d hotspot records to: %s\n", len(parquetHotspots), hotspotsFile)

	return nil
}
