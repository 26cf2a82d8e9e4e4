// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
	"golang.org/x/term"
)

// PrintHotspotResults writes the ranked entries to cfg.OutputFile, or stdout
// when it is empty, in the configured format.
func PrintHotspotResults(entries []schema.HotspotEntry, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteHotspots(w, entries, cfg)
	}, successMessage(cfg.Output))
}

// WriteHotspots renders entries onto w. Entries must already be in rank order.
func WriteHotspots(w io.Writer, entries []schema.HotspotEntry, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.CSVOut:
		return writeHotspotCSV(w, entries, cfg.Detail, cfg.Precision)
	case schema.TextOut:
		return writeHotspotTable(w, entries, cfg)
	case schema.ParquetOut:
		return writeHotspotParquet(w, entries)
	case schema.JSONOut, "":
		return writeHotspotJSON(w, entries, cfg.Detail)
	default:
		return fmt.Errorf("%w: unsupported format %q", contract.ErrInvalidConfig, cfg.Output)
	}
}

func successMessage(mode schema.OutputMode) string {
	switch mode {
	case schema.CSVOut:
		return "Wrote CSV"
	case schema.TextOut:
		return "Wrote table"
	case schema.ParquetOut:
		return "Wrote Parquet"
	default:
		return "Wrote JSON"
	}
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Changes + Authors + Score + Label with borders/padding
	baseWidth := 50

	if cfg.Detail {
		baseWidth += 45 // Owner + Share + Last change
	}

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
