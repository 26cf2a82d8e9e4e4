package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/parquet"
	"github.com/vcsinsight/hotspot/schema"
)

// hotspotJSON is the compact JSON shape of an entry.
type hotspotJSON struct {
	Path        string  `json:"path"`
	ChangeCount int     `json:"change_count"`
	AuthorCount int     `json:"author_count"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// writeHotspotJSON writes an array in rank order. An empty result is "[]".
func writeHotspotJSON(w io.Writer, entries []schema.HotspotEntry, detail bool) error {
	if detail {
		if entries == nil {
			entries = []schema.HotspotEntry{}
		}
		return writeJSON(w, entries)
	}
	out := make([]hotspotJSON, len(entries))
	for i, e := range entries {
		out[i] = hotspotJSON{
			Path:        e.Path,
			ChangeCount: e.ChangeCount,
			AuthorCount: e.AuthorCount,
			Score:       e.Score,
			Rank:        e.Rank,
		}
	}
	return writeJSON(w, out)
}

// writeHotspotCSV writes a header row then one row per entry. Detail
// columns go after the base columns. Scores use the configured precision.
func writeHotspotCSV(w io.Writer, entries []schema.HotspotEntry, detail bool, precision int) error {
	fmtScore := createFormatters(precision)
	header := []string{"rank", "path", "change_count", "author_count", "score"}
	if detail {
		header = append(header, "main_contributor", "main_contributor_share", "knowledge_distribution", "first_changed_at", "last_changed_at")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range entries {
			rec := []string{
				strconv.Itoa(e.Rank),
				e.Path,
				strconv.Itoa(e.ChangeCount),
				strconv.Itoa(e.AuthorCount),
				fmtScore(e.Score),
			}
			if detail {
				rec = append(rec,
					e.MainContributor,
					formatScore(e.MainContributorShare),
					formatScore(e.KnowledgeDistribution),
					formatTime(e.FirstChangedAt),
					formatTime(e.LastChangedAt),
				)
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeHotspotTable generates and writes the human-readable table.
func writeHotspotTable(w io.Writer, entries []schema.HotspotEntry, cfg *contract.Config) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No hotspots found in the analysis window.")
		return err
	}

	fmtFloat := createFormatters(cfg.Precision)
	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	topScore := entries[0].Score
	pathWidth := GetMaxTablePathWidth(cfg)

	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Path", "Changes", "Authors", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Owner", "Share", "Last Change")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Rank),
			contract.TruncatePath(e.Path, pathWidth),
			humanize.Comma(int64(e.ChangeCount)),
			humanize.Comma(int64(e.AuthorCount)),
			fmtFloat(e.Score),
			label(e.Score, topScore),
		}
		if cfg.Detail {
			row = append(row,
				schema.AbbreviateName(schema.IdentityName(e.MainContributor)),
				fmtFloat(e.MainContributorShare)+"%",
				humanize.RelTime(e.LastChangedAt, cfg.Now, "ago", "from now"),
			)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeHotspotParquet(w io.Writer, entries []schema.HotspotEntry) error {
	return parquet.WriteHotspots(w, parquet.ConvertEntries(entries))
}

// formatScore prints the shortest exact representation, so 50 is "50" and
// 0.25 is "0.25".
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}
