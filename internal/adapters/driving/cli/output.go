package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

// printResult prints a facade result either as the JSON envelope or through
// render, preceded by the substitute-data banner when the result is a
// fallback.
func printResult[D, W any](
	cmd *cobra.Command,
	result domain.Result[D],
	convert func(D) W,
	render func(D),
) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), wire.NewResult(result, convert))
	}
	if result.IsFallback() {
		printFallbackBanner(cmd, result.Err)
	}
	render(result.Data)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// printFallbackBanner marks output as substitute data.
func printFallbackBanner(cmd *cobra.Command, cause *domain.TransportError) {
	cmd.Println("! SUBSTITUTE DATA: the observation source is unavailable")
	if cause != nil {
		if cause.Status != 0 {
			cmd.Printf("  status %d: %s\n", cause.Status, cause.Detail)
		} else {
			cmd.Printf("  %s\n", cause.Detail)
		}
	}
	cmd.Println()
}

// newTable returns a tab-aligned writer on the command's output. Callers
// must Flush it.
func newTable(cmd *cobra.Command, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(w io.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func printPageFooter[T any](cmd *cobra.Command, page domain.Page[T], noun string) {
	cmd.Printf("\nPage %d of %d (%d %s)\n", page.Page, max(page.TotalPages(), 1), page.Total, noun)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptionalScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatScore(*v)
}

func formatRank(rank int) string {
	if rank == domain.RankAbsent {
		return "absent"
	}
	return "#" + strconv.Itoa(rank)
}

func formatAvgRank(rank float64) string {
	if rank == domain.AbsentRank {
		return "-"
	}
	return strconv.FormatFloat(rank, 'f', 1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
