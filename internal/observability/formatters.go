// Package observability provides formatted console output for search results
// and store statistics.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/professional-finder/internal/scraping"
	"github.com/jonathan/professional-finder/internal/search"
	"github.com/jonathan/professional-finder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary outputs the counts and source attempts of one search.
func (p *Printer) PrintSummary(summary *search.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("City:        %s\n", summary.City))
	sb.WriteString(fmt.Sprintf("Raw records: %d\n", summary.RawSeen))
	sb.WriteString(fmt.Sprintf("Normalized:  %d\n", summary.Normalized))
	sb.WriteString(fmt.Sprintf("Discarded:   %d\n", summary.Discarded))
	sb.WriteString(fmt.Sprintf("Duplicates:  %d\n", summary.Duplicates))
	sb.WriteString(fmt.Sprintf("Persisted:   %d\n", summary.Persisted))

	if len(summary.Attempts) > 0 {
		sb.WriteString("\nSources:\n")
		for _, attempt := range summary.Attempts {
			sb.WriteString(fmt.Sprintf("  %-12s %s", attempt.Source, attempt.Status))
			if attempt.Detail != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", attempt.Detail))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("SEARCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProfessionals renders records as a table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProfessionals(records []*types.Professional) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No professionals found.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(p.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Name", "Job Title", "Company", "City", "Source"})
	for _, rec := range records {
		name := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
		tw.AppendRow(table.Row{name, rec.JobTitle, rec.Company, rec.City, rec.Source})
	}
	tw.Render()
}

// PrintStats renders store-wide counts.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStats(total int, bySource map[types.Source]int, byCity map[string]int) {
	fmt.Fprintf(p.out, "Total professionals: %d\n\n", total)

	if len(bySource) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(p.out)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Source", "Count"})
		for _, source := range sortedSourceKeys(bySource) {
			tw.AppendRow(table.Row{source, bySource[source]})
		}
		tw.Render()
		fmt.Fprintln(p.out)
	}

	if len(byCity) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(p.out)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"City", "Count"})
		for _, city := range sortedCityKeys(byCity) {
			tw.AppendRow(table.Row{city, byCity[city]})
		}
		tw.Render()
	}
}

// PrintRun outputs the state of one actor run.
func (p *Printer) PrintRun(run *scraping.Run) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", run.Status))
	if run.DatasetID != "" {
		sb.WriteString(fmt.Sprintf("Dataset ID: %s\n", run.DatasetID))
	}

	p.printBox("ACTOR RUN", strings.TrimSuffix(sb.String(), "\n"))
}

func sortedSourceKeys(m map[types.Source]int) []types.Source {
	keys := make([]types.Source, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// sortedCityKeys orders cities by descending count, then name for stability.
func sortedCityKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
