// Package observability provides the structured logger and formatted operator output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow is the number of lines shown for long text fields
	maxLinesToShow = 5
)

// Printer handles formatted output for the operator
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

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs the counters of a finished batch.
func (p *Printer) PrintRunSummary(state *pipeline.RunState) {
	if state == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed:      %d / %d\n", state.ProcessedCount, state.DailyLimit))
	sb.WriteString(fmt.Sprintf("Targets:        %d\n", state.Total))
	sb.WriteString(fmt.Sprintf("Visited:        %d\n", state.Visited))
	sb.WriteString(fmt.Sprintf("Skipped:        %d\n", state.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:         %d\n", state.Failed))
	sb.WriteString(fmt.Sprintf("Low confidence: %d\n", state.LowConfidence))
	if state.StoppedAtLimit {
		sb.WriteString("\nStopped at the daily limit.\n")
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintRecord outputs an extracted profile record.
func (p *Printer) PrintRecord(rec extract.Record) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", rec.Identifier))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", rec.FullName))
	sb.WriteString(fmt.Sprintf("Headline: %s\n", rec.Headline))
	writeSection(&sb, "About", rec.About)
	writeSection(&sb, "Experience", rec.Experience)

	if len(rec.Missing) > 0 {
		missing := make([]string, len(rec.Missing))
		for i, f := range rec.Missing {
			missing[i] = string(f)
		}
		sb.WriteString(fmt.Sprintf("\nMissing: %s\n", strings.Join(missing, ", ")))
	}
	if rec.LowConfidence() {
		sb.WriteString("Low confidence: name not found\n")
	}

	p.printBox("EXTRACTED PROFILE", sb.String())
}

// PrintLead outputs a stored lead.
func (p *Printer) PrintLead(lead *db.Lead) {
	if lead == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", lead.LinkedInURL))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", lead.FullName))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", lead.Status))
	sb.WriteString(fmt.Sprintf("Scraped:  %s\n", lead.LastScrapedAt.Format("2006-01-02 15:04:05 MST")))
	writeSection(&sb, "Draft", lead.Message1Draft)

	p.printBox("STORED LEAD", sb.String())
}

// writeSection appends a titled block showing at most maxLinesToShow lines of text.
func writeSection(sb *strings.Builder, title, text string) {
	if text == "" {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	lines := strings.Split(text, "\n")
	count := min(len(lines), maxLinesToShow)
	for i := 0; i < count; i++ {
		sb.WriteString("  " + lines[i] + "\n")
	}
	if len(lines) > maxLinesToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(lines)-maxLinesToShow))
	}
}
