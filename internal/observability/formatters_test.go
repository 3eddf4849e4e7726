package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/lead-harvester/internal/db"
	"github.com/jonathan/lead-harvester/internal/extract"
	"github.com/jonathan/lead-harvester/internal/pipeline"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&pipeline.RunState{
		ProcessedCount: 2,
		DailyLimit:     20,
		Total:          4,
		Visited:        3,
		Skipped:        1,
		Failed:         1,
		StoppedAtLimit: true,
	})
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "Processed:      2 / 20")
	assert.Contains(t, output, "Skipped:        1")
	assert.Contains(t, output, "Stopped at the daily limit.")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := extract.NewRecord("https://www.linkedin.com/in/ada")
	rec.About = strings.Repeat("line\n", 8) + "last"
	rec.Missing = []extract.Field{extract.FieldFullName, extract.FieldHeadline, extract.FieldExperience}

	p.PrintRecord(rec)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED PROFILE")
	assert.Contains(t, output, "Name:     Unknown")
	assert.Contains(t, output, "... and 4 more lines")
	assert.Contains(t, output, "Missing: full_name, headline, experience")
	assert.Contains(t, output, "Low confidence")
}

func TestPrintLead(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLead(&db.Lead{
		LinkedInURL:   "https://www.linkedin.com/in/ada",
		FullName:      "Ada Lovelace",
		Status:        db.StatusScraped,
		Message1Draft: "Hi Ada",
		LastScrapedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	})
	output := buf.String()

	assert.Contains(t, output, "STORED LEAD")
	assert.Contains(t, output, "Status:   SCRAPED")
	assert.Contains(t, output, "2026-03-14 09:00:00 UTC")
	assert.Contains(t, output, "Hi Ada")

	buf.Reset()
	p.PrintLead(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
