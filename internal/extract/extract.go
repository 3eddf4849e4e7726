package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source exposes the current page's rendered markup.
type Source interface {
	HTML(ctx context.Context) (string, error)
}

// Probe is a best-effort structural query for one field.
// It returns the value and true when found, or false when the structure is absent.
type Probe interface {
	Field() Field
	Probe(doc *goquery.Document) (string, bool)
}

// Extractor composes field probes into a full Record.
type Extractor struct {
	probes []Probe
}

// New creates an Extractor. With no probes, DefaultProbes are used.
func New(probes ...Probe) *Extractor {
	if len(probes) == 0 {
		probes = DefaultProbes()
	}
	return &Extractor{probes: probes}
}

// DefaultProbes returns the profile page probes: primary heading for the name,
// the medium body text for the headline, and the sections enclosing the
// about and experience anchors.
func DefaultProbes() []Probe {
	return []Probe{
		FirstText{Target: FieldFullName, Selector: "h1"},
		FirstText{Target: FieldHeadline, Selector: "div.text-body-medium"},
		SectionText{Target: FieldAbout, AnchorID: "about"},
		SectionText{Target: FieldExperience, AnchorID: "experience"},
	}
}

// Extract reads the page markup and builds a Record. The only error is a failure
// to read markup from the page at all; missing fields never fail extraction.
func (e *Extractor) Extract(ctx context.Context, src Source, identifier string) (Record, error) {
	html, err := src.HTML(ctx)
	if err != nil {
		return NewRecord(identifier), fmt.Errorf("failed to read page markup: %w", err)
	}
	return e.ExtractHTML(identifier, html), nil
}

// ExtractHTML builds a Record from raw markup. It always returns a well-formed record.
func (e *Extractor) ExtractHTML(identifier, html string) Record {
	rec := NewRecord(identifier)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec
	}

	for _, p := range e.probes {
		if v, ok := runProbe(p, doc); ok {
			rec.fill(p.Field(), v)
		}
	}
	return rec
}

// runProbe isolates a probe so a fault in one field leaves the others intact.
func runProbe(p Probe, doc *goquery.Document) (v string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = "", false
		}
	}()
	v, ok = p.Probe(doc)
	if ok && strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, ok
}

// FirstText reads the text of the first element matching Selector.
type FirstText struct {
	Target   Field
	Selector string
}

// Field implements Probe.
func (p FirstText) Field() Field { return p.Target }

// Probe implements Probe.
func (p FirstText) Probe(doc *goquery.Document) (string, bool) {
	sel := doc.Find(p.Selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(visibleText(sel))
	return text, text != ""
}

// SectionText reads the text of the nearest <section> enclosing the element with AnchorID.
type SectionText struct {
	Target   Field
	AnchorID string
}

// Field implements Probe.
func (p SectionText) Field() Field { return p.Target }

// Probe implements Probe.
func (p SectionText) Probe(doc *goquery.Document) (string, bool) {
	anchor := doc.Find("#" + p.AnchorID).First()
	if anchor.Length() == 0 {
		return "", false
	}
	section := anchor.Closest("section")
	if section.Length() == 0 {
		return "", false
	}
	text := visibleText(section)
	return text, text != ""
}

// visibleText returns whitespace-normalized text, skipping non-rendered and
// screen-reader-only nodes.
func visibleText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("script, style, noscript, template, .visually-hidden").Remove()
	return cleanWhitespace(clone.Text())
}

// cleanWhitespace trims each line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
