// Package draft turns a scraped profile record into a first outreach message.
package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/lead-harvester/internal/extract"
)

// GenericGreeting is used whenever the record carries no usable name.
const GenericGreeting = "Hi there, I came across your profile and would love to connect."

// Drafter produces greeting text for a record. Implementations never fail;
// they fall back to a generic greeting instead.
type Drafter interface {
	Draft(ctx context.Context, rec extract.Record) string
}

// Template is the deterministic placeholder drafter.
type Template struct{}

// Draft implements Drafter.
func (Template) Draft(_ context.Context, rec extract.Record) string {
	if rec.LowConfidence() {
		return GenericGreeting
	}

	first := FirstName(rec.FullName)
	headline := strings.TrimSpace(rec.Headline)
	if headline == "" {
		return fmt.Sprintf("Hi %s, I came across your profile and would love to connect.", first)
	}
	return fmt.Sprintf("Hi %s, I saw your experience in %s...", first, headline)
}

// FirstName returns the first whitespace-separated token of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
