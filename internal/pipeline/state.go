package pipeline

import "fmt"

// ItemState is the stage an item reached.
type ItemState string

// Item stages in processing order.
const (
	ItemPending   ItemState = "PENDING"
	ItemSkipped   ItemState = "SKIPPED"
	ItemNavigated ItemState = "NAVIGATED"
	ItemScraped   ItemState = "SCRAPED"
	ItemDrafted   ItemState = "DRAFTED"
	ItemPersisted ItemState = "PERSISTED"
	ItemFailed    ItemState = "FAILED"
	ItemCooldown  ItemState = "COOLDOWN"
)

// ProgressEvent represents a progress update during batch execution
type ProgressEvent struct {
	Index      int       `json:"index"`
	Identifier string    `json:"identifier"`
	State      ItemState `json:"state"`
	Message    string    `json:"message,omitempty"`
}

// ProgressCallback is called when an item changes stage
type ProgressCallback func(event ProgressEvent)

// RunState holds the counters of one batch run. It is never persisted.
type RunState struct {
	ProcessedCount int  `json:"processed_count"`
	DailyLimit     int  `json:"daily_limit"`
	Total          int  `json:"total"`
	Visited        int  `json:"visited"`
	Skipped        int  `json:"skipped"`
	Failed         int  `json:"failed"`
	LowConfidence  int  `json:"low_confidence"`
	StoppedAtLimit bool `json:"stopped_at_limit"`
}

// SessionError is a failure that invalidates the whole browser session and ends the run.
type SessionError struct {
	Identifier string
	Err        error
}

func (e *SessionError) Error() string {
	if e.Identifier == "" {
		return fmt.Sprintf("session failed: %v", e.Err)
	}
	return fmt.Sprintf("session failed while processing %s: %v", e.Identifier, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
