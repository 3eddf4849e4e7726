package db

import (
	"time"

	"github.com/google/uuid"
)

// Lead status values
const (
	// StatusScraped marks a lead whose profile was scraped and drafted, ready for human review
	StatusScraped = "SCRAPED"
)

// Lead represents a row in the leads table
type Lead struct {
	ID             uuid.UUID `json:"id"`
	LinkedInURL    string    `json:"linkedin_url"`
	FullName       string    `json:"full_name"`
	Headline       string    `json:"headline"`
	AboutSection   string    `json:"about_section"`
	ExperienceText string    `json:"experience_text"`
	Message1Draft  string    `json:"message_1_draft"`
	Status         string    `json:"status"`
	LastScrapedAt  time.Time `json:"last_scraped_at"`
	CreatedAt      time.Time `json:"created_at"`
}
