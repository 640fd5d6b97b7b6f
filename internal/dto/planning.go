package dto

import (
	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/models"
)

// WeekPlan is the response for a planned or stored week.
type WeekPlan struct {
	Week         string                         `json:"week" yaml:"week"`
	PreviousWeek string                         `json:"previous_week,omitempty" yaml:"previous_week,omitempty"`
	Assignments  map[string][]models.Assignment `json:"assignments" yaml:"assignments"`
	Conflicts    map[string][]string            `json:"conflicts" yaml:"conflicts"`
	Statistics   allocation.Statistics          `json:"statistics" yaml:"statistics"`
	Warnings     []string                       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ClearWeekResult reports whether a week had stored assignments.
type ClearWeekResult struct {
	Week    string `json:"week"`
	Cleared bool   `json:"cleared"`
}

// PublishedReport describes a report made available through a signed link.
type PublishedReport struct {
	Week      string `json:"week"`
	File      string `json:"file"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
