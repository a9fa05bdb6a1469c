package domain

import "time"

// Review is a persisted review as seen by the admin console.
type Review struct {
	Rating    Rating
	Text      string
	Summary   string
	Action    string
	Reply     string
	Timestamp time.Time
}

// Metrics aggregates the review table for the dashboard header.
type Metrics struct {
	Total         int
	AverageRating float64
	NegativeCount int
}

// Dashboard is everything the admin console renders on load.
type Dashboard struct {
	Metrics Metrics
	Feed    []Review
}
