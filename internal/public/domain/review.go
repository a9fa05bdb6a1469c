package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5

	// DefaultSummary, DefaultAction and DefaultReply fill AI fields the model left out.
	DefaultSummary = "N/A"
	DefaultAction  = "N/A"
	DefaultReply   = "Thank you!"
)

var (
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrEmptyReview   = errors.New("review text is required")
)

// Review represents one submitted review together with its AI annotations.
type Review struct {
	Rating    int
	Text      string
	Summary   string
	Action    string
	Reply     string
	Timestamp time.Time
	// ModelUsed is the model identifier that produced the annotations. Not persisted.
	ModelUsed string
}

// Analysis is what the text-generation service returned for a review.
type Analysis struct {
	Summary   string
	Action    string
	Reply     string
	ModelUsed string
}

// ValidateRating は評価値が 1〜5 の範囲にあるか検証する。
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

// NewReview は投稿内容と AI の解析結果から Review を組み立てる。
// AI 側で欠けた項目は固定の既定値で埋め、6 項目すべてが必ず揃うようにする。
func NewReview(rating int, text string, analysis Analysis, at time.Time) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReview
	}

	return &Review{
		Rating:    rating,
		Text:      text,
		Summary:   valueOrDefault(analysis.Summary, DefaultSummary),
		Action:    valueOrDefault(analysis.Action, DefaultAction),
		Reply:     valueOrDefault(analysis.Reply, DefaultReply),
		Timestamp: at,
		ModelUsed: analysis.ModelUsed,
	}, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
