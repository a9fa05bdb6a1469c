package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateRating(t *testing.T) {
	tests := []struct {
		rating  int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{3, false},
		{5, false},
		{6, true},
		{-1, true},
	}
	for _, tt := range tests {
		err := ValidateRating(tt.rating)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRating(%d) error = %v, wantErr %v", tt.rating, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidRating) {
			t.Errorf("ValidateRating(%d) error = %v, want ErrInvalidRating", tt.rating, err)
		}
	}
}

func TestNewReview_FillsDefaults(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	review, err := NewReview(4, "Nice shirt", Analysis{Summary: "  ", ModelUsed: "models/x"}, at)
	if err != nil {
		t.Fatalf("NewReview() error = %v", err)
	}
	if review.Summary != DefaultSummary {
		t.Errorf("Summary = %q, want %q", review.Summary, DefaultSummary)
	}
	if review.Action != DefaultAction {
		t.Errorf("Action = %q, want %q", review.Action, DefaultAction)
	}
	if review.Reply != DefaultReply {
		t.Errorf("Reply = %q, want %q", review.Reply, DefaultReply)
	}
	if !review.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", review.Timestamp, at)
	}
	if review.ModelUsed != "models/x" {
		t.Errorf("ModelUsed = %q, want models/x", review.ModelUsed)
	}
}

func TestNewReview_KeepsAnalysis(t *testing.T) {
	analysis := Analysis{Summary: "s", Action: "a", Reply: "r"}

	review, err := NewReview(1, "late", analysis, time.Now())
	if err != nil {
		t.Fatalf("NewReview() error = %v", err)
	}
	if review.Summary != "s" || review.Action != "a" || review.Reply != "r" {
		t.Errorf("got (%q, %q, %q), want (s, a, r)", review.Summary, review.Action, review.Reply)
	}
	if review.Text != "late" || review.Rating != 1 {
		t.Errorf("got rating=%d text=%q, want 1 late", review.Rating, review.Text)
	}
}

func TestNewReview_Rejects(t *testing.T) {
	if _, err := NewReview(0, "text", Analysis{}, time.Now()); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("rating 0: error = %v, want ErrInvalidRating", err)
	}
	if _, err := NewReview(3, " \n\t", Analysis{}, time.Now()); !errors.Is(err, ErrEmptyReview) {
		t.Errorf("blank text: error = %v, want ErrEmptyReview", err)
	}
}
