package mongo

import (
	"testing"
	"time"

	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReviewDocument_BSONRoundTrip(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	at := time.Date(2025, 4, 5, 6, 7, 8, 0, jst)
	review := &domain.Review{
		Rating:    3,
		Text:      "okay",
		Summary:   "average",
		Action:    "none",
		Reply:     "thanks",
		Timestamp: at,
		ModelUsed: "models/m1",
	}

	raw, err := bson.Marshal(newReviewDocument(review))
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	var decoded ReviewDocument
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}

	got := decoded.toDomain()
	if got.Rating != 3 || got.Text != "okay" || got.Summary != "average" || got.Action != "none" || got.Reply != "thanks" {
		t.Errorf("toDomain() = %+v", got)
	}
	if !got.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, at)
	}
	if got.ModelUsed != "models/m1" {
		t.Errorf("ModelUsed = %q", got.ModelUsed)
	}
}

func TestReviewDocument_ToAdminDomainRejectsBadRating(t *testing.T) {
	if _, err := (ReviewDocument{Rating: 0}).toAdminDomain(); err == nil {
		t.Error("toAdminDomain() error = nil, want error for rating 0")
	}
	got, err := (ReviewDocument{Rating: 1, Review: "late"}).toAdminDomain()
	if err != nil {
		t.Fatalf("toAdminDomain() error = %v", err)
	}
	if !got.Rating.IsNegative() || got.Text != "late" {
		t.Errorf("toAdminDomain() = %+v", got)
	}
}
