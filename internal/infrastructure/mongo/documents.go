package mongo

import (
	"time"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewDocument は MongoDB 上でのレビュースキーマ。CSV の 6 カラムに modelUsed を加えたもの。
type ReviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Rating    int                `bson:"rating"`
	Review    string             `bson:"review"`
	Summary   string             `bson:"summary"`
	Action    string             `bson:"action"`
	Reply     string             `bson:"reply"`
	Timestamp time.Time          `bson:"timestamp"`
	ModelUsed string             `bson:"modelUsed,omitempty"`
}

func newReviewDocument(review *domain.Review) ReviewDocument {
	return ReviewDocument{
		Rating:    review.Rating,
		Review:    review.Text,
		Summary:   review.Summary,
		Action:    review.Action,
		Reply:     review.Reply,
		Timestamp: review.Timestamp.UTC(),
		ModelUsed: review.ModelUsed,
	}
}

func (d ReviewDocument) toDomain() domain.Review {
	return domain.Review{
		Rating:    d.Rating,
		Text:      d.Review,
		Summary:   d.Summary,
		Action:    d.Action,
		Reply:     d.Reply,
		Timestamp: d.Timestamp,
		ModelUsed: d.ModelUsed,
	}
}

func (d ReviewDocument) toAdminDomain() (admindomain.Review, error) {
	rating, err := admindomain.NewRating(d.Rating)
	if err != nil {
		return admindomain.Review{}, err
	}
	return admindomain.Review{
		Rating:    rating,
		Text:      d.Review,
		Summary:   d.Summary,
		Action:    d.Action,
		Reply:     d.Reply,
		Timestamp: d.Timestamp,
	}, nil
}
