package application

import (
	"context"
	"sort"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
	"gonum.org/v1/gonum/stat"
)

type dashboardService struct {
	repo ReviewRepository
}

func NewDashboardService(repo ReviewRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// Load はレビュー全件を読み込み、集計値と新しい順のフィードを返す。
func (s *dashboardService) Load(ctx context.Context) (*admindomain.Dashboard, error) {
	reviews, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	return &admindomain.Dashboard{
		Metrics: ComputeMetrics(reviews),
		Feed:    SortFeed(reviews),
	}, nil
}

// ComputeMetrics returns total count, mean rating (0 when empty) and the number of ratings below 3.
func ComputeMetrics(reviews []admindomain.Review) admindomain.Metrics {
	metrics := admindomain.Metrics{Total: len(reviews)}
	if len(reviews) == 0 {
		return metrics
	}

	ratings := make([]float64, 0, len(reviews))
	for _, review := range reviews {
		ratings = append(ratings, review.Rating.Float64())
		if review.Rating.IsNegative() {
			metrics.NegativeCount++
		}
	}
	metrics.AverageRating = stat.Mean(ratings, nil)
	return metrics
}

// SortFeed は timestamp 降順に並べ替えたコピーを返す。同時刻の行はファイル順を保つ。
func SortFeed(reviews []admindomain.Review) []admindomain.Review {
	feed := append([]admindomain.Review(nil), reviews...)
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	return feed
}
