package csvfile

import (
	"context"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
)

// ReviewRepository は投稿画面向けに CSV 表を扱う実装リポジトリ。
type ReviewRepository struct {
	table *Table
}

func NewReviewRepository(table *Table) *ReviewRepository {
	return &ReviewRepository{table: table}
}

func (r *ReviewRepository) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.table.Initialize()
}

func (r *ReviewRepository) Append(ctx context.Context, review *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.table.Append(Row{
		Rating:    review.Rating,
		Review:    review.Text,
		Summary:   review.Summary,
		Action:    review.Action,
		Reply:     review.Reply,
		Timestamp: review.Timestamp,
	})
}

func (r *ReviewRepository) ReadAll(ctx context.Context) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.table.ReadAll()
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, domain.Review{
			Rating:    row.Rating,
			Text:      row.Review,
			Summary:   row.Summary,
			Action:    row.Action,
			Reply:     row.Reply,
			Timestamp: row.Timestamp,
		})
	}
	return reviews, nil
}

// AdminReviewRepository は管理画面向けに同じ CSV 表を読み取る。
type AdminReviewRepository struct {
	table *Table
}

func NewAdminReviewRepository(table *Table) *AdminReviewRepository {
	return &AdminReviewRepository{table: table}
}

func (r *AdminReviewRepository) ReadAll(ctx context.Context) ([]admindomain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.table.ReadAll()
	if err != nil {
		return nil, err
	}
	reviews := make([]admindomain.Review, 0, len(rows))
	for _, row := range rows {
		// rating は readAll で 1〜5 に検証済み
		rating, err := admindomain.NewRating(row.Rating)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, admindomain.Review{
			Rating:    rating,
			Text:      row.Review,
			Summary:   row.Summary,
			Action:    row.Action,
			Reply:     row.Reply,
			Timestamp: row.Timestamp,
		})
	}
	return reviews, nil
}
