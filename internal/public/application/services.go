package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
)

// ErrSaveFailed wraps persistence errors returned by Submit.
var ErrSaveFailed = errors.New("save review")

// ReviewRepository persists submitted reviews.
// ReviewRepository は投稿されたレビューを永続化するためのポート。
type ReviewRepository interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, review *domain.Review) error
	ReadAll(ctx context.Context) ([]domain.Review, error)
}

// ReviewAnalyzer asks the text-generation service for summary, action and reply.
// 返却される Analysis は常に利用可能な値で、error は劣化した結果であることを示す警告として扱う。
type ReviewAnalyzer interface {
	Analyze(ctx context.Context, text string, rating int) (domain.Analysis, error)
}

// SubmitReviewCommand captures user input from the review form.
type SubmitReviewCommand struct {
	Rating int
	Text   string
}

// SubmitReviewResult is the outcome of a successful submission.
type SubmitReviewResult struct {
	Review *domain.Review
	// AIWarning is set when every model failed and placeholder content was stored.
	AIWarning error
}

// ReviewCommandService handles writing use-cases.
type ReviewCommandService interface {
	Submit(ctx context.Context, cmd SubmitReviewCommand) (*SubmitReviewResult, error)
}

// Option customises the command service.
type Option func(*reviewCommandService)

// WithClock replaces time.Now for timestamping submissions.
func WithClock(now func() time.Time) Option {
	return func(s *reviewCommandService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewReviewCommandService(repo ReviewRepository, analyzer ReviewAnalyzer, opts ...Option) ReviewCommandService {
	svc := &reviewCommandService{repo: repo, analyzer: analyzer, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type reviewCommandService struct {
	repo     ReviewRepository
	analyzer ReviewAnalyzer
	now      func() time.Time
}

// Submit は入力検証 → AI 解析 → 保存の順で 1 件のレビューを処理する。
// 保存に失敗した場合はリトライせず、AI の結果と ErrSaveFailed を両方返す。
func (s *reviewCommandService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*SubmitReviewResult, error) {
	if err := domain.ValidateRating(cmd.Rating); err != nil {
		return nil, err
	}
	// 空の本文で AI を呼ばないよう、解析前に検証しておく。
	if strings.TrimSpace(cmd.Text) == "" {
		return nil, domain.ErrEmptyReview
	}

	analysis, aiErr := s.analyzer.Analyze(ctx, cmd.Text, cmd.Rating)

	review, err := domain.NewReview(cmd.Rating, cmd.Text, analysis, s.now())
	if err != nil {
		return nil, err
	}

	result := &SubmitReviewResult{Review: review, AIWarning: aiErr}
	if err := s.repo.Append(ctx, review); err != nil {
		return result, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return result, nil
}
