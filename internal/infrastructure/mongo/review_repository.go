package mongo

import (
	"context"
	"fmt"

	admindomain "github.com/sngm3741/feedback-dashboard/internal/admin/domain"
	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository は投稿画面向けのレビュー保存を MongoDB で扱う実装リポジトリ。
type ReviewRepository struct {
	reviews *mongo.Collection
}

// NewReviewRepository は reviews コレクションを束縛したリポジトリを構築する。
func NewReviewRepository(db *mongo.Database, reviewCollection string) *ReviewRepository {
	return &ReviewRepository{reviews: db.Collection(reviewCollection)}
}

// Initialize は管理画面の並び替え用に timestamp の降順インデックスを用意する。
func (r *ReviewRepository) Initialize(ctx context.Context) error {
	_, err := r.reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}
	return nil
}

// Append は 1 件を InsertOne で追記する。既存ドキュメントは更新しない。
func (r *ReviewRepository) Append(ctx context.Context, review *domain.Review) error {
	if _, err := r.reviews.InsertOne(ctx, newReviewDocument(review)); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ReadAll(ctx context.Context) ([]domain.Review, error) {
	docs, err := findAllInInsertOrder(ctx, r.reviews)
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, doc.toDomain())
	}
	return reviews, nil
}

// AdminReviewRepository は管理画面向けにレビューを読み取る。
type AdminReviewRepository struct {
	reviews *mongo.Collection
}

func NewAdminReviewRepository(db *mongo.Database, reviewCollection string) *AdminReviewRepository {
	return &AdminReviewRepository{reviews: db.Collection(reviewCollection)}
}

func (r *AdminReviewRepository) ReadAll(ctx context.Context) ([]admindomain.Review, error) {
	docs, err := findAllInInsertOrder(ctx, r.reviews)
	if err != nil {
		return nil, err
	}
	reviews := make([]admindomain.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := doc.toAdminDomain()
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", doc.ID.Hex(), err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// findAllInInsertOrder は ObjectID の昇順 (= 挿入順) で全件を返す。
func findAllInInsertOrder(ctx context.Context, collection *mongo.Collection) ([]ReviewDocument, error) {
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]ReviewDocument, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
