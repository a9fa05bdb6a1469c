package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sngm3741/feedback-dashboard/internal/infrastructure/csvfile"
	mongodoc "github.com/sngm3741/feedback-dashboard/internal/infrastructure/mongo"
	publicapp "github.com/sngm3741/feedback-dashboard/internal/public/application"
	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seed は管理画面の確認用にダミーのレビューを追記する。AI は呼ばず、評価に応じた定型文を入れる。
// 既存のレビューは削除しない。

type seedOptions struct {
	envFile    string
	backend    string
	csvPath    string
	count      int
	days       int
	randomSeed int64
}

type sample struct {
	text    string
	summary string
	action  string
	reply   string
}

var samplesByRating = map[int][]sample{
	1: {
		{"The order arrived two weeks late and the box was crushed.", "Customer received a late, damaged delivery.", "Issue Refund", "We're very sorry about the delay and damage. A refund is on its way."},
		{"Support never answered my emails. Terrible experience.", "Customer could not reach support.", "Escalate to Support Lead", "We apologise for the silence. Our support lead will contact you today."},
	},
	2: {
		{"Size chart was wrong, had to return the shoes.", "Sizing information was inaccurate.", "Review Size Chart", "Sorry for the trouble with sizing. We're correcting the chart."},
	},
	3: {
		{"Product is okay but delivery took longer than promised.", "Average product, slow delivery.", "Check Logistics Partner", "Thanks for the feedback. We're looking into delivery times."},
	},
	4: {
		{"Good quality shirt, fits well. Packaging could be better.", "Happy with quality, minor packaging concern.", "Forward to Packaging Team", "Glad you like the shirt! We'll pass on your packaging note."},
	},
	5: {
		{"Amazing experience, fast delivery and great prices!", "Very satisfied with speed and price.", "Send Thank You Note", "Thank you so much! We're thrilled you enjoyed shopping with us."},
		{"素晴らしい品質でした。また利用します。", "Customer praised the quality and will return.", "Send Thank You Note", "Thank you for your kind words!"},
	},
}

func main() {
	opts := parseFlags()

	if err := godotenv.Load(opts.envFile); err != nil {
		log.Printf("%s を読み込めませんでした。環境変数のみを使用します: %v", opts.envFile, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	repo, closeFn, err := openRepository(ctx, opts)
	if err != nil {
		log.Fatalf("ストアの初期化に失敗しました: %v", err)
	}
	defer closeFn()

	if err := repo.Initialize(ctx); err != nil {
		log.Fatalf("ストアの初期化に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	reviews := generateReviews(rng, opts.count, opts.days, time.Now())
	for _, review := range reviews {
		if err := repo.Append(ctx, review); err != nil {
			log.Fatalf("レビューの追記に失敗しました: %v", err)
		}
	}

	log.Printf("Seed 完了: backend=%s reviews=%d seed=%d", opts.backend, len(reviews), opts.randomSeed)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env", ".env", "読み込む env ファイル")
	flag.StringVar(&opts.backend, "backend", "", "csv または mongo (既定は STORE_BACKEND)")
	flag.StringVar(&opts.csvPath, "csv", "", "CSV のパス (既定は REVIEWS_CSV_PATH)")
	flag.IntVar(&opts.count, "count", 20, "追記するレビュー数")
	flag.IntVar(&opts.days, "days", 30, "timestamp を過去何日に分散させるか")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "乱数シード（再現用）")
	flag.Parse()

	if opts.count <= 0 {
		log.Fatal("count は 1 以上を指定してください")
	}
	if opts.days <= 0 {
		opts.days = 1
	}
	return opts
}

func openRepository(ctx context.Context, opts seedOptions) (publicapp.ReviewRepository, func(), error) {
	backend := strings.ToLower(firstNonEmpty(opts.backend, os.Getenv("STORE_BACKEND"), "csv"))
	switch backend {
	case "csv":
		path := firstNonEmpty(opts.csvPath, os.Getenv("REVIEWS_CSV_PATH"), "reviews.csv")
		return csvfile.NewReviewRepository(csvfile.NewTable(path)), func() {}, nil
	case "mongo":
		uri := firstNonEmpty(os.Getenv("MONGO_URI"), "mongodb://localhost:27017")
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, nil, fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
		}
		db := client.Database(firstNonEmpty(os.Getenv("MONGO_DB"), "feedback"))
		repo := mongodoc.NewReviewRepository(db, firstNonEmpty(os.Getenv("REVIEW_COLLECTION"), "reviews"))
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("未知の backend です: %s", backend)
	}
}

// generateReviews は古い順に並んだレビューを返す。追記順と timestamp 順が一致する。
func generateReviews(rng *rand.Rand, count, days int, now time.Time) []*domain.Review {
	span := time.Duration(days) * 24 * time.Hour
	offsets := make([]time.Duration, count)
	for i := range offsets {
		offsets[i] = time.Duration(rng.Int63n(int64(span)))
	}
	// 降順に並べて古いものから追記する
	for i := 1; i < len(offsets); i++ {
		for j := i; j > 0 && offsets[j] > offsets[j-1]; j-- {
			offsets[j], offsets[j-1] = offsets[j-1], offsets[j]
		}
	}

	reviews := make([]*domain.Review, 0, count)
	for _, offset := range offsets {
		rating := domain.MinRating + rng.Intn(domain.MaxRating)
		candidates := samplesByRating[rating]
		s := candidates[rng.Intn(len(candidates))]
		review, err := domain.NewReview(rating, s.text, domain.Analysis{
			Summary:   s.summary,
			Action:    s.action,
			Reply:     s.reply,
			ModelUsed: "seed",
		}, now.Add(-offset).Truncate(time.Second))
		if err != nil {
			log.Fatalf("サンプルレビューの生成に失敗しました: %v", err)
		}
		reviews = append(reviews, review)
	}
	return reviews
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
