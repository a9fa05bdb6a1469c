package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
)

func TestTable_InitializeWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "reviews.csv")
	table := NewTable(path)

	if err := table.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != "rating,review,summary,action,reply,timestamp" {
		t.Errorf("header = %q", got)
	}

	rows, err := table.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestTable_InitializeKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	content := "rating,review,summary,action,reply,timestamp\n4,kept,s,a,r,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewTable(path).Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != content {
		t.Errorf("Initialize() rewrote an existing file: %q", raw)
	}
}

func TestTable_AppendPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	table := NewTable(path)
	base := time.Date(2025, 5, 6, 7, 8, 9, 123456789, time.UTC)

	texts := []string{"first", "second, with comma", "third \"quoted\"\nmultiline"}
	for i, text := range texts {
		row := Row{Rating: i + 1, Review: text, Summary: "s", Action: "a", Reply: "r", Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := table.Append(row); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	rows, err := table.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != len(texts) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(texts))
	}
	for i, row := range rows {
		if row.Review != texts[i] {
			t.Errorf("rows[%d].Review = %q, want %q", i, row.Review, texts[i])
		}
		if row.Rating != i+1 {
			t.Errorf("rows[%d].Rating = %d, want %d", i, row.Rating, i+1)
		}
		if want := base.Add(time.Duration(i) * time.Minute); !row.Timestamp.Equal(want) {
			t.Errorf("rows[%d].Timestamp = %v, want %v", i, row.Timestamp, want)
		}
	}

	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "rating,review,summary,action,reply,timestamp\n") {
		t.Errorf("header not preserved: %q", raw)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the table (temp files leaked?)", len(entries))
	}
}

func TestTable_ReadAllMissingFile(t *testing.T) {
	rows, err := NewTable(filepath.Join(t.TempDir(), "nope.csv")).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestTable_ReadAllLegacyFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	content := "\ufeffrating,review,summary,action,reply,timestamp\n" +
		"5.0,pandas row,s,a,r,2025-01-02 03:04:05.678901\n" +
		"2,no timestamp,s,a,r,\n" +
		"3,bad timestamp,s,a,r,yesterday\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := NewTable(path).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].Rating != 5 {
		t.Errorf("rows[0].Rating = %d, want 5", rows[0].Rating)
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 678901000, time.Local)
	if !rows[0].Timestamp.Equal(want) {
		t.Errorf("rows[0].Timestamp = %v, want %v", rows[0].Timestamp, want)
	}
	if !rows[1].Timestamp.IsZero() || !rows[2].Timestamp.IsZero() {
		t.Errorf("unparseable timestamps should be zero: %v, %v", rows[1].Timestamp, rows[2].Timestamp)
	}
}

func TestTable_ReadAllMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"rating out of range", "rating,review\n9,too high\n"},
		{"rating not a number", "rating,review\nfive,text\n"},
		{"missing review column", "rating,summary\n5,s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reviews.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := NewTable(path).ReadAll()
			if !errors.Is(err, ErrMalformedRow) {
				t.Errorf("ReadAll() error = %v, want ErrMalformedRow", err)
			}
		})
	}
}

func TestReviewRepository_RoundTrip(t *testing.T) {
	table := NewTable(filepath.Join(t.TempDir(), "reviews.csv"))
	repo := NewReviewRepository(table)
	admin := NewAdminReviewRepository(table)
	ctx := context.Background()

	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	review, err := domain.NewReview(2, "slow delivery", domain.Analysis{Summary: "slow", Action: "check"}, at)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, review); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reviews, err := admin.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("len(reviews) = %d, want 1", len(reviews))
	}
	got := reviews[0]
	if got.Rating.Int() != 2 || got.Text != "slow delivery" || got.Summary != "slow" || got.Action != "check" || got.Reply != domain.DefaultReply {
		t.Errorf("got %+v", got)
	}
	if !got.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, at)
	}
}

func TestReviewRepository_CanceledContext(t *testing.T) {
	repo := NewReviewRepository(NewTable(filepath.Join(t.TempDir(), "reviews.csv")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Append(ctx, &domain.Review{Rating: 5, Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Append() error = %v, want context.Canceled", err)
	}
}
