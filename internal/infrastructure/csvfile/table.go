package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Header is the fixed column layout of the review table.
var Header = []string{"rating", "review", "summary", "action", "reply", "timestamp"}

// ErrMalformedRow is returned when a stored row cannot be decoded.
var ErrMalformedRow = errors.New("malformed review row")

// TimestampLayout is used when writing timestamps.
const TimestampLayout = time.RFC3339Nano

// pandas の Timestamp.now() が書き出していた形式も読めるようにしておく。
var readLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Row は CSV の 1 行をカラム順に保持する。
type Row struct {
	Rating    int
	Review    string
	Summary   string
	Action    string
	Reply     string
	Timestamp time.Time
}

// Table は単一の CSV ファイルをレビュー表として扱う。
// Append はファイル全体を読み直して書き戻すため、同一プロセス内ではミューテックスで直列化する。
// 別プロセスからの同時書き込みは保護しない。
type Table struct {
	path string
	mu   sync.Mutex
}

func NewTable(path string) *Table {
	return &Table{path: path}
}

func (t *Table) Path() string {
	return t.path
}

// Initialize はファイルが無い場合にヘッダーのみの表を作成する。既存ファイルには触れない。
func (t *Table) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return t.writeAll(nil)
}

// Append は既存の表を読み込み、末尾に row を連結してファイル全体を書き直す。
func (t *Table) Append(row Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.readAll()
	if err != nil {
		return err
	}
	rows = append(rows, row)
	return t.writeAll(rows)
}

// ReadAll returns every row in file order. A missing file yields an empty table.
func (t *Table) ReadAll() ([]Row, error) {
	return t.readAll()
}

func (t *Table) readAll() ([]Row, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", t.path, err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.path, err)
		}
		row, err := decodeRow(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeAll は同じディレクトリの一時ファイルへ書き出してから rename で置き換える。
func (t *Table) writeAll(rows []Row) (err error) {
	dir := filepath.Dir(t.path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(t.path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	writer := csv.NewWriter(f)
	if err = writer.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err = writer.Write(encodeRow(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", tmpPath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, t.path); err != nil {
		return fmt.Errorf("replace %s: %w", t.path, err)
	}
	return nil
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Excel などが付ける BOM を除去する
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		columns[name] = i
	}
	for _, required := range []string{"rating", "review"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: header is missing column %q", ErrMalformedRow, required)
		}
	}
	return columns, nil
}

func decodeRow(record []string, columns map[string]int) (Row, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	rating, err := parseRating(field("rating"))
	if err != nil {
		return Row{}, err
	}

	return Row{
		Rating:    rating,
		Review:    field("review"),
		Summary:   field("summary"),
		Action:    field("action"),
		Reply:     field("reply"),
		Timestamp: parseTimestamp(field("timestamp")),
	}, nil
}

func encodeRow(row Row) []string {
	timestamp := ""
	if !row.Timestamp.IsZero() {
		timestamp = row.Timestamp.Format(TimestampLayout)
	}
	return []string{
		strconv.Itoa(row.Rating),
		row.Review,
		row.Summary,
		row.Action,
		row.Reply,
		timestamp,
	}
}

func parseRating(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.Atoi(raw)
	if err != nil {
		// pandas は欠損を含む列を float で書き出すことがある ("5.0")
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("rating %q is not an integer", raw)
		}
		value = int(f)
	}
	if value < 1 || value > 5 {
		return 0, fmt.Errorf("rating %d is out of range", value)
	}
	return value, nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
