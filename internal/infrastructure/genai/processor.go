package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sngm3741/feedback-dashboard/internal/public/domain"
)

const (
	FallbackSummary = "System Busy"
	FallbackAction  = "Manual Review"
	FallbackReply   = "Thank you for your feedback! (AI currently overloaded)"
)

// ErrAllModelsFailed is matched by the error Analyze returns when no model produced a usable answer.
var ErrAllModelsFailed = errors.New("all AI models failed")

// ExhaustedError carries the last error seen while walking the fallback list.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d AI models failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrAllModelsFailed, e.Last}
}

// Generator sends one prompt to one model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Processor はレビューごとにプロンプトを組み立て、モデル一覧を先頭から順に試す。
// いずれかのモデルが JSON を返した時点で打ち切り、全滅した場合は固定の代替結果を返す。
type Processor struct {
	generator Generator
	models    []string
	prompt    *prompt
	logger    *log.Logger
}

func NewProcessor(generator Generator, cfg ProcessorConfig, logger *log.Logger) (*Processor, error) {
	if generator == nil {
		return nil, errors.New("genai: generator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := newPrompt(cfg.Prompt)
	if err != nil {
		return nil, err
	}
	return &Processor{
		generator: generator,
		models:    append([]string(nil), cfg.Models...),
		prompt:    p,
		logger:    logger,
	}, nil
}

// Models returns the fallback list in attempt order.
func (p *Processor) Models() []string {
	return append([]string(nil), p.models...)
}

// FallbackAnalysis is returned when every model failed.
func FallbackAnalysis() domain.Analysis {
	return domain.Analysis{
		Summary: FallbackSummary,
		Action:  FallbackAction,
		Reply:   FallbackReply,
	}
}

// Analyze never fails outright: the returned Analysis is always usable.
// A non-nil error is an *ExhaustedError describing why the fallback content was used.
func (p *Processor) Analyze(ctx context.Context, text string, rating int) (domain.Analysis, error) {
	rendered, err := p.prompt.render(rating, text)
	if err != nil {
		return FallbackAnalysis(), &ExhaustedError{Attempts: 0, Last: err}
	}

	var lastErr error
	attempts := 0
	for _, model := range p.models {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts++

		analysis, err := p.attempt(ctx, model, rendered)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", model, err)
			p.logf("モデル %s の呼び出しに失敗。次のモデルを試します: %v", model, err)
			continue
		}
		analysis.ModelUsed = model
		return analysis, nil
	}

	p.logf("全モデルが失敗したため代替結果を返します: %v", lastErr)
	return FallbackAnalysis(), &ExhaustedError{Attempts: attempts, Last: lastErr}
}

func (p *Processor) attempt(ctx context.Context, model, rendered string) (analysis domain.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	raw, err := p.generator.Generate(ctx, model, rendered)
	if err != nil {
		return domain.Analysis{}, err
	}
	return ParseAnalysis(raw)
}

// ParseAnalysis は Markdown のコードフェンスを除去してから JSON オブジェクトとして解釈する。
// summary/action/reply 以外のキーは無視し、欠けたキーは空文字のまま返す。
func ParseAnalysis(raw string) (domain.Analysis, error) {
	cleaned := StripCodeFence(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Analysis{}, fmt.Errorf("parse model response as JSON: %w", err)
	}
	if payload == nil {
		return domain.Analysis{}, errors.New("parse model response as JSON: got null")
	}

	return domain.Analysis{
		Summary: stringify(payload["summary"]),
		Action:  stringify(payload["action"]),
		Reply:   stringify(payload["reply"]),
	}, nil
}

// StripCodeFence removes ```json and ``` markers and surrounding whitespace.
func StripCodeFence(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func (p *Processor) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
