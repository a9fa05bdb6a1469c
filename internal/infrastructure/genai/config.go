package genai

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed processor.yaml
var defaultProcessorYAML []byte

// ProcessorConfig is the externalised data of the processor: the model fallback list and the prompt template.
type ProcessorConfig struct {
	Models []string `yaml:"models"`
	Prompt string   `yaml:"prompt"`
}

// DefaultProcessorConfig は埋め込みの processor.yaml を返す。
func DefaultProcessorConfig() ProcessorConfig {
	cfg, err := parseProcessorConfig(defaultProcessorYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded processor.yaml is invalid: %v", err))
	}
	return cfg
}

// LoadProcessorConfig は path の YAML を読み込む。空文字なら埋め込みの既定値を使う。
// YAML 側で省略された項目は既定値で補う。
func LoadProcessorConfig(path string) (ProcessorConfig, error) {
	defaults := DefaultProcessorConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ProcessorConfig{}, fmt.Errorf("read processor config: %w", err)
	}
	cfg, err := parseProcessorConfig(raw)
	if err != nil {
		return ProcessorConfig{}, fmt.Errorf("parse processor config %s: %w", path, err)
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaults.Models
	}
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = defaults.Prompt
	}
	return cfg, cfg.Validate()
}

// WithModels returns a copy using models when it is non-empty.
func (c ProcessorConfig) WithModels(models []string) ProcessorConfig {
	if len(models) == 0 {
		return c
	}
	c.Models = append([]string(nil), models...)
	return c
}

func (c ProcessorConfig) Validate() error {
	if len(c.Models) == 0 {
		return errors.New("processor config: at least one model is required")
	}
	for _, model := range c.Models {
		if strings.TrimSpace(model) == "" {
			return errors.New("processor config: model identifier must not be blank")
		}
	}
	_, err := newPrompt(c.Prompt)
	return err
}

func parseProcessorConfig(raw []byte) (ProcessorConfig, error) {
	var cfg ProcessorConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return ProcessorConfig{}, err
	}
	for i, model := range cfg.Models {
		cfg.Models[i] = strings.TrimSpace(model)
	}
	return cfg, nil
}

// prompt は評価値と本文を埋め込むテンプレート。
type prompt struct {
	tmpl *template.Template
}

type promptData struct {
	Rating int
	Review string
}

func newPrompt(text string) (*prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("processor config: prompt template is empty")
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("processor config: invalid prompt template: %w", err)
	}
	return &prompt{tmpl: tmpl}, nil
}

func (p *prompt) render(rating int, review string) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, promptData{Rating: rating, Review: review}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
