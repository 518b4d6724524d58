// Package extract turns catalog page regions into typed records with an LLM.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/metrics"
	"github.com/MMMarcy/voxlume/internal/models"
)

// ErrEmptyCompletion is returned when the model answers with blank text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Config tunes prompt construction.
type Config struct {
	// TokenBudget caps the page content placed in a prompt; 0 disables it.
	TokenBudget int
	// Encoding is the tiktoken encoding used to count tokens.
	Encoding string
	// Markdown converts region HTML to Markdown before prompting.
	Markdown    bool
	Temperature float64
}

// OpenAIConfig selects an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewOpenAI builds a langchaingo model for an OpenAI-compatible API.
func NewOpenAI(cfg OpenAIConfig) (llms.Model, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return llm, nil
}

// Extractor implements crawler.StructuredExtractor and crawler.Enricher.
type Extractor struct {
	llm       llms.Model
	cfg       Config
	tokens    *TokenCounter
	converter *md.Converter
	logger    *zap.Logger
}

// New builds an Extractor around llm.
func New(llm llms.Model, cfg Config, logger *zap.Logger) (*Extractor, error) {
	if llm == nil {
		return nil, errors.New("extract: nil model")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens, err := NewTokenCounter(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		llm:       llm,
		cfg:       cfg,
		tokens:    tokens,
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}, nil
}

// ExtractSubmissions reads the submissions table of a listing page.
func (e *Extractor) ExtractSubmissions(ctx context.Context, html string) (models.SubmissionList, bool, error) {
	var list models.SubmissionList
	ok, err := e.structured(ctx, "submissions", listingPrompt, html, &list)
	if err != nil || !ok {
		return models.SubmissionList{}, false, err
	}
	if len(list.Submissions) == 0 {
		metrics.ObserveExtraction("submissions", "empty")
		return models.SubmissionList{}, false, nil
	}
	return list, true, nil
}

// ExtractAudiobook reads the post of a detail page.
func (e *Extractor) ExtractAudiobook(ctx context.Context, html string) (models.AudiobookMetadata, bool, error) {
	var meta models.AudiobookMetadata
	ok, err := e.structured(ctx, "audiobook", detailPrompt, html, &meta)
	if err != nil || !ok {
		return models.AudiobookMetadata{}, false, err
	}
	return meta, true, nil
}

// ShortDescription summarises description in a sentence or two.
func (e *Extractor) ShortDescription(ctx context.Context, description string) (string, error) {
	return e.text(ctx, "short_description", render(shortDescriptionPrompt, "description", description))
}

// EmbeddingDescription rewrites description for vector search.
func (e *Extractor) EmbeddingDescription(ctx context.Context, description string) (string, error) {
	return e.text(ctx, "embedding_description", render(embeddingDescriptionPrompt, "description", description))
}

// structured prompts for a JSON object and decodes it into out. ok is false
// when the answer is not a JSON object.
func (e *Extractor) structured(ctx context.Context, task, template, html string, out any) (bool, error) {
	content, err := e.prepare(html)
	if err != nil {
		metrics.ObserveExtraction(task, "error")
		return false, err
	}
	completion, err := llms.GenerateFromSinglePrompt(ctx, e.llm, render(template, "content", content),
		llms.WithJSONMode(),
		llms.WithTemperature(e.cfg.Temperature),
	)
	if err != nil {
		metrics.ObserveExtraction(task, "error")
		return false, fmt.Errorf("%s completion: %w", task, err)
	}
	if err := decodeJSON(completion, out); err != nil {
		metrics.ObserveExtraction(task, "invalid")
		e.logger.Warn("model answer is not usable JSON", zap.String("task", task), zap.Error(err))
		return false, nil
	}
	metrics.ObserveExtraction(task, "ok")
	return true, nil
}

func (e *Extractor) text(ctx context.Context, task, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt, llms.WithTemperature(e.cfg.Temperature))
	if err != nil {
		metrics.ObserveExtraction(task, "error")
		return "", fmt.Errorf("%s completion: %w", task, err)
	}
	completion = strings.TrimSpace(completion)
	if completion == "" {
		metrics.ObserveExtraction(task, "empty")
		return "", ErrEmptyCompletion
	}
	metrics.ObserveExtraction(task, "ok")
	return completion, nil
}

// prepare converts region HTML into prompt content within the token budget.
func (e *Extractor) prepare(html string) (string, error) {
	content := html
	if e.cfg.Markdown {
		converted, err := e.converter.ConvertString(html)
		if err != nil {
			e.logger.Debug("markdown conversion failed, using html", zap.Error(err))
		} else {
			content = converted
		}
	}
	trimmed, cut, err := e.tokens.Trim(content, e.cfg.TokenBudget)
	if err != nil {
		return "", err
	}
	if cut {
		e.logger.Info("prompt content trimmed to token budget", zap.Int("budget", e.cfg.TokenBudget))
	}
	return trimmed, nil
}

// decodeJSON unmarshals the first JSON object in s, tolerating code fences
// and surrounding prose.
func decodeJSON(s string, out any) error {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object in completion")
	}
	return json.Unmarshal([]byte(s[start:end+1]), out)
}
