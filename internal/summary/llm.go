package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LLMSummarizer asks a langchaingo model for the summary text.
type LLMSummarizer struct {
	model       llms.Model
	temperature float64
}

func NewLLMSummarizer(model llms.Model) *LLMSummarizer {
	return &LLMSummarizer{model: model, temperature: 0.4}
}

// NewOpenAI connects to an OpenAI-compatible endpoint. An empty baseURL uses
// the library default.
func NewOpenAI(apiKey, baseURL, model string) (*LLMSummarizer, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary model client: %w", err)
	}
	return NewLLMSummarizer(m), nil
}

func (s *LLMSummarizer) Summarize(ctx context.Context, in Input) (string, error) {
	system, user := BuildPrompt(in)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(s.temperature))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptySummary
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}
