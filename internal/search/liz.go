package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// lizSystemPrompt sets Liz's tone and instructions.
const lizSystemPrompt = "Você é a Liz, assistente precisa e educada da OCESP. " +
	"Responda em português do Brasil. " +
	"Liste os artigos encontrados com ID e Título, em ordem de relevância. " +
	"Se nada for encontrado, sugira reformular a pergunta de forma clara."

// LizConfig holds configuration for the Liz answer formatter.
type LizConfig struct {
	// APIKey is the chat provider credential.
	APIKey string

	// Model is the chat model, e.g. gpt-4o-mini.
	Model string

	// Temperature controls sampling. Default: 0.2.
	Temperature float64
}

// Liz formats ranked results into prose with a chat model.
type Liz struct {
	llm    llms.Model
	config LizConfig
}

// NewLiz creates the Liz formatter.
func NewLiz(config LizConfig) (*Liz, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.2
	}

	llm, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}

	return &Liz{llm: llm, config: config}, nil
}

// Format asks the chat model to present the ranked list in Liz's tone.
// Callers handle the empty-results case; Format assumes a non-empty list.
func (l *Liz) Format(ctx context.Context, query string, results []Result) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, lizSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, lizUserPrompt(query, results)),
	}

	resp, err := l.llm.GenerateContent(ctx, messages, llms.WithTemperature(l.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// lizUserPrompt builds the user message: the question plus an ID — Title
// list the model must not embellish.
func lizUserPrompt(query string, results []Result) string {
	var list strings.Builder
	for _, r := range results {
		fmt.Fprintf(&list, "- %s — %s\n", r.ID, r.Title)
	}

	return fmt.Sprintf(
		"Pergunta do usuário: %s\nArtigos encontrados (ID — Título):\n%s\nFormate uma resposta breve no seu tom, sem inventar nada além do que está na lista.",
		query, list.String())
}

// Ensure Liz implements the Formatter interface.
var _ Formatter = (*Liz)(nil)
