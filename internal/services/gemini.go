package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

// Embedder is the narrow embedding-provider contract the pipeline depends
// on. Vectors have the configured fixed dimensionality.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer is the narrow completion-provider contract. The caller owns
// prompt construction and response parsing.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

type GeminiService interface {
	Embedder
	Completer
}

type geminiService struct {
	client       *genai.Client
	modelName    string
	embedModel   string
	embeddingDim int
}

func NewGeminiService(apiKey string, embeddingDim int) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:       client,
		modelName:    "gemini-2.5-flash",
		embedModel:   "text-embedding-004",
		embeddingDim: embeddingDim,
	}, nil
}

// Embedding input is capped at roughly 10000 tokens.
const maxEmbedBytes = 40000

// truncateForEmbedding cuts oversized text on a rune boundary, never
// mid-sequence.
func truncateForEmbedding(text string) string {
	if len(text) <= maxEmbedBytes {
		return text
	}
	cut := maxEmbedBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Embed implements Embedder.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateForEmbedding(text)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrProviderUnavailable)
	}

	vector := result.Embeddings[0].Values
	if len(vector) != g.embeddingDim {
		return nil, fmt.Errorf("%w: embedding dimensionality mismatch, got %d want %d",
			ErrInvalidInput, len(vector), g.embeddingDim)
	}

	return vector, nil
}

// Complete implements Completer.
func (g *geminiService) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", classifyProviderError(err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrProviderUnavailable)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrProviderUnavailable)
	}

	return text, nil
}

// classifyProviderError maps transport-level errors onto the screening
// error taxonomy: throttling is retriable with backoff, everything else
// surfaces immediately.
func classifyProviderError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", ErrProviderThrottled, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
