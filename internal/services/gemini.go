package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend talks to Google's Gemini models.
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

func (g *GeminiBackend) Complete(ctx context.Context, turns []Turn) (*Completion, error) {
	history, last := toGeminiContents(turns)

	cs := g.model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &Completion{BlockReason: blockReason(blocked)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	return &Completion{Text: extractText(resp)}, nil
}

// toGeminiContents splits turns into chat history and the final user message.
func toGeminiContents(turns []Turn) (history []*genai.Content, last *genai.Content) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents[:len(contents)-1], contents[len(contents)-1]
}

func blockReason(blocked *genai.BlockedError) string {
	switch {
	case blocked.PromptFeedback != nil:
		return fmt.Sprint(blocked.PromptFeedback.BlockReason)
	case blocked.Candidate != nil:
		return fmt.Sprint(blocked.Candidate.FinishReason)
	default:
		return "unknown"
	}
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
