// Package ai wraps the hosted Gemini API behind the small completion and
// transcription interfaces the chat flow consumes.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Client is a thin wrapper around the Gemini API client.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a Gemini-backed client
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Client{client: client, modelName: modelName}, nil
}

// NewClientFromEnv creates a client from GEMINI_API_KEY and GEMINI_MODEL
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}
	return NewClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
}

// Close releases the underlying API client
func (c *Client) Close() error {
	return c.client.Close()
}

// Complete sends the system instruction plus one part per turn and returns
// the reply text.
func (c *Client) Complete(ctx context.Context, system string, turns []string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	parts := make([]genai.Part, 0, len(turns))
	for _, turn := range turns {
		parts = append(parts, genai.Text(turn))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	return textFromResponse(resp)
}

// Transcribe sends the raw audio bytes inline and asks the model for a
// verbatim transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	model := c.client.GenerativeModel(c.modelName)
	resp, err := model.GenerateContent(ctx,
		genai.Text("Transcribe this audio recording verbatim. Return only the spoken text."),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return textFromResponse(resp)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("API returned no candidates")
	}

	var out string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}

	if out == "" {
		return "", errors.New("API returned empty content")
	}
	return out, nil
}
