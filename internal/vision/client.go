// Package vision turns photos of printed crosswords into playable puzzles
// using Gemini on Vertex AI. The model reads the grid and both clue lists
// from the image and returns a structured puzzle, which is validated before
// anyone gets to solve it.
package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion = "us-central1"
	defaultModel  = "gemini-2.5-flash"
)

// Client wraps the Google GenAI client for Vertex AI.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a client using Application Default Credentials. Set
// GOOGLE_APPLICATION_CREDENTIALS to the service account key file path.
func NewClient(ctx context.Context, projectID, region string) (*Client, error) {
	if region == "" {
		region = defaultRegion
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  defaultModel,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}
