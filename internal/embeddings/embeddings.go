/*
Copyright 2025 Ledgerlint Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package embeddings wraps the Gemini embedding API behind the matcher's
// encoder contract. Construction is best-effort: a missing API key or a
// failed client handshake yields an unavailable encoder, never an error that
// blocks the pipeline.
package embeddings

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const encodeMaxRetries = 3

// Client encodes merchant strings into embedding vectors.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient dials the embedding backend. Credentials and routing follow the
// GOOGLE_API_KEY / GOOGLE_GENAI_USE_VERTEXAI environment variables the SDK
// reads on its own. The returned client may be unavailable; callers check
// Available before relying on it.
func NewClient(ctx context.Context, model string) *Client {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		logrus.WithError(err).Warn("embedding client unavailable, semantic matching disabled")
		return &Client{}
	}
	return &Client{client: client, model: model}
}

// Available reports whether the encoder can serve Encode calls.
func (c *Client) Available() bool {
	return c != nil && c.client != nil
}

// Encode returns one vector per input text, in input order. Transient API
// failures are retried with exponential backoff before giving up.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.Available() {
		return nil, errors.New("embedding client not available")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	var resp *genai.EmbedContentResponse
	operation := func() error {
		var err error
		resp, err = c.client.Models.EmbedContent(ctx, c.model, contents, nil)
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
	), encodeMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errors.Wrap(err, "embed content")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.Errorf("embed content: got %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
