package legaldoc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"
)

// Invoker performs one schema-constrained model call against an uploaded
// file. The abstraction exists so the classifier and extractor can be
// exercised without a live Gemini client.
type Invoker interface {
	Generate(ctx context.Context, model, prompt string, ref *FileRef, schema *genai.Schema) ([]byte, error)
}

// genaiInvoker is the production Invoker backed by the Gemini API.
type genaiInvoker struct {
	client   *genai.Client
	log      *slog.Logger
	attempts uint
	delay    time.Duration
}

func (gv *genaiInvoker) Generate(ctx context.Context, model, prompt string, ref *FileRef, schema *genai.Schema) ([]byte, error) {
	if gv.client == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}
	if ref == nil {
		return nil, fmt.Errorf("no file reference provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromFile(genai.File{URI: ref.URI, MIMEType: ref.MIMEType}),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	gv.log.Debug("generating content",
		"model", model,
		"file_uri", ref.URI,
		"prompt_length", len(prompt))

	var resp *genai.GenerateContentResponse
	err := retry.Do(
		func() error {
			var genErr error
			resp, genErr = gv.client.Models.GenerateContent(ctx, model, contents, config)
			if genErr != nil {
				gv.log.Debug("generate attempt failed", "model", model, "error", genErr)
			}
			return genErr
		},
		retry.Context(ctx),
		retry.Attempts(gv.attempts),
		retry.Delay(gv.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in candidate content")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("no text in first part of response")
	}

	gv.log.Debug("received response", "model", model, "response_length", len(text))
	return SanitizeJSONResponse([]byte(text)), nil
}

// SanitizeJSONResponse strips whitespace and markdown code fences that
// models occasionally wrap around JSON output.
func SanitizeJSONResponse(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
