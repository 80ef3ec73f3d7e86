package legaldoc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Classifier assigns a document class to an uploaded file by delegating to
// the model; there is no local heuristic fallback.
type Classifier struct {
	invoker Invoker
	prompts PromptProvider
	model   string
	log     *slog.Logger
}

// NewClassifier builds a Classifier.
func NewClassifier(invoker Invoker, prompts PromptProvider, model string, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{invoker: invoker, prompts: prompts, model: model, log: log}
}

// Classify asks the model to categorize the referenced document and returns
// the verdict. The raw output is validated against the document_type schema
// before being decoded.
func (c *Classifier) Classify(ctx context.Context, ref *FileRef) (*DocumentType, error) {
	prompt, err := c.prompts.GetPrompt(promptClassify, map[string]any{
		"classes":      classList(),
		"display_name": ref.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("render classification prompt: %w", err)
	}

	raw, err := c.invoker.Generate(ctx, c.model, prompt, ref, classificationResponseSchema())
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", ref.DisplayName, err)
	}

	if err := validateAgainstSchema(classificationSchemaName, raw); err != nil {
		return nil, fmt.Errorf("classify %s: %w", ref.DisplayName, err)
	}

	var dt DocumentType
	if err := json.Unmarshal(raw, &dt); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	if !dt.Classification.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, dt.Classification)
	}

	c.log.Info("document classified",
		"display_name", ref.DisplayName,
		"classification", dt.Classification,
		"confidence", dt.Confidence)
	return &dt, nil
}
