package legaldoc

import (
	"context"
	"fmt"
	"log/slog"
)

// Extractor populates the class-specific payload for a classified document.
// The class→schema mapping is direct; there is no plugin layer.
type Extractor struct {
	invoker Invoker
	prompts PromptProvider
	model   string
	log     *slog.Logger
}

// NewExtractor builds an Extractor.
func NewExtractor(invoker Invoker, prompts PromptProvider, model string, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{invoker: invoker, prompts: prompts, model: model, log: log}
}

// Extract requests a payload conforming to the schema for class. "Other" has
// no extraction path and yields an ExtractionError payload instead of
// invented data. The model output is schema-validated and then checked
// against the domain field rules before being accepted.
func (e *Extractor) Extract(ctx context.Context, ref *FileRef, class DocumentClass) (ExtractedData, error) {
	switch class {
	case ClassJudgment, ClassDismissal, ClassAffidavit:
	case ClassOther:
		e.log.Info("no extraction path for class", "class", class, "display_name", ref.DisplayName)
		return &ExtractionError{
			ErrorMessage: `extraction for document type "Other" is not implemented`,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	tag := schemaName(class)
	prompt, err := e.prompts.GetPrompt(tag, map[string]any{
		"display_name": ref.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s prompt: %w", tag, err)
	}

	schema, err := responseSchemaFor(class)
	if err != nil {
		return nil, err
	}

	raw, err := e.invoker.Generate(ctx, e.model, prompt, ref, schema)
	if err != nil {
		return nil, fmt.Errorf("extract %s from %s: %w", tag, ref.DisplayName, err)
	}

	if err := validateAgainstSchema(tag, raw); err != nil {
		return nil, fmt.Errorf("extract %s from %s: %w", tag, ref.DisplayName, err)
	}

	data, err := decodeExtractedData(class, raw)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("extract %s from %s: %w", tag, ref.DisplayName, err)
	}

	e.log.Info("extraction complete", "class", class, "display_name", ref.DisplayName)
	return data, nil
}
