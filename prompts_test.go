package legaldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPromptsLoadsAllTemplates(t *testing.T) {
	prompts, err := DefaultPrompts()
	require.NoError(t, err)

	tags := []string{promptClassify, "judgment", "dismissal", "affidavit"}
	for _, tag := range tags {
		out, err := prompts.GetPrompt(tag, nil)
		require.NoError(t, err, "tag %q", tag)
		assert.NotEmpty(t, out)
	}
}

func TestClassifyPromptListsClasses(t *testing.T) {
	prompts, err := DefaultPrompts()
	require.NoError(t, err)

	out, err := prompts.GetPrompt(promptClassify, map[string]any{
		"classes":      classList(),
		"display_name": "Order of Dismissal",
	})
	require.NoError(t, err)

	for _, c := range DocumentClasses() {
		assert.Contains(t, out, string(c))
	}
	assert.Contains(t, out, "Order of Dismissal")
	assert.Contains(t, out, "confidence")
}

func TestGetPromptUnknownTag(t *testing.T) {
	prompts, err := NewStickPromptProvider()
	require.NoError(t, err)

	_, err = prompts.GetPrompt("missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStickPromptProviderOptions(t *testing.T) {
	prompts, err := NewStickPromptProvider(
		WithPromptTemplates(map[string]string{"greet": "Hello {{ who }} from {{ source }}"}),
		WithPromptVar("source", "fixture"),
	)
	require.NoError(t, err)

	out, err := prompts.GetPrompt("greet", map[string]any{"who": "world"})
	require.NoError(t, err)
	assert.Equal(t, "Hello world from fixture", out)
}

func TestAddTemplateOverrides(t *testing.T) {
	prompts, err := NewStickPromptProvider(
		WithPromptTemplates(map[string]string{"x": "old"}),
	)
	require.NoError(t, err)

	prompts.AddTemplate("x", "new")
	out, err := prompts.GetPrompt("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "new", out)
}
