package legaldoc

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed prompts/*.twig
var promptFS embed.FS

// Prompt tags used by the pipeline. The extraction tags match
// schemaName(class) for the three extractable classes.
const (
	promptClassify = "classify"
)

// PromptProvider returns the rendered instruction text for a prompt tag.
type PromptProvider interface {
	GetPrompt(tag string, vars map[string]any) (string, error)
}

// StickPromptProvider renders Twig templates with the stick engine. It is
// fs-agnostic: templates can come from the embedded set, any fs.FS, or an
// in-memory map.
type StickPromptProvider struct {
	env       *stick.Env
	templates map[string]string
	vars      map[string]any // variables available to every template
}

// PromptOption configures a StickPromptProvider.
type PromptOption func(*StickPromptProvider) error

// WithPromptFS loads every *.twig file found under dir in the supplied FS.
func WithPromptFS(fsys fs.FS, dir string) PromptOption {
	return func(p *StickPromptProvider) error {
		return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".twig") {
				return nil
			}
			content, readErr := fs.ReadFile(fsys, path)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", path, readErr)
			}
			tag := strings.TrimSuffix(filepath.Base(path), ".twig")
			p.templates[tag] = string(content)
			return nil
		})
	}
}

// WithPromptTemplates injects an in-memory template map.
func WithPromptTemplates(m map[string]string) PromptOption {
	return func(p *StickPromptProvider) error {
		for k, v := range m {
			p.templates[k] = v
		}
		return nil
	}
}

// WithPromptVar adds a variable available in all templates.
func WithPromptVar(key string, value any) PromptOption {
	return func(p *StickPromptProvider) error {
		p.vars[key] = value
		return nil
	}
}

// NewStickPromptProvider builds a provider from any combination of options.
func NewStickPromptProvider(opts ...PromptOption) (*StickPromptProvider, error) {
	p := &StickPromptProvider{
		env:       stick.New(nil),
		templates: make(map[string]string),
		vars:      make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DefaultPrompts returns a provider loaded with the embedded pipeline
// templates: classify plus one extraction template per document class.
func DefaultPrompts() (*StickPromptProvider, error) {
	return NewStickPromptProvider(WithPromptFS(promptFS, "prompts"))
}

// AddTemplate updates or inserts one template.
func (p *StickPromptProvider) AddTemplate(tag, tpl string) { p.templates[tag] = tpl }

// GetPrompt renders the template for the given tag with the provider-wide
// variables merged under the call-site ones.
func (p *StickPromptProvider) GetPrompt(tag string, vars map[string]any) (string, error) {
	tpl, ok := p.templates[tag]
	if !ok {
		return "", fmt.Errorf("template %q not found", tag)
	}

	templateCtx := make(map[string]stick.Value, len(p.vars)+len(vars)+1)
	templateCtx["tag"] = tag
	for k, v := range p.vars {
		templateCtx[k] = v
	}
	for k, v := range vars {
		templateCtx[k] = v
	}

	var out strings.Builder
	if err := p.env.Execute(tpl, &out, templateCtx); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return out.String(), nil
}
