package prompt

import (
	"bytes"
	"strings"
	"sync"
	"text/template"
)

// TemplateRenderer renders prompts with a variable map.
type TemplateRenderer interface {
	Render(p *Prompt, vars map[string]any) (Rendered, error)

	// RegisterFunc adds a custom template function that can be used in templates.
	RegisterFunc(name string, fn any) error
}

// DefaultTemplateRenderer compiles templates with missingkey=error and
// caches them per prompt ID.
type DefaultTemplateRenderer struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// NewTemplateRenderer creates a renderer with DefaultFuncMap.
func NewTemplateRenderer() *DefaultTemplateRenderer {
	return &DefaultTemplateRenderer{
		templates: make(map[string]*template.Template),
		funcMap:   DefaultFuncMap(),
	}
}

// RegisterFunc adds fn and drops the compiled template cache.
func (r *DefaultTemplateRenderer) RegisterFunc(name string, fn any) error {
	if name == "" {
		return NewInvalidPromptError("function name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcMap[name] = fn
	r.templates = make(map[string]*template.Template)
	return nil
}

// Render resolves the declared variables and executes both templates.
func (r *DefaultTemplateRenderer) Render(p *Prompt, vars map[string]any) (Rendered, error) {
	if p == nil {
		return Rendered{}, NewInvalidPromptError("prompt cannot be nil")
	}

	data := make(map[string]any, len(p.Variables))
	for _, v := range p.Variables {
		value, err := v.Resolve(p.ID, vars)
		if err != nil {
			return Rendered{}, err
		}
		data[v.Name] = value
	}

	system, err := r.execute(p.ID+"/system", p.ID, p.System, data)
	if err != nil {
		return Rendered{}, err
	}
	user, err := r.execute(p.ID+"/user", p.ID, p.User, data)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{System: system, User: user}, nil
}

func (r *DefaultTemplateRenderer) execute(key, promptID, text string, data map[string]any) (string, error) {
	if text == "" {
		return "", nil
	}

	tmpl, err := r.getTemplate(key, text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return "", NewMissingVariableError(promptID, missingKey(err.Error()))
		}
		return "", NewTemplateRenderError(promptID, err)
	}
	return buf.String(), nil
}

func (r *DefaultTemplateRenderer) getTemplate(key, text string) (*template.Template, error) {
	// Overridden prompts keep their ID, so the text is part of the cache key.
	cacheKey := key + "\x00" + text

	r.mu.RLock()
	tmpl, exists := r.templates[cacheKey]
	r.mu.RUnlock()
	if exists {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, exists := r.templates[cacheKey]; exists {
		return tmpl, nil
	}

	tmpl, err := template.New(key).Funcs(r.funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, NewInvalidTemplateError(key, err)
	}
	r.templates[cacheKey] = tmpl
	return tmpl, nil
}

// missingKey extracts the quoted key from a text/template missingkey error.
func missingKey(msg string) string {
	const marker = `map has no entry for key "`
	i := strings.Index(msg, marker)
	if i < 0 {
		return "?"
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, '"'); j >= 0 {
		return rest[:j]
	}
	return rest
}
