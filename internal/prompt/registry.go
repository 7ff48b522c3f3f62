package prompt

import (
	"sort"
	"sync"
)

// PromptRegistry stores prompts by ID.
// Implementations must be safe for concurrent use.
type PromptRegistry interface {
	// Register adds a prompt. Returns ErrCodePromptAlreadyExists on a
	// duplicate ID.
	Register(prompt Prompt) error

	// Override adds or replaces a prompt.
	Override(prompt Prompt) error

	// Get retrieves a prompt by ID.
	Get(id string) (*Prompt, error)

	// List returns all registered prompts sorted by ID.
	List() []Prompt
}

// DefaultPromptRegistry is a map-backed PromptRegistry.
type DefaultPromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]Prompt
}

// NewPromptRegistry creates an empty registry.
func NewPromptRegistry() *DefaultPromptRegistry {
	return &DefaultPromptRegistry{prompts: make(map[string]Prompt)}
}

// Register validates and adds prompt.
func (r *DefaultPromptRegistry) Register(prompt Prompt) error {
	if err := prompt.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prompts[prompt.ID]; exists {
		return NewPromptAlreadyExistsError(prompt.ID)
	}
	r.prompts[prompt.ID] = prompt
	return nil
}

// Override validates and stores prompt, replacing any prompt with its ID.
func (r *DefaultPromptRegistry) Override(prompt Prompt) error {
	if err := prompt.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prompts[prompt.ID] = prompt
	return nil
}

// OverrideFromDirectory loads every YAML file in dir and overrides the
// prompts they define. Files are processed even after a failure; the first
// error is returned.
func (r *DefaultPromptRegistry) OverrideFromDirectory(dir string) error {
	prompts, loadErr := LoadPromptsFromDirectory(dir)
	for _, p := range prompts {
		if err := r.Override(p); err != nil {
			return err
		}
	}
	return loadErr
}

// Get returns a copy of the prompt with id.
func (r *DefaultPromptRegistry) Get(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.prompts[id]
	if !exists {
		return nil, NewPromptNotFoundError(id)
	}
	return &p, nil
}

// List returns all prompts sorted by ID.
func (r *DefaultPromptRegistry) List() []Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewDefaultRegistry returns a registry holding the built-in prompts,
// overridden by the YAML files in dir when dir is not empty.
func NewDefaultRegistry(dir string) (*DefaultPromptRegistry, error) {
	r := NewPromptRegistry()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := r.OverrideFromDirectory(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}
