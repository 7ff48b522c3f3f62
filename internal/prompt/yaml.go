package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptFile is a YAML file holding several prompts under "prompts".
// A file may also hold a single prompt as a top-level mapping.
type PromptFile struct {
	Prompts []Prompt `yaml:"prompts"`
}

// LoadPromptsFromFile reads and validates the prompts in path.
func LoadPromptsFromFile(path string) ([]Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewYAMLParseError(path, fmt.Errorf("failed to read file: %w", err))
	}

	var file PromptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, NewYAMLParseError(path, enrichYAMLError(err))
	}

	prompts := file.Prompts
	if len(prompts) == 0 {
		var single Prompt
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, NewYAMLParseError(path, enrichYAMLError(err))
		}
		prompts = []Prompt{single}
	}

	for i, p := range prompts {
		if err := p.Validate(); err != nil {
			return nil, NewYAMLValidationError(path,
				fmt.Sprintf("prompt at index %d failed validation: %v", i, err))
		}
	}
	return prompts, nil
}

// LoadPromptsFromDirectory loads every .yaml/.yml file in dir, in name
// order, skipping subdirectories. It keeps going past bad files and
// returns the first error with whatever loaded.
func LoadPromptsFromDirectory(dir string) ([]Prompt, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewYAMLParseError(dir, fmt.Errorf("failed to read directory: %w", err))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var all []Prompt
	var firstError error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		prompts, err := LoadPromptsFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			continue
		}
		all = append(all, prompts...)
	}
	return all, firstError
}

// yaml.v3 errors already carry line:column.
func enrichYAMLError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("YAML syntax error: %w", err)
}
