package fewshot

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// KeyedRetriever serves a static example table keyed by database short
// identity.
type KeyedRetriever struct {
	table map[string][]Example
}

// NewKeyedRetriever indexes examples by the short identity of each alias.
// Aliases sharing an identity have their examples concatenated.
func NewKeyedRetriever(byAlias map[string][]Example) *KeyedRetriever {
	table := make(map[string][]Example, len(byAlias))
	for alias, examples := range byAlias {
		id := ShortIdentity(alias)
		table[id] = append(table[id], examples...)
	}
	return &KeyedRetriever{table: table}
}

func (r *KeyedRetriever) Name() string { return "keyed" }

// Retrieve ignores the question and returns the table entry for database.
func (r *KeyedRetriever) Retrieve(ctx context.Context, question, database string) []Example {
	examples := r.table[ShortIdentity(database)]
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// Databases returns the number of identities with examples.
func (r *KeyedRetriever) Databases() int {
	return len(r.table)
}

type keyedFile struct {
	Databases []struct {
		Alias    string    `yaml:"alias"`
		Examples []Example `yaml:"examples"`
	} `yaml:"databases"`
}

// LoadKeyedFile reads a YAML example table of the form
//
//	databases:
//	  - alias: neo4j_movies
//	    examples:
//	      - question: ...
//	        cypher: ...
func LoadKeyedFile(path string) (*KeyedRetriever, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(ErrCodeKeyedLoadFailed,
			fmt.Sprintf("failed to read examples file %s", path), err)
	}
	return ParseKeyed(data)
}

// ParseKeyed decodes the YAML form accepted by LoadKeyedFile.
func ParseKeyed(data []byte) (*KeyedRetriever, error) {
	var file keyedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, types.WrapError(ErrCodeKeyedLoadFailed, "failed to parse examples file", err)
	}

	byAlias := make(map[string][]Example, len(file.Databases))
	for i, db := range file.Databases {
		if db.Alias == "" {
			return nil, types.NewError(ErrCodeKeyedLoadFailed,
				fmt.Sprintf("databases[%d]: alias is required", i))
		}
		byAlias[db.Alias] = append(byAlias[db.Alias], db.Examples...)
	}
	return NewKeyedRetriever(byAlias), nil
}

var _ Retriever = (*KeyedRetriever)(nil)
