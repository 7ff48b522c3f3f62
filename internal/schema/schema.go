// Package schema turns a graph store's structural schema into the compact
// text block embedded in generation and correction prompts.
package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultExclusions are labels that never reach a prompt.
var DefaultExclusions = []string{"Entity"}

// Relationship is a directed (start)-[type]->(end) triple.
type Relationship struct {
	Start string `yaml:"start" json:"start"`
	Type  string `yaml:"type" json:"type"`
	End   string `yaml:"end" json:"end"`
}

func (r Relationship) String() string {
	return fmt.Sprintf("(:%s)-[:%s]->(:%s)", r.Start, r.Type, r.End)
}

// ParseRelationship parses the "(:Start)-[:TYPE]->(:End)" form.
func ParseRelationship(s string) (Relationship, bool) {
	s = strings.TrimSpace(s)
	head, tail, ok := strings.Cut(s, ")-[:")
	if !ok || !strings.HasPrefix(head, "(:") {
		return Relationship{}, false
	}
	relType, end, ok := strings.Cut(tail, "]->(:")
	if !ok || !strings.HasSuffix(end, ")") {
		return Relationship{}, false
	}

	rel := Relationship{
		Start: strings.TrimPrefix(head, "(:"),
		Type:  relType,
		End:   strings.TrimSuffix(end, ")"),
	}
	if rel.Start == "" || rel.Type == "" || rel.End == "" {
		return Relationship{}, false
	}
	return rel, true
}

// RawProperty is a node property as reported by a schema source: either a
// bare name or a {property, type} object.
type RawProperty struct {
	Name string
	Type string
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *RawProperty) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Name = value.Value
		return nil
	}
	var obj struct {
		Property string `yaml:"property"`
		Type     string `yaml:"type"`
	}
	if err := value.Decode(&obj); err != nil {
		return err
	}
	p.Name, p.Type = obj.Property, obj.Type
	return nil
}

// RawRelationship is either a structured triple or a formatted pattern string.
type RawRelationship struct {
	Triple  Relationship
	Pattern string
}

// Normalize returns the triple, parsing Pattern when the entry was a string.
func (r RawRelationship) Normalize() (Relationship, bool) {
	if r.Pattern != "" {
		return ParseRelationship(r.Pattern)
	}
	if r.Triple.Start == "" || r.Triple.Type == "" || r.Triple.End == "" {
		return Relationship{}, false
	}
	return r.Triple, true
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (r *RawRelationship) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Pattern = value.Value
		return nil
	}
	return value.Decode(&r.Triple)
}

// Raw is a schema exactly as the store (or a dump file) reports it.
type Raw struct {
	NodeProps     map[string][]RawProperty `yaml:"node_props"`
	Relationships []RawRelationship        `yaml:"relationships"`
}

// Decode parses a YAML or JSON schema dump.
func Decode(data []byte) (Raw, error) {
	var raw Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Raw{}, fmt.Errorf("decode schema: %w", err)
	}
	return raw, nil
}
