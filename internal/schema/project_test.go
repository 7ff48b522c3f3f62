package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func props(names ...string) []RawProperty {
	out := make([]RawProperty, len(names))
	for i, n := range names {
		out[i] = RawProperty{Name: n}
	}
	return out
}

func triple(start, typ, end string) RawRelationship {
	return RawRelationship{Triple: Relationship{Start: start, Type: typ, End: end}}
}

func TestProject_ExcludesEntity(t *testing.T) {
	raw := Raw{
		NodeProps: map[string][]RawProperty{
			"Entity":  props("id"),
			"Disease": props("name", "icd10"),
			"Drug":    props("name"),
		},
		Relationships: []RawRelationship{
			triple("Drug", "treats", "Disease"),
			triple("Entity", "MENTIONS", "Disease"),
			triple("Disease", "related_to", "Entity"),
		},
	}

	out := Project(raw).String()

	assert.Contains(t, out, "Disease: [name, icd10]")
	assert.Contains(t, out, "Drug: [name]")
	assert.Contains(t, out, "(:Drug)-[:treats]->(:Disease)")
	for _, line := range strings.Split(out, "\n") {
		assert.NotContains(t, line, "Entity", "line %q leaks an excluded label", line)
	}
}

func TestProject_CallerExclusionsAddToDefault(t *testing.T) {
	raw := Raw{
		NodeProps: map[string][]RawProperty{
			"Movie":    props("title"),
			"Actor":    props("name"),
			"Director": props("name"),
			"Entity":   props("id"),
		},
		Relationships: []RawRelationship{
			triple("Actor", "ACTED_IN", "Movie"),
			triple("Person", "ACTED_IN", "Movie"),
		},
	}

	view := Project(raw, "Actor", "Director")

	assert.Equal(t, []string{"Movie"}, view.Labels)
	require.Len(t, view.Relationships, 1)
	assert.Equal(t, "Person", view.Relationships[0].Start)
}

func TestProject_ExcludesByRelationshipType(t *testing.T) {
	raw := Raw{Relationships: []RawRelationship{
		triple("A", "SECRET", "B"),
		triple("A", "LINKS", "B"),
	}}

	view := Project(raw, "SECRET")
	assert.Equal(t, []Relationship{{Start: "A", Type: "LINKS", End: "B"}}, view.Relationships)
}

func TestProject_BothRelationshipShapesNormalise(t *testing.T) {
	structured := Project(Raw{Relationships: []RawRelationship{triple("Disease", "has_symptom", "Symptom")}})
	formatted := Project(Raw{Relationships: []RawRelationship{{Pattern: "(:Disease)-[:has_symptom]->(:Symptom)"}}})

	assert.Equal(t, structured.String(), formatted.String())
	assert.Equal(t, "Relationships:\n(:Disease)-[:has_symptom]->(:Symptom)", formatted.String())
}

func TestProject_SkipsMalformedAndDuplicates(t *testing.T) {
	raw := Raw{Relationships: []RawRelationship{
		{Pattern: "Disease has_symptom Symptom"},
		{Pattern: "(:A)-[:R]->(:B)"},
		triple("A", "R", "B"),
		triple("", "R", "B"),
	}}

	view := Project(raw)
	assert.Len(t, view.Relationships, 1)
}

func TestProject_DeterministicOrdering(t *testing.T) {
	raw := Raw{
		NodeProps: map[string][]RawProperty{
			"Zebra": props("b", "a"),
			"Apple": props("z"),
		},
		Relationships: []RawRelationship{
			triple("Zebra", "EATS", "Apple"),
			triple("Apple", "FEEDS", "Zebra"),
		},
	}

	want := strings.Join([]string{
		"Node Properties:",
		"Apple: [z]",
		"Zebra: [b, a]",
		"Relationships:",
		"(:Apple)-[:FEEDS]->(:Zebra)",
		"(:Zebra)-[:EATS]->(:Apple)",
	}, "\n")

	for range 5 {
		assert.Equal(t, want, Project(raw).String())
	}
}

func TestProject_LabelWithoutProperties(t *testing.T) {
	view := Project(Raw{NodeProps: map[string][]RawProperty{"Tag": nil}})
	assert.Equal(t, "Node Properties:\nTag: []", view.String())
}

func TestView_Empty(t *testing.T) {
	assert.True(t, Project(Raw{}).Empty())
	assert.Equal(t, "", Project(Raw{}).String())
	assert.True(t, Project(Raw{NodeProps: map[string][]RawProperty{"Entity": nil}}).Empty())
}
