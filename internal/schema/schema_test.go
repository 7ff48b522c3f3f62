package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationship(t *testing.T) {
	tests := []struct {
		in   string
		want Relationship
		ok   bool
	}{
		{"(:Disease)-[:has_symptom]->(:Symptom)", Relationship{"Disease", "has_symptom", "Symptom"}, true},
		{"  (:A)-[:R]->(:B)  ", Relationship{"A", "R", "B"}, true},
		{"(:A)-[:R]->(:B", Relationship{}, false},
		{"(A)-[:R]->(:B)", Relationship{}, false},
		{"(:A)-[R]->(:B)", Relationship{}, false},
		{"(:)-[:R]->(:B)", Relationship{}, false},
		{"", Relationship{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRelationship(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_MixedShapes(t *testing.T) {
	doc := `
node_props:
  Disease:
    - name
    - {property: icd10, type: STRING}
  Symptom: [name]
relationships:
  - {start: Disease, type: has_symptom, end: Symptom}
  - "(:Drug)-[:treats]->(:Disease)"
`
	raw, err := Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []RawProperty{{Name: "name"}, {Name: "icd10", Type: "STRING"}}, raw.NodeProps["Disease"])
	require.Len(t, raw.Relationships, 2)
	assert.Equal(t, "(:Drug)-[:treats]->(:Disease)", raw.Relationships[1].Pattern)

	out := Project(raw).String()
	assert.Contains(t, out, "Disease: [name, icd10]")
	assert.Contains(t, out, "(:Disease)-[:has_symptom]->(:Symptom)")
	assert.Contains(t, out, "(:Drug)-[:treats]->(:Disease)")
}

func TestDecode_JSON(t *testing.T) {
	raw, err := Decode([]byte(`{"node_props":{"Movie":[{"property":"title","type":"STRING"}]},"relationships":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "Node Properties:\nMovie: [title]", Project(raw).String())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("node_props: [oops"))
	assert.Error(t, err)
}
