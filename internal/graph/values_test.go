package graph

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
)

func TestToPlain(t *testing.T) {
	movie := dbtype.Node{ElementId: "4:x:1", Labels: []string{"Movie"}, Props: map[string]any{"title": "Heat", "released": int64(1995)}}
	person := dbtype.Node{ElementId: "4:x:2", Labels: []string{"Person"}, Props: map[string]any{"name": "Al Pacino"}}
	acted := dbtype.Relationship{Type: "ACTED_IN", Props: map[string]any{"roles": []any{"Hanna"}}}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"scalar", int64(3), int64(3)},
		{"node", movie, map[string]any{"title": "Heat", "released": int64(1995)}},
		{"relationship", acted, map[string]any{"type": "ACTED_IN", "properties": map[string]any{"roles": []any{"Hanna"}}}},
		{
			"path",
			dbtype.Path{Nodes: []dbtype.Node{person, movie}, Relationships: []dbtype.Relationship{acted}},
			[]any{
				map[string]any{"name": "Al Pacino"},
				map[string]any{"type": "ACTED_IN", "properties": map[string]any{"roles": []any{"Hanna"}}},
				map[string]any{"title": "Heat", "released": int64(1995)},
			},
		},
		{"nested list", []any{movie, "x"}, []any{map[string]any{"title": "Heat", "released": int64(1995)}, "x"}},
		{"date", dbtype.Date(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)), "2024-02-29"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toPlain(tt.in))
		})
	}
}
