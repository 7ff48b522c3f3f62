package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// toPlain converts driver values into maps, slices, and scalars that
// serialise cleanly into prompts. Nodes become their property map;
// relationships keep their type alongside properties; paths become the
// alternating node/relationship sequence.
func toPlain(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case dbtype.Node:
		return plainMap(t.Props)
	case dbtype.Relationship:
		return map[string]any{
			"type":       t.Type,
			"properties": plainMap(t.Props),
		}
	case dbtype.Path:
		seq := make([]any, 0, len(t.Nodes)+len(t.Relationships))
		for i, n := range t.Nodes {
			seq = append(seq, toPlain(n))
			if i < len(t.Relationships) {
				seq = append(seq, toPlain(t.Relationships[i]))
			}
		}
		return seq
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	case map[string]any:
		return plainMap(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case dbtype.Date:
		return t.String()
	case dbtype.LocalDateTime:
		return t.String()
	case dbtype.LocalTime:
		return t.String()
	case dbtype.Time:
		return t.String()
	case dbtype.Duration:
		return t.String()
	case dbtype.Point2D:
		return t.String()
	case dbtype.Point3D:
		return t.String()
	default:
		return v
	}
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = toPlain(v)
	}
	return out
}
