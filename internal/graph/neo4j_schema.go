package graph

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/text2cypher/internal/schema"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

const (
	nodeTypePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	nodePropertiesScanQuery = `MATCH (n)
UNWIND labels(n) AS label
UNWIND CASE WHEN size(keys(n)) = 0 THEN [null] ELSE keys(n) END AS key
RETURN DISTINCT [label] AS nodeLabels, key AS propertyName, [] AS propertyTypes`

	relationshipTriplesQuery = `MATCH (a)-[r]->(b)
UNWIND labels(a) AS start
UNWIND labels(b) AS end
RETURN DISTINCT start, type(r) AS type, end`
)

// Schema introspects labels, properties, and relationship triples. Node
// properties come from db.schema.nodeTypeProperties(); servers where that
// procedure is unavailable fall back to a label/key scan.
func (c *Neo4jClient) Schema(ctx context.Context) (schema.Raw, error) {
	raw := schema.Raw{NodeProps: make(map[string][]schema.RawProperty)}

	res, err := c.Query(ctx, nodeTypePropertiesQuery, nil)
	if err != nil {
		if ctx.Err() != nil {
			return schema.Raw{}, types.WrapError(ErrCodeGraphSchemaFailed, "schema introspection aborted", err)
		}
		res, err = c.Query(ctx, nodePropertiesScanQuery, nil)
		if err != nil {
			return schema.Raw{}, types.WrapError(ErrCodeGraphSchemaFailed, "node property introspection failed", err)
		}
	}
	addNodeProperties(raw.NodeProps, res.Records)

	rels, err := c.Query(ctx, relationshipTriplesQuery, nil)
	if err != nil {
		return schema.Raw{}, types.WrapError(ErrCodeGraphSchemaFailed, "relationship introspection failed", err)
	}
	raw.Relationships = relationshipTriples(rels.Records)

	return raw, nil
}

// addNodeProperties folds nodeTypeProperties-shaped rows into props.
// Labels with no properties are kept with an empty list.
func addNodeProperties(props map[string][]schema.RawProperty, rows []map[string]any) {
	for _, row := range rows {
		labels, _ := row["nodeLabels"].([]any)
		name, _ := row["propertyName"].(string)
		// nodeTypeProperties reports names as "`title`" on some versions.
		if len(name) > 1 && name[0] == '`' && name[len(name)-1] == '`' {
			name = name[1 : len(name)-1]
		}

		var typ string
		if ptypes, ok := row["propertyTypes"].([]any); ok && len(ptypes) > 0 {
			typ = fmt.Sprint(ptypes[0])
		}

		for _, l := range labels {
			label, ok := l.(string)
			if !ok || label == "" {
				continue
			}
			if _, exists := props[label]; !exists {
				props[label] = nil
			}
			if name == "" || hasProperty(props[label], name) {
				continue
			}
			props[label] = append(props[label], schema.RawProperty{Name: name, Type: typ})
		}
	}
}

func hasProperty(props []schema.RawProperty, name string) bool {
	for _, p := range props {
		if p.Name == name {
			return true
		}
	}
	return false
}

func relationshipTriples(rows []map[string]any) []schema.RawRelationship {
	out := make([]schema.RawRelationship, 0, len(rows))
	for _, row := range rows {
		start, _ := row["start"].(string)
		typ, _ := row["type"].(string)
		end, _ := row["end"].(string)
		out = append(out, schema.RawRelationship{Triple: schema.Relationship{Start: start, Type: typ, End: end}})
	}
	return out
}
