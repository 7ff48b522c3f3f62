package fewshot

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

const searchQuery = `MATCH (f:Fewshot)
WHERE f.database = $database AND f.embedding IS NOT NULL
WITH f, vector.similarity.cosine(f.embedding, $embedding) AS score
ORDER BY score DESC LIMIT $k
RETURN f.question AS question, f.cypher AS cypher, score`

// constraintQueries keep example ids unique per label so concurrent MERGEs
// cannot create duplicate nodes.
var constraintQueries = []string{
	"CREATE CONSTRAINT fewshot_id IF NOT EXISTS FOR (f:Fewshot) REQUIRE f.id IS UNIQUE",
	"CREATE CONSTRAINT missing_id IF NOT EXISTS FOR (m:Missing) REQUIRE m.id IS UNIQUE",
}

// Label is interpolated from the two fixed label constants only.
const putQueryFormat = `OPTIONAL MATCH (e) WHERE (e:Fewshot OR e:Missing) AND e.id = $id
WITH e WHERE e IS NULL
MERGE (f:%s {id: $id})
SET f.cypher = $cypher, f.llm = $llm, f.question = $question,
    f.database = $database, f.created = datetime()
WITH f
CALL db.create.setNodeVectorProperty(f, 'embedding', $embedding)
RETURN count(f) AS created`

// Neo4jStore keeps examples as Fewshot/Missing nodes in a Neo4j database
// with a native vector property.
type Neo4jStore struct {
	client graph.GraphClient
}

// NewNeo4jStore uses an already connected client and creates the id
// uniqueness constraints if they are missing.
func NewNeo4jStore(ctx context.Context, client graph.GraphClient) (*Neo4jStore, error) {
	for _, q := range constraintQueries {
		if _, err := client.Write(ctx, q, nil); err != nil {
			return nil, types.WrapError(ErrCodeStoreFailed, "failed to create example constraint", err)
		}
	}
	return &Neo4jStore{client: client}, nil
}

// Search ranks Fewshot nodes for database by cosine similarity.
func (s *Neo4jStore) Search(ctx context.Context, embedding []float64, database string, k int) ([]Example, error) {
	res, err := s.client.Query(ctx, searchQuery, map[string]any{
		"embedding": embedding,
		"database":  database,
		"k":         k,
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeStoreFailed, "example search failed", err)
	}

	examples := make([]Example, 0, len(res.Records))
	for _, rec := range res.Records {
		ok := true
		question, _ := rec["question"].(string)
		cypher, _ := rec["cypher"].(string)
		examples = append(examples, Example{Question: question, Cypher: cypher, Success: &ok})
	}
	return examples, nil
}

// Put merges entry unless a Fewshot or Missing node with its key exists.
func (s *Neo4jStore) Put(ctx context.Context, entry Entry, embedding []float64) (bool, error) {
	res, err := s.client.Write(ctx, fmt.Sprintf(putQueryFormat, entry.Label()), map[string]any{
		"id":        entry.Key(),
		"cypher":    entry.Cypher,
		"llm":       entry.Model,
		"question":  entry.Question,
		"database":  entry.Database,
		"embedding": embedding,
	})
	if err != nil {
		return false, types.WrapError(ErrCodeStoreFailed, "example write failed", err)
	}

	if len(res.Records) == 0 {
		return false, nil
	}
	created, _ := res.Records[0]["created"].(int64)
	return created > 0, nil
}

func (s *Neo4jStore) Health(ctx context.Context) types.HealthStatus {
	return s.client.Health(ctx)
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
