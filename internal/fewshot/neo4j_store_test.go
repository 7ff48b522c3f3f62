package fewshot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

func TestNeo4jStore_Search(t *testing.T) {
	client := graph.NewMockGraphClient().SetQueryResult(graph.QueryResult{
		Records: []map[string]any{
			{"question": "A", "cypher": "MATCH (a) RETURN a", "score": 0.99},
			{"question": "B", "cypher": "MATCH (b) RETURN b", "score": 0.42},
		},
	})
	store, err := NewNeo4jStore(context.Background(), client)
	require.NoError(t, err)

	got, err := store.Search(context.Background(), []float64{1, 0}, "movies", 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Question)
	assert.Equal(t, "MATCH (b) RETURN b", got[1].Cypher)

	calls := client.CallsTo("Query")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "vector.similarity.cosine")
	assert.Contains(t, calls[0].Cypher, "MATCH (f:Fewshot)")
	assert.Equal(t, "movies", calls[0].Params["database"])
	assert.Equal(t, 7, calls[0].Params["k"])
}

func TestNeo4jStore_SearchError(t *testing.T) {
	store, err := NewNeo4jStore(context.Background(), graph.NewMockGraphClient().SetQueryError(errors.New("no vector support")))
	require.NoError(t, err)

	_, err = store.Search(context.Background(), []float64{1}, "movies", 7)
	assert.True(t, types.HasCode(err, ErrCodeStoreFailed))
}

func TestNeo4jStore_Put(t *testing.T) {
	created := int64(1)
	client := graph.NewMockGraphClient().SetWriteFunc(func(cypher string, params map[string]any) (graph.QueryResult, error) {
		if strings.HasPrefix(cypher, "CREATE CONSTRAINT") {
			return graph.QueryResult{}, nil
		}
		res := graph.QueryResult{Records: []map[string]any{{"created": created}}}
		created = 0
		return res, nil
	})
	store, err := NewNeo4jStore(context.Background(), client)
	require.NoError(t, err)
	entry := Entry{Question: "q", Cypher: "RETURN 1", Model: "gpt-4o", Database: "movies", Success: false}

	ok, err := store.Put(context.Background(), entry, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Put(context.Background(), entry, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.False(t, ok)

	calls := client.CallsTo("Write")
	require.Len(t, calls, 4)
	calls = calls[len(constraintQueries):]
	assert.Contains(t, calls[0].Cypher, "MERGE (f:Missing {id: $id})")
	assert.Contains(t, calls[0].Cypher, "db.create.setNodeVectorProperty")
	assert.Equal(t, entry.Key(), calls[0].Params["id"])
	assert.Equal(t, "gpt-4o", calls[0].Params["llm"])
}

func TestNewNeo4jStore_CreatesConstraints(t *testing.T) {
	client := graph.NewMockGraphClient()
	_, err := NewNeo4jStore(context.Background(), client)
	require.NoError(t, err)

	calls := client.CallsTo("Write")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Cypher, "FOR (f:Fewshot) REQUIRE f.id IS UNIQUE")
	assert.Contains(t, calls[1].Cypher, "FOR (m:Missing) REQUIRE m.id IS UNIQUE")
	for _, c := range calls {
		assert.Contains(t, c.Cypher, "IF NOT EXISTS")
	}

	failing := graph.NewMockGraphClient().SetWriteFunc(func(string, map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{}, errors.New("read-only database")
	})
	_, err = NewNeo4jStore(context.Background(), failing)
	assert.True(t, types.HasCode(err, ErrCodeStoreFailed))
}
