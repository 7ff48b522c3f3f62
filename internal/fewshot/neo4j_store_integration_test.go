//go:build integration

package fewshot_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/internal/fewshot"
	"github.com/zero-day-ai/text2cypher/internal/graph/graphtest"
)

func TestNeo4jStore_ConcurrentPutsKeepOneNode(t *testing.T) {
	ctx := context.Background()
	client := graphtest.StartNeo4j(t, ctx)

	store, err := fewshot.NewNeo4jStore(ctx, client)
	require.NoError(t, err)
	_, err = fewshot.NewNeo4jStore(ctx, client)
	require.NoError(t, err, "constraint creation is idempotent")

	entry := fewshot.Entry{
		Question: "Which movies did Keanu Reeves act in?",
		Cypher:   "MATCH (p:Person {name: 'Keanu Reeves'})-[:ACTED_IN]->(m:Movie) RETURN m.title",
		Model:    "gpt-4o",
		Database: "neo4j_movies",
		Success:  true,
	}

	const writers = 16
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Put(ctx, entry, []float64{0.1, 0.2, 0.3})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	res, err := client.Query(ctx, "MATCH (f:Fewshot {id: $id}) RETURN count(f) AS n", map[string]any{"id": entry.Key()})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, int64(1), res.Records[0]["n"])

	created, err := store.Put(ctx, entry, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.False(t, created)

	examples, err := store.Search(ctx, []float64{0.1, 0.2, 0.3}, "neo4j_movies", 5)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, entry.Cypher, examples[0].Cypher)
}
