// Package graph provides the graph store abstraction the pipeline executes
// generated Cypher against.
//
//   - GraphClient: the interface the pipeline and example stores depend on
//   - Neo4jClient: implementation on the official Neo4j Go driver
//   - MockGraphClient: scripted implementation for unit tests
//
// Basic usage with Neo4j:
//
//	cfg := graph.DefaultConfig()
//	cfg.URI = "bolt://localhost:7687"
//	cfg.Password = os.Getenv("NEO4J_PASSWORD")
//
//	client, err := graph.NewNeo4jClient(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	res, err := client.Query(ctx, "MATCH (m:Movie) RETURN m.title AS title", nil, graph.WithRowLimit(100))
//
// Query runs in a read transaction; Write is reserved for bookkeeping such
// as example write-back and never receives model-generated Cypher.
package graph
