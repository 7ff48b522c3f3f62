// Package fewshot retrieves worked question/Cypher examples that ground query
// generation, and records the outcome of repaired runs back into the
// semantic example store.
//
// Two retrieval strategies share the Retriever interface:
//
//   - SemanticRetriever embeds the question and asks a Store for the most
//     similar examples recorded against the same database.
//   - KeyedRetriever serves a static table keyed by the short identity of a
//     database alias and needs no embedding model.
//
// Select picks one of them once, at setup, based on what is reachable.
package fewshot
