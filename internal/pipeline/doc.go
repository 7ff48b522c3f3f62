// Package pipeline turns a natural-language question into a Cypher query,
// runs it, repairs it under a bounded retry budget, and streams a grounded
// answer.
//
// A run is an explicit state machine:
//
//	GENERATE -> EXECUTE -> EVALUATE? -> SUMMARIZE -> DONE
//	               ^          |
//	               +- CORRECT +
//
// GENERATE and CORRECT ask the model for a query, EXECUTE is the only state
// that talks to the graph store, and every transition is decided by
// transition from the last execution result, the last verdict and the
// retry budget. Model failures abort the run; query failures and
// inadequate results are repaired until the budget runs out, after which
// the answer is summarised from whatever context is left.
//
// Engine.Run executes one request synchronously, Engine.Stream exposes the
// same run as a channel of ProgressEvents, and BatchRunner runs many
// requests under a concurrency bound.
package pipeline
