package fewshot

import "github.com/zero-day-ai/text2cypher/internal/types"

// Example store error codes
const (
	ErrCodeStoreFailed     types.ErrorCode = "FEWSHOT_STORE_FAILED"
	ErrCodeKeyedLoadFailed types.ErrorCode = "FEWSHOT_KEYED_LOAD_FAILED"
)
