package pipeline

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Variant is a named workflow preset.
type Variant string

const (
	// VariantNaive executes once and summarises whatever comes back.
	VariantNaive Variant = "naive"
	// VariantNaiveRetry allows one correction of a failing query.
	VariantNaiveRetry Variant = "naive_retry"
	// VariantRetryCheck evaluates results, allows two corrections and
	// records repaired runs as examples.
	VariantRetryCheck Variant = "retry_check"
)

// Settings drive one run.
type Settings struct {
	MaxRetries int  `json:"max_retries"`
	Evaluate   bool `json:"evaluate"`
	WriteBack  bool `json:"write_back"`
}

// Overrides replace individual fields of a variant preset. Nil fields keep
// the preset value.
type Overrides struct {
	MaxRetries *int
	Evaluate   *bool
	WriteBack  *bool
}

// Apply returns s with the set fields of o replaced.
func (o Overrides) Apply(s Settings) Settings {
	if o.MaxRetries != nil {
		s.MaxRetries = *o.MaxRetries
	}
	if o.Evaluate != nil {
		s.Evaluate = *o.Evaluate
	}
	if o.WriteBack != nil {
		s.WriteBack = *o.WriteBack
	}
	return s
}

var variantSettings = map[Variant]Settings{
	VariantNaive:      {MaxRetries: 0},
	VariantNaiveRetry: {MaxRetries: 1},
	VariantRetryCheck: {MaxRetries: 2, Evaluate: true, WriteBack: true},
}

var variantDescriptions = map[Variant]string{
	VariantNaive:      "generate and execute once, no correction",
	VariantNaiveRetry: "correct a failing query once",
	VariantRetryCheck: "evaluate results, correct up to twice, record repaired runs as examples",
}

// Settings returns the preset of v. Unknown variants get the naive preset.
func (v Variant) Settings() Settings {
	return variantSettings[v]
}

// Description is a one-line summary of v.
func (v Variant) Description() string {
	return variantDescriptions[v]
}

// Variants lists the known variants in increasing order of effort.
func Variants() []Variant {
	return []Variant{VariantNaive, VariantNaiveRetry, VariantRetryCheck}
}

// ParseVariant validates a variant name.
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := variantSettings[v]; ok {
		return v, nil
	}
	names := make([]string, 0, len(variantSettings))
	for _, known := range Variants() {
		names = append(names, string(known))
	}
	return "", types.NewError(ErrCodeConfig,
		fmt.Sprintf("unknown workflow variant %q, must be one of: %s", name, strings.Join(names, ", ")))
}
