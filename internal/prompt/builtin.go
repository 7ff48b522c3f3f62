package prompt

// Built-in prompt IDs, one per model round trip.
const (
	GenerateCypherID  = "generate_cypher"
	CorrectCypherID   = "correct_cypher"
	EvaluateOutputID  = "evaluate_output"
	SummarizeAnswerID = "summarize_answer"
)

var builtinPrompts = []Prompt{
	{
		ID:          GenerateCypherID,
		Description: "Translate a question into a single Cypher statement",
		System: `Given an input question, convert it to a Cypher query. No pre-amble.
Do not wrap the response in backticks or anything else. Respond with a Cypher statement only!`,
		User: `You are a Neo4j expert. Given an input question, create a syntactically correct Cypher query to run.
Use only the labels, properties and relationship types listed in the schema.

Schema:
{{.schema}}
{{- if .examples}}

Below are examples of questions and their corresponding Cypher queries.

{{.examples}}
{{- end}}

User input: {{.question}}
{{- if .question_context}}

Additional context for the question:
{{.question_context}}
{{- end}}
Cypher query:`,
		Variables: []VariableDef{
			{Name: "schema", Required: true},
			{Name: "examples"},
			{Name: "question", Required: true},
			{Name: "question_context"},
		},
	},
	{
		ID:          CorrectCypherID,
		Description: "Repair a Cypher statement given an error or diagnosis",
		System: `You are a Cypher expert reviewing a statement written by a junior developer.
Correct the statement based on the provided errors. No pre-amble.
Do not wrap the response in backticks or anything else. Respond with a Cypher statement only!`,
		User: `Check for invalid syntax or semantics and return a corrected Cypher statement.

Schema:
{{.schema}}

Do not include explanations or apologies. Do not answer anything other than a request to construct a Cypher statement.

The question is:
{{.question}}
{{- if .question_context}}

Additional context for the question:
{{.question_context}}
{{- end}}

The Cypher statement is:
{{.cypher}}

The errors are:
{{.errors}}

Corrected Cypher statement:`,
		Variables: []VariableDef{
			{Name: "schema", Required: true},
			{Name: "question", Required: true},
			{Name: "question_context"},
			{Name: "cypher", Required: true},
			{Name: "errors", Required: true},
		},
	},
	{
		ID:          EvaluateOutputID,
		Description: "Judge whether query output answers the question",
		System: `You decide whether the output of a Cypher query is sufficient and relevant to answer a question.
You receive the question, the Cypher query, and the database output.
If the output is enough to answer the question, reply with "Ok" and nothing else.
Otherwise explain what is wrong (missing data, wrong query structure, irrelevant results) and how to change the query so it produces what is needed.`,
		User: `Question:
{{.question}}
{{- if .question_context}}

Additional context for the question:
{{.question_context}}
{{- end}}

Cypher query:
{{.cypher}}

Database output:
{{.database_output}}

Is the database output adequate to answer the question? Reply "Ok" if it is, otherwise describe the shortcoming and how to fix the query.`,
		Variables: []VariableDef{
			{Name: "question", Required: true},
			{Name: "question_context"},
			{Name: "cypher", Required: true},
			{Name: "database_output", Required: true},
		},
	},
	{
		ID:          SummarizeAnswerID,
		Description: "Answer the question from the retrieved graph context",
		System: `You give concise and accurate answers using only context retrieved from a Neo4j database with a given Cypher query.
Do not use outside knowledge. If the context is insufficient or reports an error, say so and describe what additional information would be needed.`,
		User: `Context retrieved from a Neo4j database with the query:
` + "`{{.cypher}}`" + `

The context is:
{{.context}}

Answer the following question:
<question>
{{.question}}
</question>
{{- if .question_context}}

Additional context for the question:
{{.question_context}}
{{- end}}

Base your answer on the context above and explain your reasoning briefly.`,
		Variables: []VariableDef{
			{Name: "question", Required: true},
			{Name: "question_context"},
			{Name: "cypher", Required: true},
			{Name: "context", Required: true},
		},
	},
}

// BuiltinPromptIDs returns the IDs of all built-in prompts.
func BuiltinPromptIDs() []string {
	ids := make([]string, 0, len(builtinPrompts))
	for _, p := range builtinPrompts {
		ids = append(ids, p.ID)
	}
	return ids
}

// GetBuiltinPrompts returns copies of all built-in prompts.
func GetBuiltinPrompts() []Prompt {
	out := make([]Prompt, len(builtinPrompts))
	copy(out, builtinPrompts)
	return out
}

// RegisterBuiltins registers every built-in prompt with registry.
func RegisterBuiltins(registry PromptRegistry) error {
	for _, p := range builtinPrompts {
		if err := registry.Register(p); err != nil {
			return err
		}
	}
	return nil
}
