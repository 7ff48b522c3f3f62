package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/resource"
	"github.com/zero-day-ai/text2cypher/internal/schema"
)

const movieCypher = "MATCH (m:Movie) RETURN m.title AS title"

const baseConfig = `
logging:
  level: error
llms:
  scripted:
    type: mock
    model: scripted-model
    responses:
      - "MATCH (m:Movie) RETURN m.title AS title"
      - "Ok"
      - "The Matrix."
  echo:
    type: mock
    model: echo-model
    responses:
      - "MATCH (m:Movie) RETURN m.title AS title"
databases:
  movies:
    uri: bolt://movies:7687
    username: neo4j
    alias: neo4j_movies
`

// fakeGraphs hands out mock clients. bolt://broken refuses connections
// and bolt://failing cannot report its schema.
type fakeGraphs struct {
	mu      sync.Mutex
	clients []*graph.MockGraphClient
}

func (f *fakeGraphs) factory(cfg graph.GraphClientConfig) (graph.GraphClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := graph.NewMockGraphClient().
		SetSchema(schema.Raw{
			NodeProps: map[string][]schema.RawProperty{
				"Movie":  {{Name: "title", Type: "STRING"}},
				"Person": {{Name: "name", Type: "STRING"}},
				"Actor":  {{Name: "name", Type: "STRING"}},
			},
			Relationships: []schema.RawRelationship{
				{Triple: schema.Relationship{Start: "Person", Type: "ACTED_IN", End: "Movie"}},
			},
		}).
		SetQueryResult(graph.QueryResult{Records: []map[string]any{{"title": "The Matrix"}}})

	switch {
	case strings.Contains(cfg.URI, "broken"):
		c.SetConnectError(errors.New("connection refused"))
	case strings.Contains(cfg.URI, "failing"):
		c.SetSchemaError(errors.New("schema procedure missing"))
	}
	f.clients = append(f.clients, c)
	return c, nil
}

type cliResult struct {
	stdout string
	stderr string
	code   int
}

// resetFlags restores every flag to its default so invocations do not
// leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else if f.Value.Type() != "stringToString" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI writes cfgYAML to a temporary config file and runs the root
// command with args against fake graph clients.
func runCLI(t *testing.T, cfgYAML string, args ...string) cliResult {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfgYAML), 0o600))

	graphs := &fakeGraphs{}
	prev := managerOptions
	managerOptions = []resource.Option{resource.WithGraphFactory(graphs.factory)}
	t.Cleanup(func() { managerOptions = prev })

	resetFlags(rootCmd)
	askContext = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	code := internal.ExitSuccess
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		code = internal.HandleError(rootCmd, err)
	}
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestAsk(t *testing.T) {
	res := runCLI(t, baseConfig, "ask", "--llm", "scripted", "--db", "movies", "Which", "movies", "are", "there?")

	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, movieCypher)
	assert.Contains(t, res.stdout, "The Matrix.")
}

func TestAsk_JSONEvents(t *testing.T) {
	res := runCLI(t, baseConfig, "-o", "json", "ask", "--llm", "scripted", "--db", "movies", "Which movies are there?")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)

	var last map[string]any
	for _, line := range strings.Split(strings.TrimSpace(res.stdout), "\n") {
		require.NoError(t, json.Unmarshal([]byte(line), &last), line)
		assert.Contains(t, last, "event_type")
	}
	result, ok := last["result"].(map[string]any)
	require.True(t, ok, "last event carries the result")
	assert.Equal(t, "The Matrix.", result["answer"])
	assert.Equal(t, movieCypher, result["cypher"])
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		args []string
		code int
	}{
		{
			name: "several llms need --llm",
			cfg:  baseConfig,
			args: []string{"ask", "--db", "movies", "q"},
			code: internal.ExitConfigError,
		},
		{
			name: "unknown database",
			cfg:  baseConfig,
			args: []string{"ask", "--llm", "echo", "--db", "nope", "q"},
			code: internal.ExitConfigError,
		},
		{
			name: "invalid variant",
			cfg:  baseConfig,
			args: []string{"ask", "--llm", "echo", "--variant", "fancy", "q"},
			code: internal.ExitConfigError,
		},
		{
			name: "schema unavailable",
			cfg: baseConfig + `  failing:
    uri: bolt://failing:7687
    username: neo4j
`,
			args: []string{"ask", "--llm", "echo", "--db", "failing", "q"},
			code: internal.ExitDatabaseError,
		},
		{
			name: "invalid config",
			cfg:  "pipeline:\n  top_k: 500\n",
			args: []string{"ask", "q"},
			code: internal.ExitConfigError,
		},
		{
			name: "verbose and quiet",
			cfg:  baseConfig,
			args: []string{"-v", "-q", "ask", "q"},
			code: internal.ExitConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.cfg, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
			assert.Contains(t, res.stderr, "Error:")
		})
	}
}

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBatch(t *testing.T) {
	file := writeBatch(t, `
requests:
  - question: Which movies are there?
  - question: Name one movie
    variant: naive_retry
`)
	res := runCLI(t, baseConfig, "-o", "json", "batch", "--file", file, "--llm", "echo", "--db", "movies", "--variant", "naive", "-c", "2")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)

	var out struct {
		Results []BatchResult `json:"results"`
		Stats   struct {
			Runs      int `json:"runs"`
			Succeeded int `json:"succeeded"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Len(t, out.Results, 2)
	for i, r := range out.Results {
		assert.Equal(t, i, r.Index)
		assert.Empty(t, r.Error)
		assert.Equal(t, movieCypher, r.Cypher)
	}
	assert.Equal(t, "Name one movie", out.Results[1].Question)
	assert.Equal(t, 2, out.Stats.Runs)
	assert.Equal(t, 2, out.Stats.Succeeded)
}

func TestBatch_FailuresAreIsolated(t *testing.T) {
	cfg := baseConfig + `  failing:
    uri: bolt://failing:7687
    username: neo4j
`
	file := writeBatch(t, `
requests:
  - question: Which movies are there?
    db: movies
  - question: What is broken?
    db: failing
  - question: Name one movie
    db: movies
`)
	res := runCLI(t, cfg, "batch", "--file", file, "--llm", "echo", "--variant", "naive")

	assert.Equal(t, internal.ExitGenerationFailed, res.code)
	assert.Contains(t, res.stderr, "1 of 3 requests failed")
	assert.Contains(t, res.stdout, "failed (configuration)")
	assert.Contains(t, res.stdout, "3 runs, 2 succeeded, 1 failed")
}

func TestBatch_ResolutionFailsFast(t *testing.T) {
	file := writeBatch(t, `
requests:
  - question: Which movies are there?
    db: movies
  - question: Unknown database
    db: nowhere
`)
	res := runCLI(t, baseConfig, "batch", "--file", file, "--llm", "echo")

	assert.Equal(t, internal.ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "request 1")
	assert.Empty(t, res.stdout)
}

func TestReadBatchFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "valid", content: "requests:\n  - question: q\n    context: {year: 1999}\n"},
		{name: "empty", content: "requests: []\n", wantErr: "has no requests"},
		{name: "blank question", content: "requests:\n  - question: '  '\n", wantErr: "request 0 has no question"},
		{name: "not yaml", content: "requests: [", wantErr: "failed to parse batch file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := readBatchFile(writeBatch(t, tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, file.Requests, 1)
			assert.Equal(t, 1999, file.Requests[0].Context["year"])
		})
	}

	_, err := readBatchFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	res := runCLI(t, baseConfig, "schema", "--db", "movies")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Movie")
	assert.Contains(t, res.stdout, "Person")
	assert.NotContains(t, res.stdout, "Actor", "pipeline.exclude_labels applies by default")

	res = runCLI(t, baseConfig, "schema", "--db", "movies", "--exclude", "Person")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Actor")
	assert.NotContains(t, res.stdout, "Person")
}

func TestSchema_JSON(t *testing.T) {
	res := runCLI(t, baseConfig, "-o", "json", "schema")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "neo4j_movies", out["database"])
	assert.ElementsMatch(t, []any{"Movie", "Person"}, out["labels"])
}

func TestCheck(t *testing.T) {
	res := runCLI(t, baseConfig, "check")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "scripted")
	assert.Contains(t, res.stdout, "movies")
	assert.Contains(t, res.stdout, "all 3 resources healthy")

	broken := baseConfig + `  broken:
    uri: bolt://broken:7687
    username: neo4j
`
	res = runCLI(t, broken, "check")
	assert.Equal(t, internal.ExitError, res.code)
	assert.Contains(t, res.stdout, "connection refused")
	assert.Contains(t, res.stderr, "health check failed")
}

func TestFewshotAdd(t *testing.T) {
	stores := map[string]string{
		"memory": "fewshot:\n  store: memory\n",
		"sqlite": "fewshot:\n  store: sqlite\n  sqlite_path: " + filepath.Join(t.TempDir(), "examples.db") + "\n",
	}
	embedderCfg := "embedder:\n  type: mock\n  model: hash\n"

	for name, storeCfg := range stores {
		t.Run(name, func(t *testing.T) {
			res := runCLI(t, baseConfig+storeCfg+embedderCfg,
				"fewshot", "add", "--db", "movies", "--llm", "echo",
				"--question", "Which movies are there?", "--cypher", movieCypher)
			require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
			assert.Contains(t, res.stdout, "recorded example for neo4j_movies")
		})
	}
}

func TestFewshotAdd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{
			name: "keyed examples are read-only",
			args: []string{"fewshot", "add", "--question", "q", "--cypher", movieCypher},
			code: internal.ExitConfigError,
		},
		{
			name: "unknown llm",
			args: []string{"fewshot", "add", "--llm", "gpt", "--question", "q", "--cypher", movieCypher},
			code: internal.ExitConfigError,
		},
		{
			name: "blank cypher",
			args: []string{"fewshot", "add", "--question", "q", "--cypher", " "},
			code: internal.ExitConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, baseConfig, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
		})
	}
}

func TestVariants(t *testing.T) {
	res := runCLI(t, baseConfig, "variants")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	for _, name := range []string{"naive", "naive_retry", "retry_check"} {
		assert.Contains(t, res.stdout, name)
	}

	res = runCLI(t, baseConfig, "-o", "json", "variants")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "retry_check", out[2]["name"])
	assert.Equal(t, true, out[2]["evaluate"])
}

func TestDefaultName(t *testing.T) {
	one := map[string]int{"movies": 1}
	two := map[string]int{"movies": 1, "diseases": 2}

	name, err := defaultName("", "database", one)
	require.NoError(t, err)
	assert.Equal(t, "movies", name)

	name, err = defaultName("diseases", "database", two)
	require.NoError(t, err)
	assert.Equal(t, "diseases", name)

	_, err = defaultName("", "database", two)
	assert.ErrorContains(t, err, "--db")

	_, err = defaultName("", "llm", map[string]int{})
	assert.ErrorContains(t, err, "no llm configured")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "a b c", oneLine("a\n b\t c"))
}

func TestVersion(t *testing.T) {
	res := runCLI(t, baseConfig, "version")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "text2cypher dev")

	res = runCLI(t, baseConfig, "-o", "json", "version")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "dev", info["version"])
}
