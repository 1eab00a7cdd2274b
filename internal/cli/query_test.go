package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCommandMissingArgs(t *testing.T) {
	_, _, err := runCLI(t, "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestQueryCommand_TextOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "graph.db")

	out, _, err := runCLI(t, "--db", db, "query",
		"CREATE (a:User {name: 'Alice', age: 30})-[:KNOWS]->(b:User {name: 'Bob', age: 25})")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out,
		"3 change(s), nodes created: 2, relationships created: 1, properties set: 4 ("), out)

	out, _, err = runCLI(t, "--db", db, "query",
		"MATCH (n:User) WHERE n.age > $min RETURN n", "--param", "min=26")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"age":30,"id":1,"name":"Alice"}`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1 row(s) ("), lines[1])
}

func TestQueryCommand_JSONOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "graph.db")

	out, _, err := runCLI(t, "--db", db, "--format", "json", "query",
		"CREATE (n:City {name: $name}) RETURN n.name AS name, id(n) AS id", "-p", "name=Paris")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Rows    []map[string]any `json:"rows"`
			Columns []string         `json:"columns"`
			Count   int              `json:"count"`
			Stats   map[string]int   `json:"stats"`
		} `json:"data"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, []string{"name", "id"}, resp.Data.Columns)
	assert.Equal(t, []map[string]any{{"name": "Paris", "id": float64(1)}}, resp.Data.Rows)
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, 1, resp.Data.Stats["nodes_created"])
}

func TestQueryCommand_Failures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantExit int
	}{
		{
			name:     "parse error",
			args:     []string{"query", "MATCH (n:User RETURN n"},
			wantOut:  "Error [E001] PARSE_ERROR: expected ')', got keyword RETURN (line 1, column 15)",
			wantExit: ExitFailure,
		},
		{
			name:     "unbound parameter",
			args:     []string{"query", "MATCH (n {name: $name}) RETURN n"},
			wantOut:  "Error [E002] UNBOUND_PARAMETER: parameter $name is not bound",
			wantExit: ExitFailure,
		},
		{
			name:     "bad param flag",
			args:     []string{"query", "RETURN 1", "--param", "oops"},
			wantOut:  "Error [E010]",
			wantExit: ExitCommandError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := filepath.Join(t.TempDir(), "graph.db")
			out, _, err := runCLI(t, append([]string{"--db", db}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestQueryCommand_ExecutionFailureRollsBack(t *testing.T) {
	db := filepath.Join(t.TempDir(), "graph.db")
	_, _, err := runCLI(t, "--db", db, "query", "CREATE (:Person)-[:OWNS]->(:Car)")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--db", db, "--format", "json", "query", "MATCH (p:Person) SET p.name = 'x' DELETE p")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeExecution, resp.Error.Code)

	out, _, err = runCLI(t, "--db", db, "query", "MATCH (p:Person) RETURN p")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"id":1}`+"\n"), "SET must be rolled back: %s", out)
}

func TestQueryCommand_Explain(t *testing.T) {
	db := filepath.Join(t.TempDir(), "never-created.db")

	out, _, err := runCLI(t, "--db", db, "--format", "json", "query", "--explain",
		"MATCH (n:User {name: $name}) RETURN n", "-p", "name=Alice")
	require.NoError(t, err)

	var resp struct {
		Data Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Statements, 2)
	assert.Equal(t, "expand", resp.Data.Statements[0].Mode)
	assert.Contains(t, resp.Data.Statements[0].Args, `"Alice"`)
	assert.Equal(t, []string{"n"}, resp.Data.Statements[0].Binds)
	assert.Equal(t, "project", resp.Data.Statements[1].Mode)
	assert.Equal(t, []string{"id(n)"}, resp.Data.Statements[1].Args)
	assert.NotEmpty(t, resp.Data.Fingerprint)

	assert.NoFileExists(t, db, "explain must not touch storage")
}

func TestQueryCommand_ExplainText(t *testing.T) {
	out, _, err := runCLI(t, "query", "--explain", "MERGE (t:Tag {name: 'go'})")
	require.NoError(t, err)
	assert.Contains(t, out, "0. expand (optional): SELECT")
	assert.Contains(t, out, "1. insert: INSERT INTO nodes")
	assert.Contains(t, out, "skipped when t is bound")
	assert.Contains(t, out, "fingerprint: ")
}
