package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShowGraph(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "graph.db")
	_, _, err := runCLI(t, "--db", db, "query",
		"CREATE (:User {name: 'a', tags: ['x']})-[:KNOWS {since: 2020}]->(:User {name: 'b'})")
	require.NoError(t, err)
	_, _, err = runCLI(t, "--db", db, "query", "CREATE ()")
	require.NoError(t, err)
	return db
}

func TestShowCommand_Text(t *testing.T) {
	db := seedShowGraph(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"labeled node", []string{"node", "1"}, `(1:User {"name":"a","tags":["x"]})` + "\n"},
		{"unlabeled node", []string{"node", "3"}, "(3 {})\n"},
		{"relationship", []string{"relationship", "1"}, `[1:KNOWS 1->2 {"since":2020}]` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db, "show"}, tt.args...)
			out, _, err := runCLI(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestShowCommand_JSON(t *testing.T) {
	db := seedShowGraph(t)

	out, _, err := runCLI(t, "--db", db, "--format", "json", "show", "relationship", "1")
	require.NoError(t, err)
	var resp struct {
		Data EntityView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, "KNOWS", resp.Data.Type)
	assert.Equal(t, int64(1), resp.Data.SourceID)
	assert.Equal(t, int64(2), resp.Data.TargetID)
	assert.Equal(t, map[string]any{"since": float64(2020)}, resp.Data.Properties)
}

func TestShowCommand_Errors(t *testing.T) {
	db := seedShowGraph(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"missing node", []string{"node", "99"}, ExitFailure, "E013"},
		{"missing relationship", []string{"relationship", "99"}, ExitFailure, "E013"},
		{"non-numeric id", []string{"node", "abc"}, ExitCommandError, "E010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db, "show"}, tt.args...)
			out, _, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}
