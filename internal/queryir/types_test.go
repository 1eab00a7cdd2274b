package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cypherlite/internal/ir"
)

func sampleResult() *TranslationResult {
	return &TranslationResult{
		Statements: []Statement{
			{
				SQL:    "INSERT INTO nodes (label, properties) VALUES (?, ?)",
				Args:   []Arg{Value("User"), Value(`{"name":"Alice"}`)},
				Mode:   ModeInsert,
				Shape:  ShapeBindings,
				Binds:  []string{"n"},
				Effect: Stats{NodesCreated: 1},
			},
			{
				SQL:   "SELECT p0.id, p0.properties FROM nodes p0 WHERE p0.id = ?",
				Args:  []Arg{VarRef("n")},
				Mode:  ModeProject,
				Shape: ShapeRows,
				Columns: []Column{
					{Name: "id(n)", Kind: ColumnID, Var: "n", Index: 0},
				},
			},
		},
		HasReturn: true,
		Columns:   []string{"id(n)"},
	}
}

func TestArg(t *testing.T) {
	assert.False(t, Value(int64(1)).IsVar())
	assert.True(t, VarRef("n").IsVar())
	assert.Equal(t, "n", VarRef("n").Var)
}

func TestStatsAdd(t *testing.T) {
	var s Stats
	assert.True(t, s.IsZero())

	s.Add(Stats{NodesCreated: 1, PropertiesSet: 2}, 3)
	s.Add(Stats{EdgesDeleted: 1}, 2)

	assert.Equal(t, Stats{NodesCreated: 3, PropertiesSet: 6, EdgesDeleted: 2}, s)
	assert.False(t, s.IsZero())
}

func TestFingerprintDeterministic(t *testing.T) {
	a, err := sampleResult().Fingerprint()
	require.NoError(t, err)
	b, err := sampleResult().Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintSensitiveToArgs(t *testing.T) {
	base, err := sampleResult().Fingerprint()
	require.NoError(t, err)

	changed := sampleResult()
	changed.Statements[0].Args[0] = Value("Admin")
	other, err := changed.Fingerprint()
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
}

func TestFingerprintDistinguishesVarFromValue(t *testing.T) {
	a := sampleResult()
	b := sampleResult()
	b.Statements[1].Args[0] = Value("n")

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)

	assert.NotEqual(t, fa, fb)
}

func TestFingerprintRejectsUnsupportedArg(t *testing.T) {
	r := sampleResult()
	r.Statements[0].Args[0] = Value(struct{}{})

	_, err := r.Fingerprint()
	assert.Error(t, err)
}

func TestColumnLiteralInFingerprint(t *testing.T) {
	a := &TranslationResult{Statements: []Statement{{
		Mode: ModeProject, Shape: ShapeRows,
		Columns: []Column{{Name: "x", Kind: ColumnLiteral, Value: ir.IRInt(1)}},
	}}}
	b := &TranslationResult{Statements: []Statement{{
		Mode: ModeProject, Shape: ShapeRows,
		Columns: []Column{{Name: "x", Kind: ColumnLiteral, Value: ir.IRFloat(1)}},
	}}}

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "expand", ModeExpand.String())
	assert.Equal(t, "project", ModeProject.String())
	assert.Equal(t, "bindings", ShapeBindings.String())
	assert.Equal(t, "edge", ColumnEdge.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
