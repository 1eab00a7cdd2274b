package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTx_QueryMaterializesRows(t *testing.T) {
	s := createTestStore(t)
	seedGraph(t, s)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	rows, err := tx.Query(ctx, "SELECT id, label FROM nodes WHERE label = ? ORDER BY id", "User")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Equal(t, "User", fmt.Sprint(rows[1][1]))

	none, err := tx.Query(ctx, "SELECT id FROM nodes WHERE label = ?", "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	res, err := tx.Exec(ctx, "INSERT INTO nodes (label, properties) VALUES (?, ?)", "User", "{}")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	require.NoError(t, tx.Rollback())

	n, err := s.CountNodes(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestErrorClassification(t *testing.T) {
	s := createTestStore(t)
	a, _, _, _ := seedGraph(t, s)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	_, fkErr := tx.Exec(ctx, "DELETE FROM nodes WHERE id = ?", a)
	require.Error(t, fkErr)
	assert.True(t, IsForeignKeyViolation(fkErr))
	assert.True(t, IsConstraintViolation(fkErr))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("wrapped: %w", fkErr)))

	_, nullErr := tx.Exec(ctx, "INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, NULL, '{}')", a, a)
	require.Error(t, nullErr)
	assert.False(t, IsForeignKeyViolation(nullErr))
	assert.True(t, IsConstraintViolation(nullErr))

	_, missingErr := tx.Exec(ctx, "INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, 'X', '{}')", a, 999)
	require.Error(t, missingErr)
	assert.True(t, IsForeignKeyViolation(missingErr))

	plain := errors.New("disk on fire")
	assert.False(t, IsForeignKeyViolation(plain))
	assert.False(t, IsConstraintViolation(plain))
	assert.False(t, IsConstraintViolation(nil))
}
