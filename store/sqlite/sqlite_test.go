package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthive/hive/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Now().Truncate(time.Millisecond)
	rec := store.RunRecord{
		ID:           "r1",
		TaskID:       "t1",
		Operation:    "debate_round",
		Status:       "partial",
		SubtaskCount: 5,
		SuccessRate:  0.8,
		Duration:     1250 * time.Millisecond,
		CreatedAt:    created,
	}
	require.NoError(t, s.SaveRun(ctx, rec))

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, rec.TaskID, got.TaskID)
	assert.Equal(t, rec.Operation, got.Operation)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.SubtaskCount, got.SubtaskCount)
	assert.Equal(t, rec.SuccessRate, got.SuccessRate)
	assert.Equal(t, rec.Duration, got.Duration)
	assert.Equal(t, created.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestSQLiteGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteListOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.SaveRun(ctx, store.RunRecord{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "r3", records[0].ID)

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "r3", limited[0].ID)
}

func TestSQLiteSaveReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, store.RunRecord{ID: "r1", Status: "partial", CreatedAt: time.Now()}))
	require.NoError(t, s.SaveRun(ctx, store.RunRecord{ID: "r1", Status: "completed", CreatedAt: time.Now()}))

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
}
