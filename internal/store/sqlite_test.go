package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/station-insight-cli/internal/model"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.Migrate(context.Background()))
	return h
}

func TestRecordAndRecent(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	report := model.Report{
		Summary:  "입지 요약",
		Insights: []string{"인사이트 1", "인사이트 2"},
		Actions:  []string{"실행 1"},
	}
	require.NoError(t, h.Record(ctx, 42, SourceLLM, report))
	require.NoError(t, h.Record(ctx, 7, SourceFallback, model.Report{Summary: "대체 요약"}))

	entries, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byStation := make(map[int]HistoryEntry, len(entries))
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
		byStation[e.StationID] = e
	}

	got := byStation[42]
	assert.Equal(t, SourceLLM, got.Source)
	assert.Equal(t, report, got.Report)

	assert.Equal(t, SourceFallback, byStation[7].Source)
}

func TestRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(ctx, i, SourceFallback, model.Report{Summary: "r"}))
	}

	entries, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Non-positive limits use the default.
	entries, err = h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRecentEmpty(t *testing.T) {
	h := openTestHistory(t)

	entries, err := h.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMigrateIdempotent(t *testing.T) {
	h := openTestHistory(t)
	assert.NoError(t, h.Migrate(context.Background()))
}
