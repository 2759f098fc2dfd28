package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRecordAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	rec := Record{ID: "r1", RequestHash: "h1", Status: "optimal", Objective: 0, CreatedAt: time.Unix(100, 0)}
	require.NoError(t, m.Record(ctx, rec))
	got, err := m.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestMemoryGetMissingReturnsErrNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRecentByRequestHashOrdersNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Record(ctx, Record{ID: "r1", RequestHash: "h1", CreatedAt: time.Unix(100, 0)}))
	require.NoError(t, m.Record(ctx, Record{ID: "r2", RequestHash: "h1", CreatedAt: time.Unix(200, 0)}))
	require.NoError(t, m.Record(ctx, Record{ID: "r3", RequestHash: "h2", CreatedAt: time.Unix(300, 0)}))

	recent, err := m.RecentByRequestHash(ctx, "h1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "r2", recent[0].ID)
}
