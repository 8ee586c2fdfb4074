package eventstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_AppendAndQuery(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "b1", TypeBuildStarted, []byte(`{"project":"g:n:1"}`), map[string]string{"host": "ci"}))
	require.NoError(t, store.Append(ctx, "b2", TypeBuildStarted, nil, nil))
	require.NoError(t, store.Append(ctx, "b1", TypeBuildCompleted, []byte(`{"status":"success"}`), nil))

	events, err := store.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, TypeBuildStarted, events[0].Type())
	assert.Equal(t, "ci", events[0].Metadata()["host"])
	assert.Equal(t, TypeBuildCompleted, events[1].Type())

	all, err := store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ids, err := store.RecentBuildIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b1"}, ids)
}

func TestSQLiteStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), "b1", TypeBuildStarted, nil, nil))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	events, err := reopened.GetByBuildID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRecorder_NilStore(t *testing.T) {
	ev, err := NewBuildStarted("b1", BuildStartedData{Project: "g:n:1"})
	require.NoError(t, err)
	assert.NoError(t, NewRecorder(nil).Record(context.Background(), ev))

	var r *Recorder
	assert.NoError(t, r.Record(context.Background(), ev))
}
