package diagstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndList(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "diag.db")
	store, err := Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	errs := sink.New()
	errs.Append("q.hcl:1,1-26", "Type error while calling: first")
	errs.Append("q.hcl:7,1-26", "Type error while calling: second")

	// --- Act ---
	require.NoError(t, store.Save(ctx, "run-a", errs.Rows()))
	require.NoError(t, store.Save(ctx, "run-b", errs.Rows()[:1]))
	got, err := store.List(ctx, "run-a")

	// --- Assert ---
	require.NoError(t, err)
	for i := range got {
		require.True(t, fixed.Equal(got[i].CreatedAt))
		got[i].CreatedAt = time.Time{}
	}
	require.Equal(t, []Record{
		{RunID: "run-a", Seq: 0, Source: "q.hcl:1,1-26", Message: "Type error while calling: first"},
		{RunID: "run-a", Seq: 1, Source: "q.hcl:7,1-26", Message: "Type error while calling: second"},
	}, got)

	other, err := store.List(ctx, "run-b")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestStore_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "diag.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	errs := sink.New()
	errs.Append("src", "msg")
	require.NoError(t, store.Save(ctx, "run", errs.Rows()))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "msg", got[0].Message)
}

func TestStore_DuplicateRunIsRolledBack(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "diag.db"))
	require.NoError(t, err)
	defer store.Close()

	errs := sink.New()
	errs.Append("src", "msg")
	require.NoError(t, store.Save(ctx, "run", errs.Rows()))

	errs.Append("src", "another")
	err = store.Save(ctx, "run", errs.Rows())
	require.Error(t, err)

	got, err := store.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got, 1, "the failed save must not leave partial rows")
}

func TestStore_EmptyRun(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "diag.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, "run", nil))
	got, err := store.List(ctx, "run")
	require.NoError(t, err)
	require.Empty(t, got)
}
