package snapshots

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_MissingIsNotFound(t *testing.T) {
	r := NewFileRepository(filepath.Join(t.TempDir(), "none.json"))

	_, err := r.Read(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileRepository_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "litmgmt.json")
	r := NewFileRepository(path)

	require.NoError(t, r.Write(context.Background(), []byte(`{"a":1}`)))
	require.NoError(t, r.Write(context.Background(), []byte(`{"a":2}`)))

	got, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"a":2}`, string(got))
}

func TestFileRepository_UnreadableIsIOFailure(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRepository(dir) // a directory cannot be read as a file

	_, err := r.Read(context.Background())
	require.ErrorIs(t, err, common.ErrIOFailure)
	require.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestFileRepository_UnwritableIsIOFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	r := NewFileRepository(filepath.Join(blocker, "litmgmt.json"))
	err := r.Write(context.Background(), []byte("{}"))
	require.ErrorIs(t, err, common.ErrIOFailure)
}
