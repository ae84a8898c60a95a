package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boosty-tools/boosty-dl/internal/model"
)

func openTemp(t *testing.T) (*Cache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, FileName))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, dir
}

func mkPostDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

var (
	rev1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rev2 = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
)

func TestMissingUnknownPostReturnsAllRequested(t *testing.T) {
	c, root := openTemp(t)
	requested := model.NewCategorySet(model.CategoryFiles, model.CategoryPostContent)
	missing, err := c.Missing(context.Background(), "p1", "Title", rev1, requested, filepath.Join(root, "nope"))
	require.NoError(t, err)
	require.True(t, missing.Equal(requested))
}

func TestRecordThenMissingIsEmpty(t *testing.T) {
	c, root := openTemp(t)
	dir := mkPostDir(t, root, "2024-03-01 - Title (p1)")
	requested := model.NewCategorySet(model.CategoryFiles)

	require.NoError(t, c.RecordCompletion(context.Background(), "p1", "Title", rev1, requested))
	missing, err := c.Missing(context.Background(), "p1", "Title", rev1, requested, dir)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestPartialFilterRunsAccumulate(t *testing.T) {
	c, root := openTemp(t)
	dir := mkPostDir(t, root, "post")
	ctx := context.Background()

	// First run downloads files only.
	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, model.NewCategorySet(model.CategoryFiles)))

	// Second run widens the filter; only the delta is missing.
	wider := model.NewCategorySet(model.CategoryFiles, model.CategoryPostContent)
	missing, err := c.Missing(ctx, "p1", "T", rev1, wider, dir)
	require.NoError(t, err)
	require.True(t, missing.Equal(model.NewCategorySet(model.CategoryPostContent)))

	// Same-revision completion unions with the stored set.
	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, missing))
	entry, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, entry.Done.Equal(wider))
}

func TestNewRevisionInvalidatesEverything(t *testing.T) {
	c, root := openTemp(t)
	dir := mkPostDir(t, root, "post")
	ctx := context.Background()
	requested := model.NewCategorySet(model.CategoryFiles, model.CategoryAudio)

	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, requested))
	missing, err := c.Missing(ctx, "p1", "T", rev2, requested, dir)
	require.NoError(t, err)
	require.True(t, missing.Equal(requested), "newer remote revision re-downloads all")

	// Recording the new revision replaces rather than unions.
	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev2, model.NewCategorySet(model.CategoryAudio)))
	entry, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, entry.Done.Equal(model.NewCategorySet(model.CategoryAudio)))
	require.True(t, entry.UpdatedAt.Equal(rev2))
}

func TestVanishedFolderPurgesRecord(t *testing.T) {
	c, root := openTemp(t)
	ctx := context.Background()
	requested := model.NewCategorySet(model.CategoryFiles)

	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, requested))
	missing, err := c.Missing(ctx, "p1", "T", rev1, requested, filepath.Join(root, "deleted-by-user"))
	require.NoError(t, err)
	require.True(t, missing.Equal(requested))

	entry, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.Nil(t, entry, "record for a vanished folder is purged")
}

func TestTitleMismatchPurgesRecord(t *testing.T) {
	c, root := openTemp(t)
	dir := mkPostDir(t, root, "post")
	ctx := context.Background()
	requested := model.NewCategorySet(model.CategoryFiles)

	require.NoError(t, c.RecordCompletion(ctx, "p1", "Old", rev1, requested))
	missing, err := c.Missing(ctx, "p1", "New", rev1, requested, dir)
	require.NoError(t, err)
	require.True(t, missing.Equal(requested))
}

func TestEnsureFolderMatchesRenames(t *testing.T) {
	c, root := openTemp(t)
	ctx := context.Background()
	dirFor := func(title string) string {
		return filepath.Join(root, "2024-03-01 - "+title+" (p1)")
	}
	mkPostDir(t, root, "2024-03-01 - Old (p1)")

	require.NoError(t, c.RecordCompletion(ctx, "p1", "Old", rev1, model.NewCategorySet(model.CategoryFiles)))
	require.NoError(t, c.EnsureFolderMatches(ctx, "p1", "New", dirFor))

	_, err := os.Stat(dirFor("New"))
	require.NoError(t, err, "folder renamed to the new title")
	_, err = os.Stat(dirFor("Old"))
	require.True(t, os.IsNotExist(err))

	// After reconciliation the unchanged revision still counts as cached.
	missing, err := c.Missing(ctx, "p1", "New", rev1, model.NewCategorySet(model.CategoryFiles), dirFor("New"))
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestEnsureFolderMatchesNoopWithoutRecord(t *testing.T) {
	c, root := openTemp(t)
	dirFor := func(title string) string { return filepath.Join(root, title) }
	require.NoError(t, c.EnsureFolderMatches(context.Background(), "ghost", "T", dirFor))
}

func TestPurge(t *testing.T) {
	c, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, model.NewCategorySet(model.CategoryFiles)))
	require.NoError(t, c.RecordCompletion(ctx, "p2", "T", rev1, model.NewCategorySet(model.CategoryFiles)))

	require.NoError(t, c.PurgePost(ctx, "p1"))
	entry, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.Nil(t, entry)

	require.NoError(t, c.Purge(ctx))
	entry, err = c.Get(ctx, "p2")
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	ctx := context.Background()

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.RecordCompletion(ctx, "p1", "T", rev1, model.NewCategorySet(model.CategoryAudio)))
	require.NoError(t, c.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()
	entry, err := c2.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.True(t, entry.Done.Equal(model.NewCategorySet(model.CategoryAudio)))
}
