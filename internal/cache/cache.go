// Package cache persists per-post completion state in a SQLite database kept
// next to the author's downloaded files. A row records which content
// categories finished for a post at a given revision; a post updated on the
// platform invalidates its row so the next run re-downloads everything
// requested.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/boosty-tools/boosty-dl/internal/helpers"
	"github.com/boosty-tools/boosty-dl/internal/model"
)

// FileName is the database filename created inside the author directory.
const FileName = "post_cache.db"

const schema = `
CREATE TABLE IF NOT EXISTS post_cache (
	post_id      TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	last_updated TEXT NOT NULL,
	categories   TEXT NOT NULL
);`

// Error wraps a cache failure with the operation that hit it. Cache errors
// abort the run: a broken database would make every completion decision
// wrong, so the top level reports it with a --clean-cache hint instead of
// retrying.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("post cache: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Entry is one cached post row.
type Entry struct {
	PostID    string
	Title     string
	UpdatedAt time.Time
	Done      model.CategorySet
}

// Cache is a handle on one author's completion database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", err)
	}
	// The driver serializes writes; a single connection avoids SQLITE_BUSY
	// on concurrent statement use.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, wrap("migrate", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return wrap("close", c.db.Close())
}

// Get returns the row for postID, or nil when the post was never recorded.
func (c *Cache) Get(ctx context.Context, postID string) (*Entry, error) {
	var (
		e          Entry
		updatedRaw string
		catsRaw    string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT post_id, title, last_updated, categories FROM post_cache WHERE post_id = ?`,
		postID,
	).Scan(&e.PostID, &e.Title, &updatedRaw, &catsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", err)
	}
	e.UpdatedAt, err = time.Parse(time.RFC3339, updatedRaw)
	if err != nil {
		return nil, wrap("get", fmt.Errorf("bad last_updated %q: %w", updatedRaw, err))
	}
	e.Done, err = model.ParseCategorySet(catsRaw)
	if err != nil {
		return nil, wrap("get", err)
	}
	return &e, nil
}

// Missing returns the subset of requested categories not yet completed for
// the post at revision updatedAt. The cache row and the on-disk folder form
// a pair: a stale revision, a changed title or a vanished destination
// directory purges the row, so everything requested is missing again.
func (c *Cache) Missing(ctx context.Context, postID, title string, updatedAt time.Time, requested model.CategorySet, destDir string) (model.CategorySet, error) {
	entry, err := c.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return requested.Clone(), nil
	}
	dirOK, err := helpers.DirExists(destDir)
	if err != nil {
		return nil, wrap("missing", err)
	}
	if !entry.UpdatedAt.Equal(updatedAt) || entry.Title != title || !dirOK {
		if err := c.PurgePost(ctx, postID); err != nil {
			return nil, err
		}
		return requested.Clone(), nil
	}
	return requested.Subtract(entry.Done), nil
}

// EnsureFolderMatches reconciles the destination folder with a remote title
// change. When the cached title differs, the old folder is renamed to the
// new name (only when the old exists and the new does not) and the row is
// updated, so an unchanged revision still counts as cached afterwards.
// dirFor builds the destination path for a given stored title.
func (c *Cache) EnsureFolderMatches(ctx context.Context, postID, currentTitle string, dirFor func(title string) string) error {
	entry, err := c.Get(ctx, postID)
	if err != nil {
		return err
	}
	if entry == nil || entry.Title == currentTitle {
		return nil
	}
	oldDir := dirFor(entry.Title)
	newDir := dirFor(currentTitle)
	oldOK, err := helpers.DirExists(oldDir)
	if err != nil {
		return wrap("rename", err)
	}
	newOK, err := helpers.DirExists(newDir)
	if err != nil {
		return wrap("rename", err)
	}
	if oldOK && !newOK {
		if err := os.Rename(oldDir, newDir); err != nil {
			return wrap("rename", err)
		}
	}
	return c.UpdateTitle(ctx, postID, currentTitle)
}

// RecordCompletion marks the given categories done for the post at revision
// updatedAt. When the stored row is for the same revision the sets merge, so
// partial runs with different filters accumulate; a new revision replaces
// the row outright.
func (c *Cache) RecordCompletion(ctx context.Context, postID, title string, updatedAt time.Time, done model.CategorySet) error {
	entry, err := c.Get(ctx, postID)
	if err != nil {
		return err
	}
	if entry != nil && entry.UpdatedAt.Equal(updatedAt) {
		done = done.Union(entry.Done)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO post_cache (post_id, title, last_updated, categories) VALUES (?, ?, ?, ?)
		 ON CONFLICT(post_id) DO UPDATE SET title = excluded.title,
		   last_updated = excluded.last_updated, categories = excluded.categories`,
		postID, title, updatedAt.UTC().Format(time.RFC3339), done.String(),
	)
	return wrap("record", err)
}

// UpdateTitle rewrites the stored title after the post folder was renamed to
// follow a title change on the platform.
func (c *Cache) UpdateTitle(ctx context.Context, postID, title string) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE post_cache SET title = ? WHERE post_id = ?`, title, postID)
	return wrap("update title", err)
}

// PurgePost drops the row for one post.
func (c *Cache) PurgePost(ctx context.Context, postID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM post_cache WHERE post_id = ?`, postID)
	return wrap("purge post", err)
}

// Purge drops every row. The files on disk stay; the next run re-downloads.
func (c *Cache) Purge(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM post_cache`)
	return wrap("purge", err)
}
