package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boosty-tools/boosty-dl/internal/api"
	"github.com/boosty-tools/boosty-dl/internal/cache"
)

// ErrPostNotFound is returned by RunSingle when the crawl exhausts the
// author's pages without seeing the requested post id.
var ErrPostNotFound = errors.New("post not found in author's feed")

// Run archives every accessible post of the author, newest first. Per-post
// failures are retried with backoff and finally logged and skipped; the
// run itself only stops on cancellation, a fatal API error or a broken
// cache.
func (a *Archiver) Run(ctx context.Context, author string) error {
	return a.API.Iterate(ctx, author, a.PageSize, func(page *api.PostsResponse, pageNum int) error {
		pageTask := a.Progress.CreateTask(
			fmt.Sprintf("Page %d", pageNum), int64(len(page.Posts)), 0)
		for i := range page.Posts {
			dto := &page.Posts[i]
			if err := ctx.Err(); err != nil {
				return err
			}
			if !dto.HasAccess {
				// Not cached either: a future run with a better
				// subscription must attempt this post again.
				a.Progress.Warning(fmt.Sprintf(
					"%s: no access with current subscription, skipping", displayTitle(dto)))
				a.Progress.UpdateTask(pageTask, 1, -1, "")
				continue
			}
			if err := a.processWithRetry(ctx, dto); err != nil {
				return err
			}
			a.Progress.UpdateTask(pageTask, 1, -1, "")
		}
		a.Progress.CompleteTask(pageTask)
		a.Progress.Success(fmt.Sprintf("Finished page %d", pageNum))
		return nil
	})
}

// RunSingle archives exactly one post, located by walking the author's
// pages until the id turns up.
func (a *Archiver) RunSingle(ctx context.Context, author, postID string) error {
	found := errors.New("found")
	err := a.API.Iterate(ctx, author, a.PageSize, func(page *api.PostsResponse, pageNum int) error {
		for i := range page.Posts {
			dto := &page.Posts[i]
			if dto.ID != postID {
				continue
			}
			if !dto.HasAccess {
				return fmt.Errorf("%s: no access with current subscription", displayTitle(dto))
			}
			if err := a.processWithRetry(ctx, dto); err != nil {
				return err
			}
			return found
		}
		a.Progress.Wait(fmt.Sprintf("post not on page %d, continuing", pageNum))
		return nil
	})
	if errors.Is(err, found) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
}

// CountPosts walks the pagination and returns the total number of posts
// plus how many of them the current subscription can read.
func (a *Archiver) CountPosts(ctx context.Context, author string) (total, accessible int, err error) {
	err = a.API.Iterate(ctx, author, a.PageSize, func(page *api.PostsResponse, pageNum int) error {
		total += len(page.Posts)
		for i := range page.Posts {
			if page.Posts[i].HasAccess {
				accessible++
			}
		}
		a.Progress.Wait(fmt.Sprintf("counted %d posts through page %d", total, pageNum))
		return nil
	})
	return total, accessible, err
}

// processWithRetry runs ProcessPost with bounded exponential backoff.
// Cancellation and cache corruption propagate immediately; any other final
// failure marks the post as skipped and lets the crawl continue.
func (a *Archiver) processWithRetry(ctx context.Context, dto *api.PostDTO) error {
	backoff := a.RetryBaseDelay
	if backoff <= 0 {
		backoff = postRetryInitial
	}
	var lastErr error
	for attempt := 1; attempt <= postRetryAttempts; attempt++ {
		err := a.ProcessPost(ctx, dto)
		if err == nil {
			return nil
		}
		if isFatal(ctx, err) {
			return err
		}
		lastErr = err
		if attempt < postRetryAttempts {
			a.Progress.Warning(fmt.Sprintf(
				"%s: attempt %d/%d failed (%v), retrying in %s",
				displayTitle(dto), attempt, postRetryAttempts, err, backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, postRetryMax)
		}
	}
	a.Progress.Error(fmt.Sprintf("%s: giving up after %d attempts: %v",
		displayTitle(dto), postRetryAttempts, lastErr))
	a.recordFailure(dto.ID, displayTitle(dto), lastErr)
	return nil
}

// isFatal reports errors the retry loop must not absorb.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var cacheErr *cache.Error
	return errors.As(err, &cacheErr)
}

func displayTitle(dto *api.PostDTO) string {
	return cleanTitle(dto.Title, dto.ID)
}
