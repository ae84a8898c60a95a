// Package archive drives the crawl: it walks an author's posts page by
// page, decides per post which content categories still need work, pulls
// the artifacts to disk and renders the textual body as a local HTML
// document. The completion cache makes re-runs incremental.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boosty-tools/boosty-dl/internal/api"
	"github.com/boosty-tools/boosty-dl/internal/cache"
	"github.com/boosty-tools/boosty-dl/internal/download"
	"github.com/boosty-tools/boosty-dl/internal/helpers"
	"github.com/boosty-tools/boosty-dl/internal/model"
	"github.com/boosty-tools/boosty-dl/internal/progress"
)

// Per-post subdirectories, one per downloadable category.
const (
	imagesDir         = "images"
	filesDir          = "files"
	boostyVideosDir   = "boosty_videos"
	externalVideosDir = "external_videos"
	audioDir          = "audio"
)

// failedListName is the per-author log of posts given up on after retries.
const failedListName = "failed_downloads.txt"

const (
	postRetryAttempts = 5
	postRetryInitial  = 1 * time.Second
	postRetryMax      = 30 * time.Second
)

// FileDownloader is the direct-download capability handed to the use cases.
// *download.Downloader satisfies it; tests inject fakes.
type FileDownloader interface {
	Download(ctx context.Context, req download.Request) (string, error)
	ResolveHLSVariant(ctx context.Context, masterURL string) (string, error)
}

// ExternalDownloader fetches third-party-hosted videos (yt-dlp).
type ExternalDownloader interface {
	Available() bool
	Download(ctx context.Context, videoURL, dir string) error
}

// Archiver bundles everything one run needs: both HTTP paths, the cache,
// the active filter and quality, and the progress reporter.
type Archiver struct {
	API       *api.Client
	Files     FileDownloader
	External  ExternalDownloader
	Cache     *cache.Cache
	Filter    model.CategorySet
	Preferred model.VideoTier
	Progress  progress.Reporter

	// Root is the author directory everything lands under:
	// <target_root>/<author>/.
	Root string

	// PageSize overrides the posts-per-page request size when positive.
	PageSize int

	// RetryBaseDelay overrides the first retry backoff when positive.
	RetryBaseDelay time.Duration
}

// shortID is the 8-character post id prefix used in folder names to keep
// same-day same-title posts apart.
func shortID(postID string) string {
	if len(postID) > 8 {
		return postID[:8]
	}
	return postID
}

// cleanTitle sanitizes a post title for use in a folder name. Dots are
// dropped on top of the unsafe set so the date prefix stays unambiguous;
// an empty title gets a synthesized one from the post id.
func cleanTitle(title, postID string) string {
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Not title (id_%s)", shortID(postID))
	}
	clean := helpers.SanitizeName(title)
	clean = strings.ReplaceAll(clean, ".", "")
	return strings.TrimSpace(clean)
}

// postDir builds the destination directory for a post given its already
// cleaned title.
func (a *Archiver) postDir(createdAt time.Time, title, postID string) string {
	name := fmt.Sprintf("%s - %s (%s)", createdAt.Format("2006-01-02"), title, shortID(postID))
	return filepath.Join(a.Root, name)
}

// recordFailure appends the post to the per-author failure list so the user
// can retry or inspect by hand. Best effort; a write failure only logs.
func (a *Archiver) recordFailure(postID, title string, cause error) {
	line := fmt.Sprintf("%s\t%s\t%v\n", postID, title, cause)
	f, err := os.OpenFile(filepath.Join(a.Root, failedListName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		a.Progress.Warning(fmt.Sprintf("cannot record failed post: %v", err))
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		a.Progress.Warning(fmt.Sprintf("cannot record failed post: %v", err))
	}
}
