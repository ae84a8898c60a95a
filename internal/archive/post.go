package archive

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/boosty-tools/boosty-dl/internal/api"
	"github.com/boosty-tools/boosty-dl/internal/download"
	"github.com/boosty-tools/boosty-dl/internal/external"
	"github.com/boosty-tools/boosty-dl/internal/helpers"
	"github.com/boosty-tools/boosty-dl/internal/htmlgen"
	"github.com/boosty-tools/boosty-dl/internal/mapper"
	"github.com/boosty-tools/boosty-dl/internal/model"
	"github.com/boosty-tools/boosty-dl/internal/progress"
)

// ProcessPost archives one post: reconcile the folder name, work out which
// categories are still missing, pull the artifacts and render the HTML
// body, then commit the completion record. Single attempt; the crawl loop
// owns retries.
func (a *Archiver) ProcessPost(ctx context.Context, dto *api.PostDTO) error {
	res := mapper.MapPost(dto, a.Preferred)
	post := &res.Post
	title := cleanTitle(post.Title, post.ID)

	dirFor := func(t string) string { return a.postDir(post.CreatedAt, t, post.ID) }
	if err := a.Cache.EnsureFolderMatches(ctx, post.ID, title, dirFor); err != nil {
		return err
	}
	destDir := dirFor(title)

	requested := a.Filter.Clone()
	if len(res.Incomplete) > 0 {
		a.Progress.Warning(fmt.Sprintf(
			"%s: platform still processing %s, excluded from this run", title, res.Incomplete))
		requested = requested.Subtract(res.Incomplete)
	}

	missing, err := a.Cache.Missing(ctx, post.ID, title, post.UpdatedAt, requested, destDir)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		a.Progress.Notice(fmt.Sprintf("%s: up to date, skipping", title))
		return nil
	}
	if !mapper.HasMatchingContent(post, missing) {
		a.Progress.Notice(fmt.Sprintf("%s: no matching content, skipping", title))
		return nil
	}

	if err := helpers.MakeDirs(destDir); err != nil {
		return err
	}
	postTask := a.Progress.CreateTask(title, int64(len(post.Chunks)), 1)
	defer a.Progress.CompleteTask(postTask)

	wantHTML := missing.Has(model.CategoryPostContent)
	var htmlChunks []model.Chunk
	for i, chunk := range post.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		local, err := a.processChunk(ctx, destDir, title, i, chunk, missing)
		if err != nil {
			return err
		}
		if wantHTML && local != nil {
			htmlChunks = append(htmlChunks, local)
		}
		a.Progress.UpdateTask(postTask, 1, progress.TotalUnknown, "")
	}

	if wantHTML {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := htmlgen.Render(post.Title, htmlChunks)
		if err := htmlgen.WriteDocument(filepath.Join(destDir, htmlgen.DocumentName), doc); err != nil {
			return err
		}
	}

	// Never record a category the post had no chunks of, so a chunk added
	// later under an unchanged timestamp is still picked up.
	completed := model.NewCategorySet()
	for _, chunk := range post.Chunks {
		if c := mapper.CategoryOf(chunk); c != "" && missing.Has(c) {
			completed.Add(c)
		}
	}
	if err := a.Cache.RecordCompletion(ctx, post.ID, title, post.UpdatedAt, completed); err != nil {
		return err
	}
	a.Progress.Success(fmt.Sprintf("%s: done (%s)", title, completed))
	return nil
}

// processChunk routes one chunk: download it when its category is missing,
// and return the chunk to embed in the HTML body (nil when it should not
// appear there). Media chunks come back rewritten to their local paths.
func (a *Archiver) processChunk(ctx context.Context, destDir, title string, idx int, chunk model.Chunk, missing model.CategorySet) (model.Chunk, error) {
	wantHTML := missing.Has(model.CategoryPostContent)
	switch c := chunk.(type) {
	case model.TextChunk:
		if wantHTML {
			return c, nil
		}
	case model.ListChunk:
		if wantHTML {
			return c, nil
		}
	case model.ImageChunk:
		if !wantHTML {
			return nil, nil
		}
		name, err := a.fetch(ctx, destDir, imagesDir, download.Request{
			URL:      c.URL,
			Filename: remoteName(c.URL, fmt.Sprintf("image_%d", idx+1)),
			GuessExt: true,
		})
		if err != nil {
			return nil, err
		}
		return model.ImageChunk{URL: path.Join(imagesDir, name)}, nil
	case model.FileChunk:
		if !missing.Has(model.CategoryFiles) {
			return nil, nil
		}
		name, err := a.fetch(ctx, destDir, filesDir, download.Request{
			URL:      c.URL,
			Filename: c.Filename,
		})
		if err != nil {
			return nil, err
		}
		if wantHTML {
			return model.FileChunk{URL: path.Join(filesDir, name), Filename: c.Filename}, nil
		}
	case model.BoostyVideoChunk:
		if !missing.Has(model.CategoryBoostyVideos) {
			return nil, nil
		}
		mediaURL := c.URL
		if c.Tier == model.TierHLS {
			resolved, err := a.Files.ResolveHLSVariant(ctx, c.URL)
			if err != nil {
				return nil, err
			}
			mediaURL = resolved
		}
		videoName := c.Title
		if videoName == "" {
			videoName = title
		}
		name, err := a.fetch(ctx, destDir, boostyVideosDir, download.Request{
			URL:      mediaURL,
			Filename: videoName,
			GuessExt: true,
		})
		if err != nil {
			return nil, err
		}
		if wantHTML {
			return model.BoostyVideoChunk{
				Title: c.Title,
				URL:   path.Join(boostyVideosDir, name),
				Tier:  c.Tier,
			}, nil
		}
	case model.ExternalVideoChunk:
		if missing.Has(model.CategoryExternalVideos) {
			if err := a.fetchExternal(ctx, destDir, c.URL); err != nil {
				return nil, err
			}
		}
		if wantHTML {
			// External players keep their remote URL in the document; the
			// external tool names its own output files.
			return c, nil
		}
	case model.AudioChunk:
		if !missing.Has(model.CategoryAudio) {
			return nil, nil
		}
		name, err := a.fetch(ctx, destDir, audioDir, download.Request{
			URL:      c.URL,
			Filename: c.Title,
			GuessExt: true,
		})
		if err != nil {
			return nil, err
		}
		if wantHTML {
			return model.AudioChunk{Title: c.Title, URL: path.Join(audioDir, name)}, nil
		}
	}
	return nil, nil
}

// fetch downloads one artifact into a category subdirectory, reporting it
// as an indented file-level task.
func (a *Archiver) fetch(ctx context.Context, destDir, subdir string, req download.Request) (string, error) {
	dir := filepath.Join(destDir, subdir)
	if err := helpers.MakeDirs(dir); err != nil {
		return "", err
	}
	req.Dir = dir

	var (
		tid     progress.TaskID
		started bool
	)
	req.Progress = func(st download.Status) {
		if !started {
			tid = a.Progress.CreateTask(st.Name, st.Total, 2)
			started = true
		}
		a.Progress.UpdateTask(tid, st.Delta, st.Total, "")
	}
	name, err := a.Files.Download(ctx, req)
	if started {
		a.Progress.CompleteTask(tid)
	}
	return name, err
}

// fetchExternal hands a third-party video to yt-dlp when it is installed
// and the host is supported; otherwise the video stays a link in the HTML.
func (a *Archiver) fetchExternal(ctx context.Context, destDir, videoURL string) error {
	if a.External == nil || !a.External.Available() {
		a.Progress.Warning(fmt.Sprintf("yt-dlp not found, keeping %s as a link", videoURL))
		return nil
	}
	if !external.SupportedURL(videoURL) {
		a.Progress.Warning(fmt.Sprintf("unsupported video host, keeping %s as a link", videoURL))
		return nil
	}
	dir := filepath.Join(destDir, externalVideosDir)
	if err := helpers.MakeDirs(dir); err != nil {
		return err
	}
	a.Progress.Wait(fmt.Sprintf("fetching external video %s", videoURL))
	return a.External.Download(ctx, videoURL, dir)
}

// remoteName derives a filename from the URL path, falling back when the
// path carries none.
func remoteName(raw, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
