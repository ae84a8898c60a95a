// boosty-dl archives an author's posts from boosty.to: it crawls the feed
// newest-first, downloads images, files, audio and videos, renders each
// post body as a local HTML document and keeps a per-author cache so
// re-runs only do the missing work.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/boosty-tools/boosty-dl/internal/api"
	"github.com/boosty-tools/boosty-dl/internal/archive"
	"github.com/boosty-tools/boosty-dl/internal/cache"
	"github.com/boosty-tools/boosty-dl/internal/config"
	"github.com/boosty-tools/boosty-dl/internal/download"
	"github.com/boosty-tools/boosty-dl/internal/external"
	"github.com/boosty-tools/boosty-dl/internal/helpers"
	"github.com/boosty-tools/boosty-dl/internal/model"
	"github.com/boosty-tools/boosty-dl/internal/progress"
	"github.com/boosty-tools/boosty-dl/internal/ui"
)

type args struct {
	Username       string   `arg:"--username" help:"author handle to archive"`
	PostURL        string   `arg:"-p,--post-url" help:"archive a single post by its public URL"`
	Filter         []string `arg:"-f,--content-type-filter,separate" help:"category to download, repeatable: post_content | files | boosty_videos | external_videos | audio (default: all)"`
	Quality        string   `arg:"-q,--preferred-video-quality" default:"medium" help:"smallest_size | low | medium | high | highest"`
	RequestDelay   float64  `arg:"-d,--request-delay-seconds" default:"2.5" help:"delay between page requests, minimum 1"`
	TotalPostCheck bool     `arg:"-t,--total-post-check" help:"count the author's posts and exit"`
	CleanCache     bool     `arg:"-c,--clean-cache" help:"purge the author's completion cache and exit"`
	Destination    string   `arg:"--destination-directory" help:"override the configured target directory"`
	Config         string   `arg:"--config" help:"config file path (default: config.yaml)"`
}

func (args) Description() string {
	return "Archive a Boosty author's posts: media, files and offline HTML."
}

func fail(msg string) {
	ui.PrintError(msg)
	os.Exit(1)
}

func main() {
	var a args
	arg.MustParse(&a)

	author := a.Username
	postID := ""
	if a.PostURL != "" {
		urlAuthor, id, err := api.ParsePostURL(a.PostURL)
		if err != nil {
			fail(err.Error())
		}
		if author != "" && author != urlAuthor {
			fail("--username and --post-url name different authors")
		}
		author, postID = urlAuthor, id
	}
	if author == "" {
		fail("an author is required: pass --username or --post-url")
	}

	filter, err := parseFilter(a.Filter)
	if err != nil {
		fail(err.Error())
	}
	quality := model.QualityOption(a.Quality)
	if !quality.Valid() {
		fail(fmt.Sprintf("unknown video quality %q", a.Quality))
	}

	cfg, err := config.Load(a.Config)
	if err != nil {
		if errors.Is(err, config.ErrCreated) {
			ui.PrintInfo("No config found; a sample was written.")
			ui.PrintInfo("Fill in auth.cookie and auth.auth_header from your browser session, then rerun.")
			os.Exit(1)
		}
		fail(err.Error())
	}
	if !cfg.HasCredentials() {
		ui.PrintWarning("No credentials configured; only public posts will be accessible.")
	}

	root := cfg.DownloadingSettings.TargetDirectory
	if a.Destination != "" {
		root = a.Destination
	}
	authorRoot := filepath.Join(root, author)
	if err := helpers.MakeDirs(authorRoot); err != nil {
		fail(fmt.Sprintf("cannot create %s: %v", authorRoot, err))
	}

	store, err := cache.Open(filepath.Join(authorRoot, cache.FileName))
	if err != nil {
		fail(fmt.Sprintf("%v\nIf the database is corrupted, rerun with --clean-cache.", err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.CleanCache {
		if err := store.Purge(ctx); err != nil {
			fail(err.Error())
		}
		ui.PrintSuccess(fmt.Sprintf("Cache for %s purged.", author))
		return
	}

	apiSession, dlSession, err := config.NewSessions(cfg)
	if err != nil {
		fail(err.Error())
	}
	delay := time.Duration(a.RequestDelay * float64(time.Second))
	client := api.NewClient(apiSession, "", cfg.Auth.AuthHeader, delay)

	arch := &archive.Archiver{
		API:       client,
		Files:     download.New(dlSession, api.UserAgent, cfg.Auth.AuthHeader),
		External:  external.New(),
		Cache:     store,
		Filter:    filter,
		Preferred: quality.Tier(),
		Progress:  progress.NewTerminal(os.Stdout),
		Root:      authorRoot,
	}

	switch {
	case a.TotalPostCheck:
		total, accessible, countErr := arch.CountPosts(ctx, author)
		err = countErr
		if err == nil {
			ui.PrintInfo(fmt.Sprintf("%s has %d posts, %d accessible with current subscription.",
				author, total, accessible))
		}
	case postID != "":
		err = arch.RunSingle(ctx, author, postID)
	default:
		err = arch.Run(ctx, author)
	}
	exit(err)
}

func parseFilter(names []string) (model.CategorySet, error) {
	if len(names) == 0 {
		return model.NewCategorySet(model.AllCategories...), nil
	}
	set := model.NewCategorySet()
	for _, name := range names {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		set.Add(c)
	}
	return set, nil
}

// exit translates the run's outcome into one human-readable line and an
// exit code. Fatal error kinds are only handled here.
func exit(err error) {
	if err == nil {
		if ui.RunErrorCount > 0 {
			ui.PrintWarning(fmt.Sprintf("Finished with %d failed posts, see failed_downloads.txt.", ui.RunErrorCount))
			os.Exit(1)
		}
		ui.PrintSuccess("All done.")
		return
	}
	if errors.Is(err, context.Canceled) {
		ui.PrintNotice("Interrupted. Partial files were cleaned up; goodbye.")
		os.Exit(130)
	}

	var (
		noUser     *api.NoUsernameError
		validation *api.ValidationError
		unknown    *api.UnknownError
		cacheErr   *cache.Error
	)
	switch {
	case errors.As(err, &noUser):
		fail(fmt.Sprintf("Author %q does not exist on boosty.to.", noUser.Author))
	case errors.Is(err, api.ErrUnauthorized):
		fail("Boosty rejected your credentials. Re-export the cookie and authorization header from your browser.")
	case errors.As(err, &validation):
		fail(fmt.Sprintf("Unexpected API response, please report this upstream:\n%v", validation))
	case errors.As(err, &unknown):
		fail(unknown.Error())
	case errors.As(err, &cacheErr):
		fail(fmt.Sprintf("%v\nThe cache looks broken; rerun with --clean-cache.", cacheErr))
	default:
		fail(err.Error())
	}
}
