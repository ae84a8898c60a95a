// Package mapper converts raw API post records into normalized domain posts.
// It collapses the text-family chunks into styled fragment runs, resolves
// platform-video quality via the rendition ranker and reports incomplete
// media upward so the use cases can exclude those categories from the run.
package mapper

import (
	"github.com/boosty-tools/boosty-dl/internal/api"
	"github.com/boosty-tools/boosty-dl/internal/model"
)

// Result is a mapped post plus the categories whose media the platform has
// not finished processing. Incomplete categories must be subtracted from the
// requested filter set before any work starts.
type Result struct {
	Post       model.Post
	Incomplete model.CategorySet
}

// MapPost normalizes one raw post record. preferred steers platform-video
// rendition selection. Malformed text content degrades to a skipped
// fragment, matching the platform editor's own tolerance for broken runs.
func MapPost(dto *api.PostDTO, preferred model.VideoTier) *Result {
	res := &Result{
		Post: model.Post{
			ID:          dto.ID,
			Title:       dto.Title,
			CreatedAt:   dto.CreatedAt.Time,
			UpdatedAt:   dto.UpdatedAt.Time,
			HasAccess:   dto.HasAccess,
			SignedQuery: dto.SignedQuery,
		},
		Incomplete: model.NewCategorySet(),
	}

	var pendingText *model.TextChunk
	flushText := func() {
		if pendingText != nil && len(pendingText.Fragments) > 0 {
			res.Post.Chunks = append(res.Post.Chunks, *pendingText)
		}
		pendingText = nil
	}
	appendFragment := func(f model.TextFragment) {
		if pendingText == nil {
			pendingText = &model.TextChunk{}
		}
		pendingText.Fragments = append(pendingText.Fragments, f)
	}

	for _, chunk := range dto.Data {
		switch {
		case chunk.Text != nil:
			if chunk.Text.Modificator == api.BlockEnd {
				appendFragment(model.TextFragment{Text: model.NewLineSymbol})
				continue
			}
			if f, ok := textFragment(chunk.Text.Content, "", 0); ok {
				appendFragment(f)
			}
		case chunk.Header != nil:
			if f, ok := textFragment(chunk.Header.Content, "", headerLevel(chunk.Header)); ok {
				appendFragment(f)
			}
		case chunk.Link != nil:
			if f, ok := textFragment(chunk.Link.Content, chunk.Link.URL, 0); ok {
				appendFragment(f)
			}
		case chunk.List != nil:
			flushText()
			res.Post.Chunks = append(res.Post.Chunks, mapList(chunk.List))
		case chunk.Image != nil:
			flushText()
			res.Post.Chunks = append(res.Post.Chunks, model.ImageChunk{URL: chunk.Image.URL})
		case chunk.File != nil:
			flushText()
			res.Post.Chunks = append(res.Post.Chunks, model.FileChunk{
				URL:      chunk.File.URL + dto.SignedQuery,
				Filename: chunk.File.Title,
			})
		case chunk.OkVideo != nil:
			flushText()
			if !chunk.OkVideo.Complete {
				res.Incomplete.Add(model.CategoryBoostyVideos)
				continue
			}
			if v := mapOkVideo(chunk.OkVideo, preferred); v != nil {
				res.Post.Chunks = append(res.Post.Chunks, *v)
			}
		case chunk.Video != nil:
			flushText()
			res.Post.Chunks = append(res.Post.Chunks, model.ExternalVideoChunk{URL: chunk.Video.URL})
		case chunk.Audio != nil:
			flushText()
			if !chunk.Audio.Complete {
				res.Incomplete.Add(model.CategoryAudio)
				continue
			}
			res.Post.Chunks = append(res.Post.Chunks, model.AudioChunk{
				Title: chunk.Audio.Title,
				URL:   chunk.Audio.URL + dto.SignedQuery,
			})
		}
	}
	flushText()
	return res
}

func headerLevel(h *api.HeaderData) int {
	if h.Level >= 1 && h.Level <= 6 {
		return h.Level
	}
	return 1
}

// textFragment decodes a wire content entry into a styled fragment.
// Empty or undecodable content yields no fragment.
func textFragment(content, linkURL string, headerLevel int) (model.TextFragment, bool) {
	sc, err := api.DecodeContent(content)
	if err != nil || sc.Text == "" {
		return model.TextFragment{}, false
	}
	f := model.TextFragment{
		Text:        sc.Text,
		LinkURL:     linkURL,
		HeaderLevel: headerLevel,
	}
	for _, run := range sc.Styles {
		switch run.Code {
		case api.StyleBold:
			f.Bold = true
		case api.StyleItalic:
			f.Italic = true
		case api.StyleUnderline:
			f.Underline = true
		}
	}
	return f, true
}

func mapList(l *api.ListData) model.ListChunk {
	return model.ListChunk{
		Ordered: l.Style == "ordered",
		Items:   mapListItems(l.Items),
	}
}

func mapListItems(items []api.ListItemData) []model.ListItem {
	out := make([]model.ListItem, 0, len(items))
	for _, item := range items {
		mapped := model.ListItem{
			Nested: mapListItems(item.Items),
		}
		var text model.TextChunk
		for _, run := range item.Data {
			if f, ok := textFragment(run.Content, "", 0); ok {
				text.Fragments = append(text.Fragments, f)
			}
		}
		if len(text.Fragments) > 0 {
			mapped.Text = append(mapped.Text, text)
		}
		out = append(out, mapped)
	}
	return out
}

// mapOkVideo selects the rendition for a complete platform video. When no
// progressive tier carries a URL the HLS playlist, if present, is kept so
// the downloader can resolve a variant from the master playlist.
func mapOkVideo(v *api.OkVideoData, preferred model.VideoTier) *model.BoostyVideoChunk {
	renditions := make([]model.Rendition, 0, len(v.PlayerURLs))
	for _, pu := range v.PlayerURLs {
		renditions = append(renditions, model.Rendition{
			Tier: model.VideoTier(pu.Type),
			URL:  pu.URL,
		})
	}
	if best := model.BestRendition(renditions, preferred); best != nil {
		return &model.BoostyVideoChunk{Title: v.Title, URL: best.URL, Tier: best.Tier}
	}
	for _, r := range renditions {
		if r.Tier == model.TierHLS && r.URL != "" {
			return &model.BoostyVideoChunk{Title: v.Title, URL: r.URL, Tier: model.TierHLS}
		}
	}
	return nil
}

// CategoryOf maps a chunk variant onto its filter category.
func CategoryOf(chunk model.Chunk) model.Category {
	switch chunk.(type) {
	case model.TextChunk, model.ListChunk, model.ImageChunk:
		return model.CategoryPostContent
	case model.FileChunk:
		return model.CategoryFiles
	case model.BoostyVideoChunk:
		return model.CategoryBoostyVideos
	case model.ExternalVideoChunk:
		return model.CategoryExternalVideos
	case model.AudioChunk:
		return model.CategoryAudio
	default:
		return ""
	}
}

// HasMatchingContent reports whether the post holds at least one chunk in
// any of the given categories.
func HasMatchingContent(post *model.Post, categories model.CategorySet) bool {
	for _, chunk := range post.Chunks {
		if c := CategoryOf(chunk); c != "" && categories.Has(c) {
			return true
		}
	}
	return false
}
