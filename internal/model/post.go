// Package model holds the domain types shared across the archiver:
// posts, content chunks, filter categories and video quality tiers.
package model

import "time"

// NewLineSymbol is the sentinel fragment text that renders as a paragraph
// break. It comes from the Boosty editor's internal representation and is
// preserved through mapping so the HTML renderer can split paragraphs.
const NewLineSymbol = "<NEW_LINE_SYMBOL>"

// Post is one author post after mapping from the API response.
// It is never mutated after the mapper builds it.
type Post struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	HasAccess   bool
	SignedQuery string
	Chunks      []Chunk
}

// Chunk is one element of a post body. It is a closed set of variants;
// the marker method keeps the set sealed inside this package.
type Chunk interface {
	chunk()
}

// TextFragment is a styled run of text inside a TextChunk.
// HeaderLevel 0 means plain text, 1-6 map to <h1>..<h6>.
type TextFragment struct {
	Text        string
	LinkURL     string
	HeaderLevel int
	Bold        bool
	Italic      bool
	Underline   bool
}

// TextChunk carries an ordered run of styled fragments.
type TextChunk struct {
	Fragments []TextFragment
}

// ImageChunk is an image by absolute URL.
type ImageChunk struct {
	URL string
}

// FileChunk is an uploaded file attachment. URL already carries the post's
// signed query when it leaves the mapper.
type FileChunk struct {
	URL      string
	Filename string
}

// BoostyVideoChunk is a platform-hosted video after quality selection.
// URL points at the chosen rendition; Tier records which one won.
type BoostyVideoChunk struct {
	Title string
	URL   string
	Tier  VideoTier
}

// ExternalVideoChunk is a video hosted on a third-party site
// (YouTube, Vimeo, ...). It is handed to the external downloader untouched.
type ExternalVideoChunk struct {
	URL string
}

// AudioChunk is an uploaded audio file.
type AudioChunk struct {
	Title string
	URL   string
}

// ListItem is one entry of a textual list. Lists nest, so each item carries
// its own sub-items; nesting depth is bounded by the editor (small).
type ListItem struct {
	Text   []TextChunk
	Nested []ListItem
}

// ListChunk is an ordered or unordered textual list.
type ListChunk struct {
	Ordered bool
	Items   []ListItem
}

func (TextChunk) chunk()          {}
func (ImageChunk) chunk()         {}
func (FileChunk) chunk()          {}
func (BoostyVideoChunk) chunk()   {}
func (ExternalVideoChunk) chunk() {}
func (AudioChunk) chunk()         {}
func (ListChunk) chunk()          {}
