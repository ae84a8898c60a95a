package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Chunk type discriminators as they appear on the wire.
const (
	ChunkTypeText    = "text"
	ChunkTypeImage   = "image"
	ChunkTypeLink    = "link"
	ChunkTypeList    = "list"
	ChunkTypeFile    = "file"
	ChunkTypeHeader  = "header"
	ChunkTypeOkVideo = "ok_video"
	ChunkTypeVideo   = "video"
	ChunkTypeAudio   = "audio_file"
)

// UnixTime decodes the API's unix-seconds timestamps into time.Time.
type UnixTime struct {
	time.Time
}

func (t *UnixTime) UnmarshalJSON(b []byte) error {
	var secs int64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("timestamp is not a unix integer: %w", err)
	}
	t.Time = time.Unix(secs, 0).UTC()
	return nil
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Unix())
}

// PostsResponse is one page of an author's post listing.
type PostsResponse struct {
	Posts []PostDTO `json:"data"`
	Extra Extra     `json:"extra"`
}

// Extra carries the pagination cursor.
type Extra struct {
	Offset string `json:"offset"`
	IsLast bool   `json:"isLast"`
}

// PostDTO is one post record as returned by the listing endpoint.
type PostDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	CreatedAt   UnixTime    `json:"createdAt"`
	UpdatedAt   UnixTime    `json:"updatedAt"`
	HasAccess   bool        `json:"hasAccess"`
	SignedQuery string      `json:"signedQuery"`
	Data        []DataChunk `json:"data"`
}

// DataChunk is the tagged union of post body pieces. Exactly one payload
// pointer is non-nil after decoding; unknown discriminators are rejected so
// schema drift surfaces as a ValidationError instead of silent data loss.
type DataChunk struct {
	Type    string
	Text    *TextData
	Image   *ImageData
	Link    *LinkData
	List    *ListData
	File    *FileData
	Header  *HeaderData
	OkVideo *OkVideoData
	Video   *VideoData
	Audio   *AudioData
}

// TextData is a styled text run. Content is itself a JSON-encoded array
// (see DecodeContent); Modificator carries editor markers such as BLOCK_END.
type TextData struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	Modificator string `json:"modificator"`
}

// BlockEnd is the modificator value marking a paragraph break.
const BlockEnd = "BLOCK_END"

// StyledContent is the decoded form of TextData.Content: the raw text plus
// style runs of the form [styleCode, offset, length].
type StyledContent struct {
	Text   string
	Styles []StyleRun
}

// Style codes inside a style run.
const (
	StyleBold      = 0
	StyleItalic    = 1
	StyleUnderline = 2
)

// StyleRun marks a styled span inside a text content entry.
type StyleRun struct {
	Code   int
	Offset int
	Length int
}

// DecodeContent parses the JSON-array content format used by text, header
// and link chunks: ["raw text", "unstyled", [[code, offset, length], ...]].
func DecodeContent(content string) (*StyledContent, error) {
	if content == "" {
		return &StyledContent{}, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(content), &arr); err != nil {
		return nil, fmt.Errorf("content is not a JSON array: %w", err)
	}
	out := &StyledContent{}
	if len(arr) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(arr[0], &out.Text); err != nil {
		return nil, fmt.Errorf("content[0] is not a string: %w", err)
	}
	if len(arr) < 3 {
		return out, nil
	}
	var runs [][]int
	if err := json.Unmarshal(arr[2], &runs); err != nil {
		// Styles are best-effort; a malformed style list degrades to plain text.
		return out, nil
	}
	for _, r := range runs {
		if len(r) < 3 {
			continue
		}
		out.Styles = append(out.Styles, StyleRun{Code: r[0], Offset: r[1], Length: r[2]})
	}
	return out, nil
}

// ImageData is an image chunk.
type ImageData struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LinkData is a hyperlink chunk; Content uses the same encoding as TextData.
type LinkData struct {
	URL      string `json:"url"`
	Content  string `json:"content"`
	Explicit bool   `json:"explicit"`
}

// HeaderData is a header chunk; Content uses the same encoding as TextData.
type HeaderData struct {
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// FileData is an uploaded file attachment. The post's signed query must be
// appended to URL before downloading.
type FileData struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Size  int64  `json:"size"`
}

// OkVideoData is a platform-hosted video with its rendition list.
type OkVideoData struct {
	Title        string      `json:"title"`
	UploadStatus string      `json:"uploadStatus"`
	Complete     bool        `json:"complete"`
	PlayerURLs   []PlayerURL `json:"playerUrls"`
}

// PlayerURL is one rendition entry. URL may be empty for tiers the platform
// did not encode.
type PlayerURL struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// VideoData is an externally-hosted video (YouTube, Vimeo, ...).
type VideoData struct {
	URL string `json:"url"`
}

// AudioData is an uploaded audio file.
type AudioData struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// ListData is an ordered or unordered list of nested items.
type ListData struct {
	Style string         `json:"style"`
	Items []ListItemData `json:"items"`
}

// ListItemData is one list entry: its own text runs plus nested sub-items.
type ListItemData struct {
	Items []ListItemData     `json:"items"`
	Data  []ListItemTextData `json:"data"`
}

// ListItemTextData is one text run inside a list item, same content
// encoding as TextData.
type ListItemTextData struct {
	Type        string `json:"type"`
	Modificator string `json:"modificator"`
	Content     string `json:"content"`
}

// UnmarshalJSON dispatches on the type discriminator. An unknown type or a
// malformed payload yields a ValidationError carrying the offending field.
func (c *DataChunk) UnmarshalJSON(b []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return validationErr("data[].type", "missing type discriminator: %v", err)
	}
	c.Type = head.Type

	decode := func(field string, dst any) error {
		if err := json.Unmarshal(b, dst); err != nil {
			return validationErr(field, "malformed %s chunk: %v", head.Type, err)
		}
		return nil
	}

	switch head.Type {
	case ChunkTypeText:
		c.Text = &TextData{}
		return decode("data[].text", c.Text)
	case ChunkTypeImage:
		c.Image = &ImageData{}
		return decode("data[].image", c.Image)
	case ChunkTypeLink:
		c.Link = &LinkData{}
		return decode("data[].link", c.Link)
	case ChunkTypeList:
		c.List = &ListData{}
		return decode("data[].list", c.List)
	case ChunkTypeFile:
		c.File = &FileData{}
		return decode("data[].file", c.File)
	case ChunkTypeHeader:
		c.Header = &HeaderData{}
		return decode("data[].header", c.Header)
	case ChunkTypeOkVideo:
		c.OkVideo = &OkVideoData{}
		return decode("data[].ok_video", c.OkVideo)
	case ChunkTypeVideo:
		c.Video = &VideoData{}
		return decode("data[].video", c.Video)
	case ChunkTypeAudio:
		c.Audio = &AudioData{}
		return decode("data[].audio_file", c.Audio)
	default:
		return validationErr("data[].type", "unknown chunk type %q", head.Type)
	}
}
