// Package htmlgen renders a post body to a standalone HTML document. Media
// chunks are expected to carry local filenames by the time they get here, so
// the document works offline next to the downloaded files.
//
// Rendering is deterministic: the same post always produces the same bytes,
// which keeps re-runs from dirtying already-archived folders.
package htmlgen

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/boosty-tools/boosty-dl/internal/model"
)

// DocumentName is the filename the rendered post is written to.
const DocumentName = "post.html"

const docHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 48rem; margin: 2rem auto; font-family: sans-serif; line-height: 1.5; }
img, video { max-width: 100%%; }
</style>
</head>
<body>
`

// Render produces the full HTML document for a post body.
func Render(title string, chunks []model.Chunk) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, docHeader, html.EscapeString(title))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	for _, chunk := range chunks {
		renderChunk(&b, chunk)
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

func renderChunk(b *strings.Builder, chunk model.Chunk) {
	switch c := chunk.(type) {
	case model.TextChunk:
		renderText(b, c)
	case model.ListChunk:
		renderList(b, c.Items, c.Ordered, 0)
	case model.ImageChunk:
		fmt.Fprintf(b, "<img src=%q alt=%q>\n", c.URL, c.URL)
	case model.FileChunk:
		fmt.Fprintf(b, "<p><a href=%q download>%s</a></p>\n",
			c.URL, html.EscapeString(c.Filename))
	case model.BoostyVideoChunk:
		fmt.Fprintf(b, "<video controls src=%q title=%q></video>\n",
			c.URL, c.Title)
	case model.ExternalVideoChunk:
		fmt.Fprintf(b, "<p><a href=%q>%s</a></p>\n",
			c.URL, html.EscapeString(c.URL))
	case model.AudioChunk:
		fmt.Fprintf(b, "<p>%s</p>\n<audio controls src=%q></audio>\n",
			html.EscapeString(c.Title), c.URL)
	}
}

// renderText emits paragraphs. Header fragments become their own <hN>
// elements; the paragraph-break sentinel closes the current paragraph.
func renderText(b *strings.Builder, chunk model.TextChunk) {
	var para strings.Builder
	flush := func() {
		if para.Len() == 0 {
			return
		}
		fmt.Fprintf(b, "<p>%s</p>\n", para.String())
		para.Reset()
	}
	for _, f := range chunk.Fragments {
		if f.Text == model.NewLineSymbol {
			flush()
			continue
		}
		if f.HeaderLevel > 0 {
			flush()
			fmt.Fprintf(b, "<h%d>%s</h%d>\n", f.HeaderLevel, renderFragment(f), f.HeaderLevel)
			continue
		}
		para.WriteString(renderFragment(f))
	}
	flush()
}

// renderFragment wraps the escaped text in style tags, innermost first.
func renderFragment(f model.TextFragment) string {
	s := html.EscapeString(f.Text)
	if f.Underline {
		s = "<u>" + s + "</u>"
	}
	if f.Italic {
		s = "<i>" + s + "</i>"
	}
	if f.Bold {
		s = "<b>" + s + "</b>"
	}
	if f.LinkURL != "" {
		s = fmt.Sprintf("<a href=%q>%s</a>", f.LinkURL, s)
	}
	return s
}

func renderList(b *strings.Builder, items []model.ListItem, ordered bool, depth int) {
	// The editor caps nesting shallow; the guard is against malformed data.
	if depth > 16 || len(items) == 0 {
		return
	}
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	fmt.Fprintf(b, "<%s>\n", tag)
	for _, item := range items {
		b.WriteString("<li>")
		for _, text := range item.Text {
			for _, f := range text.Fragments {
				if f.Text == model.NewLineSymbol {
					continue
				}
				b.WriteString(renderFragment(f))
			}
		}
		if len(item.Nested) > 0 {
			b.WriteString("\n")
			renderList(b, item.Nested, ordered, depth+1)
		}
		b.WriteString("</li>\n")
	}
	fmt.Fprintf(b, "</%s>\n", tag)
}

// WriteDocument writes the document atomically; a failed or cancelled write
// leaves no partial file behind.
func WriteDocument(path string, doc []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
