package htmlgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boosty-tools/boosty-dl/internal/model"
)

func TestRenderParagraphBreaks(t *testing.T) {
	doc := string(Render("Post", []model.Chunk{
		model.TextChunk{Fragments: []model.TextFragment{
			{Text: "first"},
			{Text: model.NewLineSymbol},
			{Text: "second"},
		}},
	}))
	require.Contains(t, doc, "<p>first</p>")
	require.Contains(t, doc, "<p>second</p>")
}

func TestRenderHeadersAndStyles(t *testing.T) {
	doc := string(Render("Post", []model.Chunk{
		model.TextChunk{Fragments: []model.TextFragment{
			{Text: "Chapter", HeaderLevel: 2},
			{Text: "bold", Bold: true},
			{Text: " and ", Italic: true, Underline: true},
			{Text: "linked", LinkURL: "https://example.com"},
		}},
	}))
	require.Contains(t, doc, "<h2>Chapter</h2>")
	require.Contains(t, doc, "<b>bold</b>")
	require.Contains(t, doc, "<i><u> and </u></i>")
	require.Contains(t, doc, `<a href="https://example.com">linked</a>`)
}

func TestRenderEscapesText(t *testing.T) {
	doc := string(Render("<script>", []model.Chunk{
		model.TextChunk{Fragments: []model.TextFragment{{Text: "a <b> & c"}}},
	}))
	require.Contains(t, doc, "a &lt;b&gt; &amp; c")
	require.NotContains(t, doc, "<title><script></title>")
}

func TestRenderNestedList(t *testing.T) {
	doc := string(Render("Post", []model.Chunk{
		model.ListChunk{Ordered: true, Items: []model.ListItem{
			{
				Text: []model.TextChunk{{Fragments: []model.TextFragment{{Text: "top"}}}},
				Nested: []model.ListItem{
					{Text: []model.TextChunk{{Fragments: []model.TextFragment{{Text: "inner"}}}}},
				},
			},
		}},
	}))
	require.Contains(t, doc, "<ol>")
	require.Contains(t, doc, "<li>top")
	require.Contains(t, doc, "<li>inner</li>")
	// The nested list sits inside the parent item.
	require.Less(t, strings.Index(doc, "<li>top"), strings.Index(doc, "<li>inner"))
}

func TestRenderMediaChunks(t *testing.T) {
	doc := string(Render("Post", []model.Chunk{
		model.ImageChunk{URL: "images/pic.jpg"},
		model.BoostyVideoChunk{Title: "clip", URL: "boosty_videos/clip.mp4"},
		model.AudioChunk{Title: "song", URL: "audio/song.mp3"},
		model.FileChunk{URL: "files/doc.pdf", Filename: "doc.pdf"},
		model.ExternalVideoChunk{URL: "https://youtu.be/x"},
	}))
	require.Contains(t, doc, `<img src="images/pic.jpg" alt="images/pic.jpg">`)
	require.Contains(t, doc, `<video controls src="boosty_videos/clip.mp4"`)
	require.Contains(t, doc, `<audio controls src="audio/song.mp3">`)
	require.Contains(t, doc, `<a href="files/doc.pdf" download>doc.pdf</a>`)
	require.Contains(t, doc, `<a href="https://youtu.be/x">`)
}

func TestRenderIsDeterministic(t *testing.T) {
	chunks := []model.Chunk{
		model.TextChunk{Fragments: []model.TextFragment{{Text: "body"}}},
		model.ImageChunk{URL: "images/a.png"},
	}
	require.Equal(t, Render("Post", chunks), Render("Post", chunks))
}

func TestWriteDocumentAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DocumentName)
	require.NoError(t, WriteDocument(path, []byte("<html></html>")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(got))

	// No temp leftovers.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
