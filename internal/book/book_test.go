package book

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "id": "bk_1",
  "userId": "usr_1",
  "title": "The Silent Valley",
  "genre": "Fantasy",
  "shortSummary": "A valley loses its birdsong.",
  "apiChoice": "app",
  "createdAt": "2025-05-14T09:30:00.000Z",
  "characters": [{"id": "c1", "name": "Mara", "role": "Protagonist", "biography": "A shepherd."}],
  "chapters": [
    {"id": "ch2", "title": "The Descent", "summary": "", "content": null, "pacing": "fast", "wordCount": 1800, "keyEvents": [], "scenes": [], "pov": "Third Person Limited", "position": 1},
    {"id": "ch1", "title": "The Awakening", "summary": "", "content": "Mara woke to silence.", "pacing": "slow", "wordCount": 1200, "keyEvents": ["silence"], "scenes": ["hut"], "pov": "Third Person Limited", "position": 0}
  ]
}`

func TestDecode(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "bk_1", b.ID)
	assert.Equal(t, "The Silent Valley", b.Title)
	assert.Equal(t, time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC), b.CreatedAt.UTC())
	require.Len(t, b.Chapters, 2)
	assert.Empty(t, b.Chapters[0].Content)
	require.Len(t, b.Characters, 1)
	assert.Equal(t, "Mara", b.Characters[0].Name)
}

func TestDecodeNull(t *testing.T) {
	_, err := Decode(strings.NewReader("null"))
	assert.ErrorIs(t, err, ErrNilBook)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"title": `))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", b.Genre)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var nilBook *Book
	assert.ErrorIs(t, nilBook.Validate(), ErrNilBook)
	assert.ErrorIs(t, (&Book{Title: "   "}).Validate(), ErrEmptyTitle)
	assert.NoError(t, (&Book{Title: "Ok"}).Validate())
}

func TestOrderedChapters(t *testing.T) {
	b := &Book{Chapters: []Chapter{
		{Title: "c", Position: 2},
		{Title: "a", Position: 0},
		{Title: "b1", Position: 1},
		{Title: "b2", Position: 1},
	}}

	var titles []string
	for _, ch := range b.OrderedChapters() {
		titles = append(titles, ch.Title)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, titles)
	assert.Equal(t, "c", b.Chapters[0].Title, "input order is untouched")
}

func TestSections(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	sections, err := b.Sections()
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "The Awakening", sections[0].Title)
	assert.Equal(t, "Mara woke to silence.", sections[0].Body)
	assert.Equal(t, "The Descent", sections[1].Title)
	assert.Empty(t, sections[1].Body)
}

func TestStats(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, Stats{ChapterCount: 2, TotalWords: 3000}, b.Stats())
}

func TestAuthorAndGenreFallbacks(t *testing.T) {
	b := &Book{}
	assert.Equal(t, "Unknown", b.AuthorName())
	assert.Equal(t, "N/A", b.GenreName())

	b.Author, b.Genre = "Ada", "Mystery"
	assert.Equal(t, "Ada", b.AuthorName())
	assert.Equal(t, "Mystery", b.GenreName())
}

func TestFileName(t *testing.T) {
	cases := []struct {
		book Book
		want string
	}{
		{Book{Title: "The Silent Valley"}, "The Silent Valley.pdf"},
		{Book{Title: `War/Peace: "Redux"?`}, "War_Peace_ _Redux_.pdf"},
		{Book{Title: "...", ID: "bk_9"}, "bk_9.pdf"},
		{Book{}, "book.pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.book.FileName())
	}
}

func TestNormalizeContent(t *testing.T) {
	plain := "She whispered: I <3 this valley, and 2 < 3."
	got, err := NormalizeContent(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	for _, prose := range []string{
		"The sign read <b and q> in chalk. Mara laughed.",
		"<p is for pine> was carved above the door.",
		"Arrows <i> and <b> marked the trail.",
	} {
		got, err = NormalizeContent(prose)
		require.NoError(t, err)
		assert.Equal(t, prose, got)
	}

	got, err = NormalizeContent("<h2>One</h2><p>Hello &amp; bye</p><p>Second<br>line</p><script>x()</script>")
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Hello", "&", "bye", "Second", "line"}, strings.Fields(got))
	assert.NotContains(t, got, "x()")
}
