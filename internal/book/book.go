// Package book holds the book document produced by the plot generator and
// composes it into laid-out pages for export.
package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pwnholic/plotbook/internal/layout"
)

var (
	ErrNilBook    = errors.New("book is nil")
	ErrEmptyTitle = errors.New("book title is empty")
)

type Character struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Biography string `json:"biography"`
}

// Chapter mirrors the generator's chapter record. Content stays empty until
// the chapter prose has been generated.
type Chapter struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Content   string   `json:"content"`
	Pacing    string   `json:"pacing"`
	WordCount int      `json:"wordCount"`
	KeyEvents []string `json:"keyEvents"`
	Scenes    []string `json:"scenes"`
	POV       string   `json:"pov"`
	Position  int      `json:"position"`
}

type Book struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Title        string      `json:"title"`
	Genre        string      `json:"genre"`
	ShortSummary string      `json:"shortSummary"`
	APIChoice    string      `json:"apiChoice"`
	Author       string      `json:"author,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	Chapters     []Chapter   `json:"chapters"`
	Characters   []Character `json:"characters"`
}

// Stats is the summary shown in book listings.
type Stats struct {
	ChapterCount int
	TotalWords   int
}

func Decode(r io.Reader) (*Book, error) {
	var b *Book
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode book: %w", err)
	}
	if b == nil {
		return nil, ErrNilBook
	}
	return b, nil
}

func Load(path string) (*Book, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open book file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func (b *Book) Validate() error {
	if b == nil {
		return ErrNilBook
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// OrderedChapters returns the chapters sorted by stored position. Ties keep
// their input order.
func (b *Book) OrderedChapters() []Chapter {
	chapters := make([]Chapter, len(b.Chapters))
	copy(chapters, b.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Position < chapters[j].Position
	})
	return chapters
}

// Sections converts the ordered chapters into layout sections, with chapter
// content reduced to plain prose.
func (b *Book) Sections() ([]layout.Section, error) {
	chapters := b.OrderedChapters()
	sections := make([]layout.Section, 0, len(chapters))
	for _, ch := range chapters {
		body, err := NormalizeContent(ch.Content)
		if err != nil {
			return nil, fmt.Errorf("chapter %q: %w", ch.Title, err)
		}
		sections = append(sections, layout.Section{Title: ch.Title, Body: body})
	}
	return sections, nil
}

func (b *Book) Stats() Stats {
	s := Stats{ChapterCount: len(b.Chapters)}
	for _, ch := range b.Chapters {
		s.TotalWords += ch.WordCount
	}
	return s
}

func (b *Book) AuthorName() string {
	if strings.TrimSpace(b.Author) == "" {
		return "Unknown"
	}
	return b.Author
}

func (b *Book) GenreName() string {
	if strings.TrimSpace(b.Genre) == "" {
		return "N/A"
	}
	return b.Genre
}

var unsafeFileChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// FileName is the download name "<title>.pdf" with characters that are not
// safe in file names replaced. It falls back to the book id.
func (b *Book) FileName() string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(b.Title, "_"))
	name = strings.Trim(name, ".")
	if name == "" {
		name = b.ID
	}
	if name == "" {
		name = "book"
	}
	return name + ".pdf"
}
