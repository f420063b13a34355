package book

import (
	"fmt"
	"strings"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/layout"
)

// Metrics measures rendered text width in points.
type Metrics interface {
	WidthOfTextAtSize(text string, size float64) (float64, error)
}

// CoverImage is an encoded image with its natural size in points.
type CoverImage struct {
	Data   []byte
	Width  float64
	Height float64
}

type ComposeOptions struct {
	Geometry layout.Geometry `yaml:"geometry"`

	// CoverTop is the distance from the top edge to the cover title.
	CoverTop float64 `yaml:"cover_top"`
	// CoverGap separates the cover block from the first chapter.
	CoverGap   float64 `yaml:"cover_gap"`
	ChapterGap float64 `yaml:"chapter_gap"`

	TitleStyle   layout.Style `yaml:"title_style"`
	AuthorStyle  layout.Style `yaml:"author_style"`
	MetaStyle    layout.Style `yaml:"meta_style"`
	ChapterStyle layout.Style `yaml:"chapter_style"`
	BodyStyle    layout.Style `yaml:"body_style"`

	CoverImageMaxHeight float64     `yaml:"cover_image_max_height"`
	CoverImage          *CoverImage `yaml:"-"`
}

// DefaultComposeOptions reproduces the generator's export layout: A4,
// 50pt margins, a cover block starting 80pt from the top.
func DefaultComposeOptions() ComposeOptions {
	return ComposeOptions{
		Geometry: layout.Geometry{
			PageWidth:    595,
			PageHeight:   842,
			TopMargin:    50,
			BottomMargin: 50,
			SideMargin:   50,
		},
		CoverTop:            80,
		CoverGap:            60,
		ChapterGap:          20,
		TitleStyle:          layout.Style{Size: 24, Spacing: 20, Color: layout.Black},
		AuthorStyle:         layout.Style{Size: 16, Spacing: 20, Color: layout.Gray},
		MetaStyle:           layout.Style{Size: 14, Spacing: 20, Color: layout.Gray},
		ChapterStyle:        layout.Style{Size: 18, Spacing: 10, Color: layout.Navy},
		BodyStyle:           layout.Style{Size: 12, Spacing: 6, Color: layout.Black},
		CoverImageMaxHeight: 320,
	}
}

// Compose lays out the cover and every chapter of b. The first page holds
// the cover block; chapters follow on the same flow in stored order.
func Compose(b *Book, metrics Metrics, opts ComposeOptions) ([]layout.Page, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	sections, err := b.Sections()
	if err != nil {
		return nil, err
	}

	c := &composer{metrics: metrics, opts: opts, pager: layout.NewPaginator(opts.Geometry)}
	if err := c.cover(b); err != nil {
		return nil, err
	}
	for _, section := range sections {
		if err := c.section(section); err != nil {
			return nil, err
		}
	}

	pages := c.pager.Pages()
	internal.Debug("Composed %q into %d pages", b.Title, len(pages))
	return pages, nil
}

type composer struct {
	metrics Metrics
	opts    ComposeOptions
	pager   *layout.Paginator
}

func (c *composer) measure(size float64) layout.MeasureFunc {
	return func(s string) (float64, error) {
		return c.metrics.WidthOfTextAtSize(s, size)
	}
}

func (c *composer) cover(b *Book) error {
	c.pager.Gap(c.opts.CoverTop - c.opts.Geometry.TopMargin)

	lines := []layout.Line{
		{Text: b.Title, Style: c.opts.TitleStyle},
		{Text: "Author: " + b.AuthorName(), Style: c.opts.AuthorStyle},
		{Text: "Genre: " + b.GenreName(), Style: c.opts.MetaStyle},
	}
	if !b.CreatedAt.IsZero() {
		lines = append(lines, layout.Line{Text: "Created: " + b.CreatedAt.Format("Mon Jan 02 2006"), Style: c.opts.MetaStyle})
	}

	for _, line := range lines {
		width, err := c.metrics.WidthOfTextAtSize(line.Text, line.Style.Size)
		if err != nil {
			return fmt.Errorf("failed to measure cover line: %w", err)
		}
		c.pager.DrawCentered(line, width)
	}

	if img := c.opts.CoverImage; img != nil && len(img.Data) > 0 {
		w, h := layout.Fit(img.Width, img.Height, c.opts.Geometry.ColumnWidth(), c.opts.CoverImageMaxHeight)
		c.pager.Image(img.Data, w, h)
	}

	c.pager.Gap(c.opts.CoverGap)
	return nil
}

func (c *composer) section(s layout.Section) error {
	if err := c.flow(s.Title, c.opts.ChapterStyle); err != nil {
		return fmt.Errorf("chapter %q title: %w", s.Title, err)
	}
	if err := c.flow(s.Body, c.opts.BodyStyle); err != nil {
		return fmt.Errorf("chapter %q body: %w", s.Title, err)
	}
	c.pager.Gap(c.opts.ChapterGap)
	return nil
}

func (c *composer) flow(text string, style layout.Style) error {
	maxWidth := c.opts.Geometry.ColumnWidth()
	measure := c.measure(style.Size)

	lines, err := layout.Wrap(text, measure, maxWidth)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !strings.Contains(line, " ") {
			if w, err := measure(line); err == nil && w >= maxWidth {
				internal.Debug("Word overflows the text column (%.1fpt >= %.1fpt): %.20q", w, maxWidth, line)
			}
		}
		c.pager.Draw(layout.Line{Text: line, Style: style})
	}
	return nil
}
