package exports

import (
	"fmt"
	"time"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/book"
	"github.com/pwnholic/plotbook/internal/layout"
)

const ContentType = "application/pdf"

// Sink receives laid-out pages. PDFGenerator is the production sink.
type Sink interface {
	AddPage()
	DrawText(text string, x, y, size float64, color layout.Color) error
	DrawImage(data []byte, x, y, width, height float64) error
}

// Render replays pages onto sink in order.
func Render(sink Sink, pages []layout.Page) error {
	for _, page := range pages {
		sink.AddPage()
		for _, img := range page.Images {
			if err := sink.DrawImage(img.Data, img.X, img.Y, img.Width, img.Height); err != nil {
				return fmt.Errorf("page %d: %w", page.Number, err)
			}
		}
		for _, line := range page.Lines {
			if err := sink.DrawText(line.Text, line.X, line.Y, line.Size, line.Color); err != nil {
				return fmt.Errorf("page %d: failed to draw %q: %w", page.Number, line.Text, err)
			}
		}
	}
	return nil
}

type Options struct {
	Compose  book.ComposeOptions
	FontPath string
	Creator  string
}

// Artifact is a finished export.
type Artifact struct {
	Data     []byte
	FileName string
	Pages    int
}

type DocumentExporter struct {
	opts Options
}

func NewDocumentExporter(opts Options) *DocumentExporter {
	if opts.Creator == "" {
		opts.Creator = "plotbook"
	}
	return &DocumentExporter{opts: opts}
}

// Export lays out b and renders it into a new PDF. Each call owns its own
// document, so concurrent exports share nothing.
func (e *DocumentExporter) Export(b *book.Book) (*Artifact, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	geom := e.opts.Compose.Geometry
	pdfGen, err := NewPDFGenerator(geom.PageWidth, geom.PageHeight, e.opts.FontPath)
	if err != nil {
		return nil, err
	}
	defer pdfGen.Close()

	pdfGen.SetMetadata(Metadata{
		Title:    b.Title,
		Author:   b.AuthorName(),
		Subject:  b.Genre,
		Creator:  e.opts.Creator,
		Producer: e.opts.Creator,
		Created:  b.CreatedAt,
	})

	pages, err := book.Compose(b, pdfGen, e.opts.Compose)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out book: %w", err)
	}
	if err := Render(pdfGen, pages); err != nil {
		return nil, fmt.Errorf("failed to render book: %w", err)
	}

	data, err := pdfGen.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize PDF: %w", err)
	}

	internal.Debug("Exported %q: %d pages, %d bytes in %v", b.Title, len(pages), len(data), time.Since(startTime))
	return &Artifact{Data: data, FileName: b.FileName(), Pages: len(pages)}, nil
}
