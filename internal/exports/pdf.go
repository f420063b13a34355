package exports

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/layout"
)

const fontFamily = "body"

// Metadata is written into the PDF info dictionary.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Created  time.Time
}

// PDFGenerator is a gopdf document that doubles as the font metrics
// provider for layout. Coordinates passed in are PDF user space (origin
// bottom-left); gopdf itself measures y from the top of the page.
type PDFGenerator struct {
	pdf    *gopdf.GoPdf
	mutex  sync.Mutex
	width  float64
	height float64
}

// NewPDFGenerator starts an empty document with the given page size. An
// empty fontPath selects the embedded Go Regular face.
func NewPDFGenerator(pageWidth, pageHeight float64, fontPath string) (*PDFGenerator, error) {
	fontData, err := loadFont(fontPath)
	if err != nil {
		return nil, err
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: pageWidth, H: pageHeight},
	})
	if err := pdf.AddTTFFontData(fontFamily, fontData); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := pdf.SetFont(fontFamily, "", 12); err != nil {
		return nil, fmt.Errorf("failed to select font: %w", err)
	}

	return &PDFGenerator{pdf: pdf, width: pageWidth, height: pageHeight}, nil
}

func loadFont(path string) ([]byte, error) {
	if path == "" {
		return goregular.TTF, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	return data, nil
}

func (p *PDFGenerator) SetMetadata(meta Metadata) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.pdf.SetInfo(gopdf.PdfInfo{
		Title:        meta.Title,
		Author:       meta.Author,
		Subject:      meta.Subject,
		Creator:      meta.Creator,
		Producer:     meta.Producer,
		CreationDate: meta.Created,
	})
}

// WidthOfTextAtSize measures text in points with the document font.
func (p *PDFGenerator) WidthOfTextAtSize(text string, size float64) (float64, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.pdf.SetFont(fontFamily, "", size); err != nil {
		return 0, fmt.Errorf("failed to set font size %.1f: %w", size, err)
	}
	return p.pdf.MeasureTextWidth(text)
}

func (p *PDFGenerator) AddPage() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.pdf.AddPage()
}

// DrawText writes text with its baseline at (x, y).
func (p *PDFGenerator) DrawText(text string, x, y, size float64, color layout.Color) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.pdf.SetFont(fontFamily, "", size); err != nil {
		return fmt.Errorf("failed to set font size %.1f: %w", size, err)
	}
	p.pdf.SetTextColor(color.R, color.G, color.B)
	p.pdf.SetXY(x, p.height-y)
	return p.pdf.Text(text)
}

// DrawImage places an encoded image with its bottom-left corner at (x, y).
func (p *PDFGenerator) DrawImage(data []byte, x, y, width, height float64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(data) == 0 {
		internal.Warn("Skipping empty image data")
		return nil
	}

	imageHolder, err := gopdf.ImageHolderByBytes(data)
	if err != nil {
		return fmt.Errorf("failed to create PDF image holder: %w", err)
	}
	rect := &gopdf.Rect{W: width, H: height}
	if err := p.pdf.ImageByHolder(imageHolder, x, p.height-y-height, rect); err != nil {
		return fmt.Errorf("failed to add image to PDF: %w", err)
	}
	return nil
}

func (p *PDFGenerator) Bytes() ([]byte, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.pdf == nil {
		return nil, errors.New("PDF not initialized")
	}
	return p.pdf.GetBytesPdfReturnErr()
}

func (p *PDFGenerator) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pdf != nil {
		p.pdf.Close()
		p.pdf = nil
	}
}
