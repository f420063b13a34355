package layout

// Paginator places lines top to bottom and opens a new page whenever the
// next line would not fit above the bottom margin. The first page exists
// from the start, so Pages never returns an empty slice.
type Paginator struct {
	geom  Geometry
	pages []*Page
	y     float64
}

func NewPaginator(geom Geometry) *Paginator {
	p := &Paginator{geom: geom}
	p.addPage()
	return p
}

func (p *Paginator) addPage() {
	p.pages = append(p.pages, &Page{Number: len(p.pages) + 1})
	p.y = p.geom.Top()
}

func (p *Paginator) current() *Page {
	return p.pages[len(p.pages)-1]
}

// Y reports the baseline the next line would be drawn at on the current page.
func (p *Paginator) Y() float64 {
	return p.y
}

// PageCount is the number of pages allocated so far.
func (p *Paginator) PageCount() int {
	return len(p.pages)
}

// Draw places line at the left margin, breaking the page first if needed.
func (p *Paginator) Draw(line Line) {
	if p.y < p.geom.BottomMargin+line.Style.Size {
		p.addPage()
	}
	p.place(line, p.geom.SideMargin)
}

// DrawCentered places line horizontally centered given its measured width.
// It never breaks the page; it is meant for the cover block at the top of
// the first page.
func (p *Paginator) DrawCentered(line Line, width float64) {
	p.place(line, (p.geom.PageWidth-width)/2)
}

func (p *Paginator) place(line Line, x float64) {
	page := p.current()
	page.Lines = append(page.Lines, DrawnLine{
		Text:  line.Text,
		X:     x,
		Y:     p.y,
		Size:  line.Style.Size,
		Color: line.Style.Color,
	})
	p.y -= line.Style.Advance()
}

// Gap moves the cursor down by h without checking the bottom margin. The
// next Draw performs the check.
func (p *Paginator) Gap(h float64) {
	p.y -= h
}

// Image places an image of the given size centered in the column, breaking
// the page first when it does not fit above the bottom margin. Images taller
// than a whole page body are scaled down to it.
func (p *Paginator) Image(data []byte, width, height float64) {
	if body := p.geom.Top() - p.geom.BottomMargin; height > body {
		width, height = Fit(width, height, 0, body)
	}
	if p.y-height < p.geom.BottomMargin {
		p.addPage()
	}
	page := p.current()
	page.Images = append(page.Images, PlacedImage{
		Data:   data,
		X:      (p.geom.PageWidth - width) / 2,
		Y:      p.y - height,
		Width:  width,
		Height: height,
	})
	p.y -= height
}

// Pages returns a snapshot of the pages laid out so far.
func (p *Paginator) Pages() []Page {
	out := make([]Page, len(p.pages))
	for i, page := range p.pages {
		out[i] = *page
	}
	return out
}

// Paginate lays out lines on pages of the given geometry.
func Paginate(lines []Line, geom Geometry) []Page {
	p := NewPaginator(geom)
	for _, line := range lines {
		p.Draw(line)
	}
	return p.Pages()
}

// PaginateSections lays out each section's lines and subtracts gap from the
// cursor after every section.
func PaginateSections(sections [][]Line, geom Geometry, gap float64) []Page {
	p := NewPaginator(geom)
	for _, lines := range sections {
		for _, line := range lines {
			p.Draw(line)
		}
		p.Gap(gap)
	}
	return p.Pages()
}
