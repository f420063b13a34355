// Package layout flows prose into lines and lines into fixed-size pages.
//
// Coordinates follow PDF user space: points, origin at the bottom-left corner
// of the page, y growing upwards. A drawn line's y is its baseline.
package layout

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

var (
	Black = Color{}
	Gray  = Color{R: 77, G: 77, B: 77}
	Navy  = Color{B: 153}
)

// Style is the size class of a line. Size doubles as the line height.
type Style struct {
	Size    float64 `yaml:"size"`
	Spacing float64 `yaml:"spacing"`
	Color   Color   `yaml:"color"`
}

// Advance is how far the cursor moves down after drawing a line in this style.
func (s Style) Advance() float64 {
	return s.Size + s.Spacing
}

// Line is one wrapped line waiting to be placed on a page.
type Line struct {
	Text  string
	Style Style
}

// DrawnLine is a line placed at its final position.
type DrawnLine struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
}

// PlacedImage is an encoded image with its bottom-left corner at X, Y.
type PlacedImage struct {
	Data   []byte  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page accumulates everything drawn on one physical page. Number is 1-based.
type Page struct {
	Number int           `json:"number"`
	Lines  []DrawnLine   `json:"lines"`
	Images []PlacedImage `json:"images,omitempty"`
}

// Section is a titled run of prose, typically a chapter.
type Section struct {
	Title string
	Body  string
}

// Geometry describes the page box and the margins of the text column.
type Geometry struct {
	PageWidth    float64 `yaml:"page_width"`
	PageHeight   float64 `yaml:"page_height"`
	TopMargin    float64 `yaml:"top_margin"`
	BottomMargin float64 `yaml:"bottom_margin"`
	SideMargin   float64 `yaml:"side_margin"`
}

// ColumnWidth is the usable text width between the side margins.
func (g Geometry) ColumnWidth() float64 {
	return g.PageWidth - 2*g.SideMargin
}

// Top is where the cursor starts on a fresh page.
func (g Geometry) Top() float64 {
	return g.PageHeight - g.TopMargin
}

// Fit scales w x h down, preserving aspect ratio, to fit inside maxW x maxH.
// A non-positive bound is ignored. Boxes that already fit are unchanged.
func Fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := 1.0
	if maxW > 0 && w*scale > maxW {
		scale = maxW / w
	}
	if maxH > 0 && h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}
