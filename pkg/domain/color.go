package domain

// ColorTag names a presentation color. The empty tag means no color.
type ColorTag string

const (
	ColorDefault ColorTag = ""
	ColorRed     ColorTag = "red"
	ColorGreen   ColorTag = "green"
	ColorYellow  ColorTag = "yellow"
	ColorBlue    ColorTag = "blue"
	ColorCyan    ColorTag = "cyan"
	ColorPurple  ColorTag = "purple"
	ColorWhite   ColorTag = "white"
)

// DefaultPalette lists the color names recognized out of the box.
var DefaultPalette = []ColorTag{
	ColorRed, ColorGreen, ColorYellow, ColorBlue, ColorCyan, ColorPurple, ColorWhite,
}

// Span is a unit of rendered output handed to the presentation layer.
// LineEnd is set on the last span of a source line.
type Span struct {
	Text    string   `json:"text"`
	Color   ColorTag `json:"color,omitempty"`
	LineEnd bool     `json:"line_end,omitempty"`
}
