package color

// Named colours used by the built-in layouts.
var (
	Cyan   = RGB{0, 255, 255}
	Purple = RGB{153, 102, 255}
	White  = RGB{200, 200, 255}
	Yellow = RGB{255, 255, 0}
	Orange = RGB{255, 55, 0}
	Pink   = RGB{255, 102, 204}
	Red    = RGB{255, 0, 0}
	Green  = RGB{0, 255, 0}
	Blue   = RGB{0, 0, 255}
	Black  = RGB{}
)

// BMA is the twelve colour house palette: pink, orange, green, mint, purple,
// membrane protein blue, cell blue, ec grey, ec orange, ec green, ec mint and
// ec purple.
var BMA = []RGB{
	{255, 102, 204},
	{255, 153, 0},
	{51, 204, 0},
	{0, 204, 204},
	{153, 102, 255},
	{51, 153, 204},
	{208, 233, 240},
	{204, 204, 204},
	{255, 204, 153},
	{171, 255, 171},
	{125, 244, 235},
	{204, 204, 255},
}

// BMAHighlights are the darker accent shades matching BMA entry by entry.
var BMAHighlights = []RGB{
	{153, 0, 102},
	{255, 102, 0},
	{0, 102, 0},
	{0, 102, 102},
	{51, 0, 153},
	{0, 51, 102},
	{98, 185, 209},
	{124, 124, 124},
	{249, 151, 70},
	{92, 224, 92},
	{82, 198, 184},
	{139, 139, 252},
}

// Projected is the BMA palette as it appears on a projector.
var Projected = []RGB{
	{142, 97, 239},
	{255, 195, 118},
	{107, 228, 123},
	{0, 255, 254},
	{205, 69, 255},
	{45, 105, 242},
	{200, 176, 255},
	{223, 195, 255},
	{223, 161, 241},
	{134, 149, 228},
	{128, 168, 255},
	{158, 158, 229},
}

// ProjectedHighlights matches Projected entry by entry.
var ProjectedHighlights = []RGB{
	{246, 0, 233},
	{255, 187, 137},
	{0, 255, 155},
	{0, 255, 155},
	{126, 0, 255},
	{0, 255, 255},
	{189, 144, 255},
	{194, 192, 255},
	{223, 158, 191},
	{160, 255, 255},
	{185, 255, 255},
	{173, 166, 255},
}

var palettes = map[string][2][]RGB{
	"bma":       {BMA, BMAHighlights},
	"projected": {Projected, ProjectedHighlights},
}

// Palette returns a built-in palette and its highlight palette by name.
func Palette(name string) (palette, highlights []RGB, ok bool) {
	p, ok := palettes[name]
	if !ok {
		return nil, nil, false
	}
	return clone(p[0]), clone(p[1]), true
}

func clone(p []RGB) []RGB {
	out := make([]RGB, len(p))
	copy(out, p)
	return out
}
