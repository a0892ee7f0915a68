package render

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Sector is one angular slice of a color swatch. Angles are degrees,
// measured clockwise from 12 o'clock.
type Sector struct {
	Color    string
	StartDeg float64
	SweepDeg float64
}

// SwatchSectors computes the angular layout for a product color swatch:
// one color fills the circle, two to four colors split it into equal
// sequential sectors of 360/n degrees starting at 0.
func SwatchSectors(colors []string) ([]Sector, error) {
	n := len(colors)
	if n < 1 || n > 4 {
		return nil, fmt.Errorf("render: swatch supports 1 to 4 colors, got %d", n)
	}

	sweep := 360.0 / float64(n)
	sectors := make([]Sector, n)
	for i, color := range colors {
		sectors[i] = Sector{
			Color:    color,
			StartDeg: float64(i) * sweep,
			SweepDeg: sweep,
		}
	}
	return sectors, nil
}

// SwatchSVG renders the swatch as a standalone SVG circle of the given
// diameter in pixels.
func SwatchSVG(colors []string, diameter int) (string, error) {
	sectors, err := SwatchSectors(colors)
	if err != nil {
		return "", err
	}
	if diameter <= 0 {
		diameter = 24
	}

	r := float64(diameter) / 2
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, diameter, diameter, diameter, diameter)

	if len(sectors) == 1 {
		fmt.Fprintf(&sb, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`,
			trimFloat(r), trimFloat(r), trimFloat(r), html.EscapeString(sectors[0].Color))
	} else {
		for _, sector := range sectors {
			sb.WriteString(sectorPath(sector, r))
		}
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

func sectorPath(s Sector, r float64) string {
	x1, y1 := pointOnCircle(r, s.StartDeg)
	x2, y2 := pointOnCircle(r, s.StartDeg+s.SweepDeg)
	largeArc := 0
	if s.SweepDeg > 180 {
		largeArc = 1
	}
	return fmt.Sprintf(`<path d="M %s %s L %s %s A %s %s 0 %d 1 %s %s Z" fill="%s"/>`,
		trimFloat(r), trimFloat(r),
		trimFloat(x1), trimFloat(y1),
		trimFloat(r), trimFloat(r),
		largeArc,
		trimFloat(x2), trimFloat(y2),
		html.EscapeString(s.Color))
}

// pointOnCircle maps a clockwise-from-top angle onto the circle of radius r
// centred at (r, r).
func pointOnCircle(r, deg float64) (float64, float64) {
	rad := (deg - 90) * math.Pi / 180
	return r + r*math.Cos(rad), r + r*math.Sin(rad)
}

func trimFloat(v float64) string {
	out := fmt.Sprintf("%.2f", v)
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}
