package render

import (
	"strings"
	"testing"
)

func TestSwatchSectors_TwoColors(t *testing.T) {
	sectors, err := SwatchSectors([]string{"#fff", "#000"})
	if err != nil {
		t.Fatalf("SwatchSectors: %v", err)
	}
	if len(sectors) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(sectors))
	}
	if sectors[0].StartDeg != 0 || sectors[0].SweepDeg != 180 {
		t.Fatalf("unexpected first sector %+v", sectors[0])
	}
	if sectors[1].StartDeg != 180 || sectors[1].SweepDeg != 180 {
		t.Fatalf("unexpected second sector %+v", sectors[1])
	}
}

func TestSwatchSectors_FourColors(t *testing.T) {
	colors := []string{"#111", "#222", "#333", "#444"}
	sectors, err := SwatchSectors(colors)
	if err != nil {
		t.Fatalf("SwatchSectors: %v", err)
	}
	for i, s := range sectors {
		if s.SweepDeg != 90 {
			t.Fatalf("sector %d sweep = %v, want 90", i, s.SweepDeg)
		}
		if s.StartDeg != float64(i)*90 {
			t.Fatalf("sector %d start = %v, want %v", i, s.StartDeg, float64(i)*90)
		}
		if s.Color != colors[i] {
			t.Fatalf("sector %d color = %q, want %q", i, s.Color, colors[i])
		}
	}
}

func TestSwatchSectors_SingleColorFullCircle(t *testing.T) {
	sectors, err := SwatchSectors([]string{"#c8a45d"})
	if err != nil {
		t.Fatalf("SwatchSectors: %v", err)
	}
	if len(sectors) != 1 || sectors[0].SweepDeg != 360 {
		t.Fatalf("expected one 360 sector, got %+v", sectors)
	}
}

func TestSwatchSectors_RejectsOutOfRange(t *testing.T) {
	if _, err := SwatchSectors(nil); err == nil {
		t.Fatal("expected error for zero colors")
	}
	if _, err := SwatchSectors([]string{"a", "b", "c", "d", "e"}); err == nil {
		t.Fatal("expected error for five colors")
	}
}

func TestSwatchSVG(t *testing.T) {
	svg, err := SwatchSVG([]string{"#fff"}, 24)
	if err != nil {
		t.Fatalf("SwatchSVG: %v", err)
	}
	if !strings.Contains(svg, "<circle") {
		t.Fatalf("single color should render a circle: %q", svg)
	}

	svg, err = SwatchSVG([]string{"#fff", "#000"}, 24)
	if err != nil {
		t.Fatalf("SwatchSVG: %v", err)
	}
	if strings.Count(svg, "<path") != 2 {
		t.Fatalf("expected two sector paths: %q", svg)
	}
}
