package geom

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		width  int
		height int
		area   int
	}{
		{"simple", Rect{0, 0, 100, 50}, 100, 50, 5000},
		{"offset", Rect{10, 20, 30, 60}, 20, 40, 800},
		{"negative origin", Rect{-50, -50, 50, 50}, 100, 100, 10000},
		{"inverted horizontal", Rect{100, 0, 0, 50}, 0, 50, 0},
		{"inverted vertical", Rect{0, 50, 100, 0}, 100, 0, 0},
		{"degenerate", Rect{5, 5, 5, 5}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); got != tt.width {
				t.Errorf("Width() = %d, want %d", got, tt.width)
			}
			if got := tt.rect.Height(); got != tt.height {
				t.Errorf("Height() = %d, want %d", got, tt.height)
			}
			if got := tt.rect.Area(); got != tt.area {
				t.Errorf("Area() = %d, want %d", got, tt.area)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	a := Rect{0, 0, 100, 100}
	b := Rect{50, 50, 150, 150}

	got := a.Intersect(b)
	want := Rect{50, 50, 100, 100}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	// Disjoint rects intersect to zero area.
	c := Rect{200, 200, 300, 300}
	if a.Intersect(c).Area() != 0 {
		t.Errorf("disjoint intersection area = %d, want 0", a.Intersect(c).Area())
	}
}

func TestClampWithin(t *testing.T) {
	bounds := Rect{0, 0, 1920, 1080}

	tests := []struct {
		name string
		rect Rect
		want Rect
	}{
		{"inside", Rect{100, 100, 200, 200}, Rect{100, 100, 200, 200}},
		{"overhang right", Rect{1800, 100, 2100, 200}, Rect{1800, 100, 1920, 200}},
		{"overhang all sides", Rect{-50, -50, 2000, 1200}, Rect{0, 0, 1920, 1080}},
		{"fully outside", Rect{3000, 3000, 3100, 3100}, Rect{3000, 3000, 1920, 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.ClampWithin(bounds); got != tt.want {
				t.Errorf("ClampWithin = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOverlapRatio(t *testing.T) {
	monitor := Rect{0, 0, 1000, 1000}

	if got := (Rect{0, 0, 1000, 1000}).OverlapRatio(monitor); got != 1.0 {
		t.Errorf("full overlap ratio = %v, want 1.0", got)
	}
	if got := (Rect{500, 0, 1500, 1000}).OverlapRatio(monitor); got != 0.5 {
		t.Errorf("half overlap ratio = %v, want 0.5", got)
	}
	if got := (Rect{2000, 2000, 3000, 3000}).OverlapRatio(monitor); got != 0 {
		t.Errorf("disjoint overlap ratio = %v, want 0", got)
	}
	// Zero-area receiver is defined as 0.
	if got := (Rect{5, 5, 5, 5}).OverlapRatio(monitor); got != 0 {
		t.Errorf("zero-area overlap ratio = %v, want 0", got)
	}
}

func genRect(t *rapid.T, label string) Rect {
	return Rect{
		Left:   rapid.IntRange(-5000, 5000).Draw(t, label+"_left"),
		Top:    rapid.IntRange(-5000, 5000).Draw(t, label+"_top"),
		Right:  rapid.IntRange(-5000, 5000).Draw(t, label+"_right"),
		Bottom: rapid.IntRange(-5000, 5000).Draw(t, label+"_bottom"),
	}
}

func TestOverlapRatioBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRect(t, "a")
		b := genRect(t, "b")

		ratio := a.OverlapRatio(b)
		if ratio < 0 || ratio > 1 {
			t.Fatalf("OverlapRatio(%+v, %+v) = %v, outside [0,1]", a, b, ratio)
		}
		if a.Area() == 0 && ratio != 0 {
			t.Fatalf("zero-area rect yielded ratio %v, want 0", ratio)
		}
	})
}

func TestClampWithinStaysInsideBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := genRect(t, "r")
		bounds := genRect(t, "bounds")

		clamped := r.ClampWithin(bounds)
		inter := clamped.Intersect(bounds)
		// Whatever area survives clamping must lie entirely within bounds.
		if inter.Area() != clamped.Area() {
			t.Fatalf("ClampWithin(%+v, %+v) = %+v extends outside bounds", r, bounds, clamped)
		}
	})
}

func TestIntersectCommutativeArea(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRect(t, "a")
		b := genRect(t, "b")
		if a.Intersect(b).Area() != b.Intersect(a).Area() {
			t.Fatalf("intersection area not commutative for %+v and %+v", a, b)
		}
	})
}
