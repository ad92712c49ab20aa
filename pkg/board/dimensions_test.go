package board

import "testing"

func TestComputeDimensionsNeverSmallerThanViewport(t *testing.T) {
	item := Size{Width: 100, Height: 100}
	viewports := []Size{
		{Width: 400, Height: 800},
		{Width: 1920, Height: 1080},
		{Width: 50, Height: 50},
		{Width: 0, Height: 0},
	}

	for _, v := range viewports {
		for _, n := range []int{-1, 0, 1, 5, 50, 500, 5000} {
			d := ComputeDimensions(n, v, item, DefaultSpread)
			if d.Width < v.Width || d.Height < v.Height {
				t.Errorf("ComputeDimensions(%d, %v) = %v, smaller than viewport", n, v, d)
			}
			if d.Width < item.Width || d.Height < item.Height {
				t.Errorf("ComputeDimensions(%d, %v) = %v, smaller than an item", n, v, d)
			}
		}
	}
}

func TestComputeDimensionsMonotonic(t *testing.T) {
	item := Size{Width: 120, Height: 120}
	v := Size{Width: 390, Height: 844}

	prev := ComputeDimensions(0, v, item, DefaultSpread)
	for n := 1; n <= 2000; n++ {
		d := ComputeDimensions(n, v, item, DefaultSpread)
		if d.Width < prev.Width || d.Height < prev.Height {
			t.Fatalf("dimensions shrank at n=%d: %v -> %v", n, prev, d)
		}
		prev = d
	}
}

func TestComputeDimensionsEmptyBoard(t *testing.T) {
	v := Size{Width: 400, Height: 800}
	d := ComputeDimensions(0, v, Size{Width: 100, Height: 100}, DefaultSpread)
	if d.Width != 400 || d.Height != 800 {
		t.Errorf("empty board = %v, want viewport size", d)
	}
}

func TestComputeDimensionsGrowsWithItems(t *testing.T) {
	v := Size{Width: 400, Height: 800}
	item := Size{Width: 100, Height: 100}

	small := ComputeDimensions(10, v, item, DefaultSpread)
	large := ComputeDimensions(1000, v, item, DefaultSpread)
	if large.Width <= small.Width || large.Height <= small.Height {
		t.Errorf("1000 items = %v, want larger than 10 items = %v", large, small)
	}

	// Area per item stays roughly constant once the canvas outgrows the viewport.
	perItem := large.Width * large.Height / 1000
	want := item.Area() * DefaultSpread
	if perItem < want || perItem > want*1.05 {
		t.Errorf("area per item = %.0f, want about %.0f", perItem, want)
	}
}

func TestDimensionsContains(t *testing.T) {
	d := Dimensions{Width: 400, Height: 800}
	item := Size{Width: 100, Height: 100}

	tests := []struct {
		pos  Position
		want bool
	}{
		{Position{Top: 0, Left: 0}, true},
		{Position{Top: 700, Left: 300}, true},
		{Position{Top: 700.5, Left: 300}, false},
		{Position{Top: -5, Left: 10}, false},
		{Position{Top: 10, Left: 301}, false},
	}
	for _, tt := range tests {
		if got := d.Contains(tt.pos, item); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}
