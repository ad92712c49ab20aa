package board

import "math"

// DefaultSpread is the canvas area reserved per item, in item footprints.
// A spread of 4 leaves roughly three empty footprints around every note.
const DefaultSpread = 4.0

// ComputeDimensions sizes the canvas for itemCount items.
//
// The canvas keeps the viewport's aspect ratio and grows so that its area is at
// least itemCount × item area × spread. It is never smaller than the viewport (so
// panning always has somewhere to go) nor smaller than a single item. The result
// is non-decreasing in itemCount and rounded up to whole pixels. A non-positive
// itemCount yields the viewport size.
func ComputeDimensions(itemCount int, viewport, item Size, spread float64) Dimensions {
	if spread <= 0 {
		spread = DefaultSpread
	}
	width := max(viewport.Width, 0)
	height := max(viewport.Height, 0)

	if itemCount > 0 && width > 0 && height > 0 {
		want := float64(itemCount) * item.Area() * spread
		if f := math.Sqrt(want / (width * height)); f > 1 {
			width *= f
			height *= f
		}
	}

	return Dimensions{
		Width:  math.Ceil(max(width, item.Width)),
		Height: math.Ceil(max(height, item.Height)),
	}
}
