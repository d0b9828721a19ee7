package spatialcache

import (
	"fmt"

	lc "github.com/dreamware/largecollections"
)

// BoundingBox is an axis-aligned rectangle (spec §4.5, GLOSSARY).
type BoundingBox struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

func (b BoundingBox) validate() error {
	if b.MinX > b.MaxX {
		return fmt.Errorf("spatialcache: bounding box min_x %v > max_x %v: %w", b.MinX, b.MaxX, lc.ErrInvalidArgument)
	}
	if b.MinY > b.MaxY {
		return fmt.Errorf("spatialcache: bounding box min_y %v > max_y %v: %w", b.MinY, b.MaxY, lc.ErrInvalidArgument)
	}
	return nil
}

// Intersects reports whether b and other overlap, inclusive of shared
// edges, per spec §4.5:
// a.min_x ≤ b.max_x ∧ a.max_x ≥ b.min_x ∧ a.min_y ≤ b.max_y ∧ a.max_y ≥ b.min_y.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}
