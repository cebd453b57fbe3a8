package board

import "github.com/hylla/roost/internal/domain"

// Resolve maps a release x coordinate to the column under it. Columns are
// checked in registration order and the first match wins; ok is false when the
// pointer is outside every registered column.
func Resolve(pointerX int, registry *LayoutRegistry, scrollOffset int) (domain.Status, bool) {
	for _, col := range registry.Columns() {
		if col.Extent.Contains(pointerX, scrollOffset) {
			return col.Status, true
		}
	}
	return "", false
}
