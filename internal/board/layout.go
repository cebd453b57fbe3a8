package board

import "github.com/hylla/roost/internal/domain"

// Extent is the content-space horizontal span of one rendered column.
type Extent struct {
	OriginX int
	Width   int
}

// Contains reports whether screen x falls inside the extent once the viewport
// is scrolled by scrollOffset. Both edges are inclusive.
func (e Extent) Contains(x, scrollOffset int) bool {
	start := e.OriginX - scrollOffset
	return x >= start && x <= start+e.Width
}

// Column pairs a status with its registered extent.
type Column struct {
	Status domain.Status
	Extent Extent
}

// LayoutRegistry records column extents reported by layout passes.
type LayoutRegistry struct {
	order   []domain.Status
	extents map[domain.Status]Extent
}

// NewLayoutRegistry constructs an empty registry.
func NewLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{extents: map[domain.Status]Extent{}}
}

// Register records or overwrites the extent for status. The first registration
// of a status fixes its position in iteration order.
func (r *LayoutRegistry) Register(status domain.Status, originX, width int) {
	if width < 0 {
		width = 0
	}
	if _, ok := r.extents[status]; !ok {
		r.order = append(r.order, status)
	}
	r.extents[status] = Extent{OriginX: originX, Width: width}
}

// Extent returns the extent registered for status.
func (r *LayoutRegistry) Extent(status domain.Status) (Extent, bool) {
	if r == nil {
		return Extent{}, false
	}
	e, ok := r.extents[status]
	return e, ok
}

// Columns returns every registered column in registration order.
func (r *LayoutRegistry) Columns() []Column {
	if r == nil {
		return nil
	}
	out := make([]Column, 0, len(r.order))
	for _, status := range r.order {
		out = append(out, Column{Status: status, Extent: r.extents[status]})
	}
	return out
}

// Len returns the number of registered columns.
func (r *LayoutRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Forget removes a column that is no longer rendered.
func (r *LayoutRegistry) Forget(status domain.Status) {
	if _, ok := r.extents[status]; !ok {
		return
	}
	delete(r.extents, status)
	for i, candidate := range r.order {
		if candidate == status {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Reset clears every registration, as on a board remount.
func (r *LayoutRegistry) Reset() {
	r.order = nil
	r.extents = map[domain.Status]Extent{}
}
