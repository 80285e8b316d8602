package table

import "botsdash/internal/model"

// Body is the row container, the equivalent of the table's tbody.
type Body struct {
	rows    []Row
	version int
}

func NewBody() *Body { return &Body{} }

func (b *Body) Clear() {
	b.rows = b.rows[:0]
	b.version++
}

func (b *Body) Append(r Row) {
	b.rows = append(b.rows, r)
	b.version++
}

// Find returns the index of the row whose identity matches id, or -1.
func (b *Body) Find(id string) int {
	for i := range b.rows {
		if b.rows[i].AppID == id {
			return i
		}
	}
	return -1
}

// Replace swaps the row at index i, keeping its position.
func (b *Body) Replace(i int, r Row) {
	b.rows[i] = r
	b.version++
}

// Rows returns a copy of the rows in display order.
func (b *Body) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

func (b *Body) Len() int { return len(b.rows) }

// Version increases on every mutation so views can skip redundant redraws.
func (b *Body) Version() int { return b.version }

// Source supplies the records for a full rebuild, in display order.
type Source interface {
	All() []model.AppRecord
}

// Reconciler keeps a Body in step with a Source. It implements apps.Renderer.
type Reconciler struct {
	Body   *Body
	Source Source
}

// Render rebuilds every row when target is nil; otherwise it rebuilds only
// the target's row, replacing it in place or appending it at the end.
//
// Body must be set; a missing container is a wiring bug and panics.
func (r *Reconciler) Render(target *model.AppRecord) {
	if r.Body == nil {
		panic("table: reconciler has no body")
	}
	if target == nil {
		r.Body.Clear()
		if r.Source == nil {
			return
		}
		for _, app := range r.Source.All() {
			r.Body.Append(BuildRow(app))
		}
		return
	}

	row := BuildRow(*target)
	if i := r.Body.Find(target.ID); i >= 0 {
		r.Body.Replace(i, row)
		return
	}
	r.Body.Append(row)
}
