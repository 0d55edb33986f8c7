package component

import (
	"maps"
	"slices"
)

// Meta is an open bag of primitive or list-of-primitive values.
// No schema is enforced; absent keys read as (nil, false).
type Meta map[string]any

// Clone deep-copies m, including list values.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch list := v.(type) {
	case []any:
		return slices.Clone(list)
	case []string:
		return slices.Clone(list)
	case []int:
		return slices.Clone(list)
	case []float64:
		return slices.Clone(list)
	case []bool:
		return slices.Clone(list)
	}
	return v
}

// WithMeta layers a metadata bag on Base.
type WithMeta struct {
	*Base
	meta Meta
}

func newWithMeta(kind Type, key string, opts Options) WithMeta {
	return WithMeta{Base: newBase(kind, key, opts), meta: Meta{}}
}

// Meta returns a deep copy of the metadata.
func (w *WithMeta) Meta() Meta {
	return w.meta.Clone()
}

// GetMeta reads one metadata value.
func (w *WithMeta) GetMeta(key string) (any, bool) {
	v, ok := w.meta[key]
	return v, ok
}

// SetMeta writes one metadata value.
func (w *WithMeta) SetMeta(key string, value any) {
	w.meta[key] = cloneValue(value)
}

// MergeMeta writes every entry of m.
func (w *WithMeta) MergeMeta(m Meta) {
	maps.Copy(w.meta, m.Clone())
}

// DeleteMeta removes one metadata key.
func (w *WithMeta) DeleteMeta(key string) {
	delete(w.meta, key)
}

// Physical adds an optional owner. Ownership is a relation: clearing it never
// affects the Player.
type Physical struct {
	WithMeta
	owner *Player
}

func newPhysical(kind Type, key string, opts Options) Physical {
	return Physical{WithMeta: newWithMeta(kind, key, opts)}
}

// Owner returns the owning player, or nil.
func (p *Physical) Owner() *Player {
	return p.owner
}

// SetOwner sets the owning player; nil clears it.
func (p *Physical) SetOwner(owner *Player) {
	p.owner = owner
}

// ClearOwner removes the owner reference.
func (p *Physical) ClearOwner() {
	p.owner = nil
}

// PhysicalComponent is implemented by every component that can be placed and owned.
type PhysicalComponent interface {
	Component
	Meta() Meta
	GetMeta(key string) (any, bool)
	SetMeta(key string, value any)
	Owner() *Player
	SetOwner(owner *Player)
	Object() Object
}
