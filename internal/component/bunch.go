package component

import (
	"slices"

	"github.com/zjrosen/cardkit/internal/finder"
	"github.com/zjrosen/cardkit/internal/log"
)

// Bunch is an ordered, owned, metadata-bearing collection of elements.
// Insertion order is meaningful and preserved across adds and removals.
//
// Within one bunch no two items share an id; with UniqueKey no two share a key.
// Unless VirtualContext is set the bunch takes custody of its items: adding
// an item moves it out of its previous bunch and points its context here.
type Bunch struct {
	Physical
	items  []*Element
	finder *finder.Finder[*Element]
}

// NewBunch creates an empty, detached bunch.
func NewBunch(key string, opts ...Option) *Bunch {
	b := &Bunch{Physical: newPhysical(TypeBunch, key, Options{}.With(opts...))}
	b.bind(b)
	b.finder = finder.New[*Element](b, elementFields)
	return b
}

// Items returns a snapshot of the items in order.
func (b *Bunch) Items() []*Element {
	return slices.Clone(b.items)
}

// Len returns the number of items.
func (b *Bunch) Len() int {
	return len(b.items)
}

// Manager returns the registry found on the bunch's context chain, or nil.
func (b *Bunch) Manager() *Manager {
	for c := b.Context(); c != nil; c = c.Context() {
		if m, ok := c.(*Manager); ok {
			return m
		}
	}
	return nil
}

// Add appends item. opts override the bunch options for this call only.
func (b *Bunch) Add(item *Element, opts ...Option) error {
	return b.AddAtIndex(item, len(b.items), opts...)
}

// AddAtIndex inserts item at index, clamped into [0, Len()].
func (b *Bunch) AddAtIndex(item *Element, index int, opts ...Option) error {
	_, err := b.insert(item, index, b.opts.With(opts...), nil)
	return err
}

// AddMany appends items in order.
func (b *Bunch) AddMany(items []*Element, opts ...Option) error {
	return b.AddManyAtIndex(items, len(b.items), opts...)
}

// AddManyAtIndex inserts items consecutively starting at index. Each item goes
// right after the previously inserted one. When an insertion returns an error
// (hard-fail mode) every change made by the batch is undone before returning;
// in soft-fail mode failures are recorded and the batch continues.
func (b *Bunch) AddManyAtIndex(items []*Element, index int, opts ...Option) error {
	o := b.opts.With(opts...)
	j := &journal{}
	at := index
	for _, item := range items {
		pos, err := b.insert(item, at, o, j)
		if err != nil {
			j.rollback()
			log.Debug(log.CatComponent, "Batch rolled back", "bunch", b.Key(), "size", len(items))
			return err
		}
		if pos >= 0 {
			at = pos + 1
		}
	}
	return nil
}

// insert runs the add pipeline and returns the slot the item landed in, or -1
// when a conflict was recorded in soft-fail mode.
func (b *Bunch) insert(item *Element, index int, o Options, j *journal) (int, error) {
	if item == nil {
		return -1, ErrNilElement
	}
	index = max(0, min(index, len(b.items)))

	if b.IndexOf(item.ID()) >= 0 {
		return -1, b.raise(CodeIDConflict, item, "element %q already in bunch %q", item.ID(), b.Key())
	}
	if o.UniqueKey && b.indexOfKey(item.Key()) >= 0 {
		return -1, b.raise(CodeKeyConflict, item, "key %q already in bunch %q", item.Key(), b.Key())
	}

	var released *Manager
	if !o.VirtualContext {
		released = b.takeCustody(item, j)
	}

	if o.InheritOwner {
		prev := item.owner
		item.owner = b.owner
		j.record(func() { item.owner = prev })
	}

	m := b.Manager()
	if m != nil && m.library != b {
		m.catalog(item, j)
	}

	if o.ReplaceIndex && index < len(b.items) {
		old := b.replace(index, item, j)
		if m != nil && m.library != b {
			m.prune([]*Element{old}, j)
		}
	} else {
		b.items = slices.Insert(b.items, index, item)
		j.record(func() { b.items = slices.Delete(b.items, index, index+1) })
	}

	// The item left its previous bunch; that manager may no longer hold it.
	if released != nil {
		released.prune([]*Element{item}, j)
	}

	log.Debug(log.CatComponent, "Element added", "bunch", b.Key(), "element", item.Key(), "index", index)
	return index, nil
}

// takeCustody moves item out of its previous bunch and points its context here.
// It returns the previous bunch's manager when the item was taken out of it.
func (b *Bunch) takeCustody(item *Element, j *journal) *Manager {
	var released *Manager
	prevCtx := item.Context()
	if prev, ok := prevCtx.(*Bunch); ok && prev != b {
		if at := prev.IndexOf(item.ID()); at >= 0 {
			prev.items = slices.Delete(prev.items, at, at+1)
			j.record(func() { prev.items = slices.Insert(prev.items, at, item) })
			if pm := prev.Manager(); pm != nil && pm.library != prev {
				released = pm
			}
		}
	}
	item.setContext(b)
	j.record(func() { item.setContext(prevCtx) })
	return released
}

// replace puts item at index and returns the element it displaced.
func (b *Bunch) replace(index int, item *Element, j *journal) *Element {
	old := b.items[index]
	b.items[index] = item
	released := old.hasContext(b)
	if released {
		old.setContext(nil)
	}
	j.record(func() {
		b.items[index] = old
		if released {
			old.setContext(b)
		}
	})
	return old
}

// Get returns the item at position index. Out-of-range positions are not found.
func (b *Bunch) Get(index int) (*Element, bool) {
	if index < 0 || index >= len(b.items) {
		return nil, false
	}
	return b.items[index], true
}

// GetByID returns the item with the given id.
func (b *Bunch) GetByID(id string) (*Element, bool) {
	if i := b.IndexOf(id); i >= 0 {
		return b.items[i], true
	}
	return nil, false
}

// IndexOf returns the position of the first item with the given id, or -1.
func (b *Bunch) IndexOf(id string) int {
	return slices.IndexFunc(b.items, func(e *Element) bool { return e.ID() == id })
}

func (b *Bunch) indexOfKey(key string) int {
	return slices.IndexFunc(b.items, func(e *Element) bool { return e.Key() == key })
}

// Remove removes the items with the given ids. Unknown ids are skipped.
// Removed items are returned in their former order.
func (b *Bunch) Remove(ids ...string) []*Element {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return b.removeWhere(func(_ int, e *Element) bool { return drop[e.ID()] })
}

// RemoveAt removes the items at the given positions. Out-of-range positions are
// skipped. Remaining items are reindexed without gaps.
func (b *Bunch) RemoveAt(indices ...int) []*Element {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	return b.removeWhere(func(i int, _ *Element) bool { return drop[i] })
}

// RemoveAll removes every item.
func (b *Bunch) RemoveAll() []*Element {
	return b.removeWhere(func(int, *Element) bool { return true })
}

func (b *Bunch) removeWhere(match func(int, *Element) bool) []*Element {
	var removed []*Element
	kept := make([]*Element, 0, len(b.items))
	for i, e := range b.items {
		if match(i, e) {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	b.items = kept

	if !b.opts.VirtualContext {
		for _, e := range removed {
			if e.hasContext(b) {
				e.setContext(nil)
			}
		}
	}
	if m := b.Manager(); m != nil && m.library != b {
		m.prune(removed, nil)
	}

	log.Debug(log.CatComponent, "Elements removed", "bunch", b.Key(), "count", len(removed), "remaining", len(b.items))
	return removed
}

// Find answers a structured query over the bunch's items.
func (b *Bunch) Find(q finder.Query) []*Element {
	return b.finder.Execute(q)
}

// QueryFields lists the fields Find understands.
func (b *Bunch) QueryFields() []finder.Field {
	return b.finder.Fields()
}

// SetOwner sets the bunch owner. With InheritOwner every current item takes
// the same owner.
func (b *Bunch) SetOwner(owner *Player) {
	b.owner = owner
	if b.opts.InheritOwner {
		for _, e := range b.items {
			e.owner = owner
		}
	}
}

// ClearOwner removes the owner, propagating like SetOwner.
func (b *Bunch) ClearOwner() {
	b.SetOwner(nil)
}

// Copy returns a new bunch with a fresh id and the same key, options and
// metadata. Context and owner are not copied. Items are copied one by one unless
// VirtualContext is set, in which case the same elements are shared.
func (b *Bunch) Copy() *Bunch {
	c := NewBunch(b.Key(), WithOptions(b.opts))
	c.meta = b.meta.Clone()
	c.items = make([]*Element, 0, len(b.items))
	for _, e := range b.items {
		if b.opts.VirtualContext {
			c.items = append(c.items, e)
			continue
		}
		ec := e.Copy()
		ec.setContext(c)
		c.items = append(c.items, ec)
	}
	return c
}

// Object returns the structural form of the bunch, items included.
func (b *Bunch) Object() Object {
	obj := objectOf(&b.WithMeta, b.owner)
	items := make([]Object, 0, len(b.items))
	for _, e := range b.items {
		items = append(items, e.Object())
	}
	obj.Items = &items
	return obj
}

func (b *Bunch) String() string {
	return describe(b, b.owner, len(b.items))
}
