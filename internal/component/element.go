package component

// Element is an atomic game piece. It has no children of its own.
type Element struct {
	Physical
}

// NewElement creates a detached, ownerless element.
func NewElement(key string, opts ...Option) *Element {
	e := &Element{Physical: newPhysical(TypeElement, key, Options{}.With(opts...))}
	e.bind(e)
	return e
}

// Bunch returns the bunch currently holding the element in custody, or nil.
func (e *Element) Bunch() *Bunch {
	b, _ := e.Context().(*Bunch)
	return b
}

// Copy returns a new element with a fresh id, the same key, options and a deep
// copy of the metadata. The copy starts detached and ownerless.
func (e *Element) Copy() *Element {
	c := NewElement(e.Key(), WithOptions(e.Options()))
	c.meta = e.meta.Clone()
	return c
}

// Object returns the structural form of the element.
func (e *Element) Object() Object {
	return objectOf(&e.WithMeta, e.owner)
}

func (e *Element) String() string {
	return describe(e, e.owner, -1)
}
