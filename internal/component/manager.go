package component

import (
	"slices"

	"github.com/zjrosen/cardkit/internal/finder"
	"github.com/zjrosen/cardkit/internal/log"
)

const (
	// ScopeDefault holds physical bunches registered without a scope.
	ScopeDefault = "default"
	// ScopeVirtual is reserved for bunches with VirtualContext.
	ScopeVirtual = "virtual"
	// LibraryKey is the key of every manager's library bunch.
	LibraryKey = "library"
)

type registration struct {
	scope string
	bunch *Bunch
}

// Manager is the top-level keeper of bunches. Each registered bunch sits in
// exactly one scope, and every element added through any registered bunch is
// catalogued once (by id) in the library.
//
// The library only grows unless LibraryDeletion is set, in which case elements
// no registered bunch holds anymore are evicted when they are removed.
type Manager struct {
	WithMeta
	scopes  []string
	order   []string
	entries map[string]*registration
	library *Bunch
	finder  *finder.Finder[*Bunch]
}

// NewManager creates a registry with the default and virtual scopes plus the
// given custom scopes. Empty and repeated names are ignored.
func NewManager(key string, scopes []string, opts ...Option) *Manager {
	m := &Manager{
		WithMeta: newWithMeta(TypeManager, key, Options{}.With(opts...)),
		scopes:   []string{ScopeDefault, ScopeVirtual},
		entries:  make(map[string]*registration),
	}
	m.bind(m)
	for _, s := range scopes {
		if s != "" && !slices.Contains(m.scopes, s) {
			m.scopes = append(m.scopes, s)
		}
	}
	m.library = NewBunch(LibraryKey, WithVirtualContext(true))
	m.library.setContext(m)
	m.finder = finder.New[*Bunch](m, bunchFields)
	return m
}

// Scopes returns the valid scope names.
func (m *Manager) Scopes() []string {
	return slices.Clone(m.scopes)
}

// Library returns the catalog of every element registered through the manager.
func (m *Manager) Library() *Bunch {
	return m.library
}

// Items returns every registered bunch in registration order.
func (m *Manager) Items() []*Bunch {
	return m.GetAll("")
}

// Len returns the number of registered bunches.
func (m *Manager) Len() int {
	return len(m.order)
}

// Add registers b in scope. An empty scope resolves to "virtual" for virtual
// bunches and "default" otherwise.
func (m *Manager) Add(b *Bunch, scope string) error {
	return m.add(b, scope, nil)
}

// AddMany registers bunches in order, all in the same scope. In hard-fail mode
// the first error undoes the whole batch.
func (m *Manager) AddMany(bunches []*Bunch, scope string) error {
	j := &journal{}
	for _, b := range bunches {
		if err := m.add(b, scope, j); err != nil {
			j.rollback()
			log.Debug(log.CatManager, "Batch rolled back", "manager", m.Key(), "size", len(bunches))
			return err
		}
	}
	return nil
}

func (m *Manager) add(b *Bunch, scope string, j *journal) error {
	if b == nil {
		return ErrNilBunch
	}
	if _, ok := m.entries[b.ID()]; ok {
		return m.raise(CodeIDConflict, b, "bunch %q already registered in %q", b.ID(), m.Key())
	}
	resolved, err := m.resolveScope(b, scope)
	if err != nil || resolved == "" {
		return err
	}

	for _, e := range b.items {
		m.catalog(e, j)
	}

	prevCtx := b.Context()
	prevMgr, moved := prevCtx.(*Manager)
	moved = moved && prevMgr != m
	if moved {
		prevMgr.unregister(b.ID(), j)
	}
	b.setContext(m)
	j.record(func() { b.setContext(prevCtx) })

	m.entries[b.ID()] = &registration{scope: resolved, bunch: b}
	m.order = append(m.order, b.ID())
	j.record(func() {
		delete(m.entries, b.ID())
		m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == b.ID() })
	})

	if moved {
		prevMgr.prune(b.items, j)
	}

	log.Debug(log.CatManager, "Bunch registered", "manager", m.Key(), "bunch", b.Key(), "scope", resolved)
	return nil
}

// resolveScope validates scope for b. It returns "" with a nil error when the
// violation was recorded in soft-fail mode.
func (m *Manager) resolveScope(b *Bunch, scope string) (string, error) {
	virtual := b.opts.VirtualContext
	if scope == "" {
		if virtual {
			return ScopeVirtual, nil
		}
		return ScopeDefault, nil
	}
	switch {
	case !slices.Contains(m.scopes, scope):
		return "", m.raise(CodeInvalidScope, b, "scope %q does not exist in %q", scope, m.Key())
	case virtual && scope != ScopeVirtual:
		return "", m.raise(CodeForbiddenScope, b, "virtual bunch %q must stay in scope %q", b.Key(), ScopeVirtual)
	case !virtual && scope == ScopeVirtual:
		return "", m.raise(CodeForbiddenVirtualScope, b, "bunch %q is not virtual and cannot use scope %q", b.Key(), ScopeVirtual)
	}
	return scope, nil
}

// MoveToScope changes the recorded scope of a registered bunch, applying the
// same rules as Add.
func (m *Manager) MoveToScope(id, scope string) error {
	entry, ok := m.entries[id]
	if !ok {
		return m.raise(CodeInvalidID, nil, "bunch %q is not registered in %q", id, m.Key())
	}
	resolved, err := m.resolveScope(entry.bunch, scope)
	if err != nil || resolved == "" {
		return err
	}
	entry.scope = resolved
	log.Debug(log.CatManager, "Bunch moved", "manager", m.Key(), "bunch", entry.bunch.Key(), "scope", resolved)
	return nil
}

// Remove unregisters the bunches with the given ids and detaches them. In
// hard-fail mode an unknown id aborts the call before anything is removed; in
// soft-fail mode unknown ids are recorded and skipped.
func (m *Manager) Remove(ids ...string) ([]*Bunch, error) {
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.entries[id]; ok {
			known = append(known, id)
			continue
		}
		if err := m.raise(CodeInvalidID, nil, "bunch %q is not registered in %q", id, m.Key()); err != nil {
			return nil, err
		}
	}

	var removed []*Bunch
	var released []*Element
	for _, id := range known {
		entry, ok := m.entries[id]
		if !ok {
			continue
		}
		m.unregister(id, nil)
		removed = append(removed, entry.bunch)
		released = append(released, entry.bunch.items...)
	}
	m.prune(released, nil)
	return removed, nil
}

func (m *Manager) unregister(id string, j *journal) {
	entry, ok := m.entries[id]
	if !ok {
		return
	}
	pos := slices.Index(m.order, id)
	delete(m.entries, id)
	m.order = slices.Delete(m.order, pos, pos+1)

	b := entry.bunch
	detached := b.hasContext(m)
	if detached {
		b.setContext(nil)
	}
	j.record(func() {
		m.entries[id] = entry
		m.order = slices.Insert(m.order, pos, id)
		if detached {
			b.setContext(m)
		}
	})
	log.Debug(log.CatManager, "Bunch unregistered", "manager", m.Key(), "bunch", b.Key())
}

// Get returns the registered bunch with the given id.
func (m *Manager) Get(id string) (*Bunch, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return entry.bunch, true
}

// GetAll returns the bunches registered in scope, or in every scope when scope
// is empty, in registration order.
func (m *Manager) GetAll(scope string) []*Bunch {
	out := make([]*Bunch, 0, len(m.order))
	for _, id := range m.order {
		entry := m.entries[id]
		if scope == "" || entry.scope == scope {
			out = append(out, entry.bunch)
		}
	}
	return out
}

// GetScope returns the recorded scope of a registered bunch.
func (m *Manager) GetScope(id string) (string, error) {
	entry, ok := m.entries[id]
	if !ok {
		return "", m.raise(CodeInvalidID, nil, "bunch %q is not registered in %q", id, m.Key())
	}
	return entry.scope, nil
}

// Find answers a structured query over the registered bunches.
func (m *Manager) Find(q finder.Query) []*Bunch {
	return m.finder.Execute(q)
}

// QueryFields lists the fields Find understands.
func (m *Manager) QueryFields() []finder.Field {
	return m.finder.Fields()
}

// catalog adds e to the library unless an element with its id is already there.
func (m *Manager) catalog(e *Element, j *journal) {
	lib := m.library
	if lib.IndexOf(e.ID()) >= 0 {
		return
	}
	lib.items = append(lib.items, e)
	j.record(func() {
		lib.items = slices.DeleteFunc(lib.items, func(x *Element) bool { return x == e })
	})
	log.Debug(log.CatManager, "Element catalogued", "manager", m.Key(), "element", e.Key())
}

// prune evicts candidates from the library when LibraryDeletion is set and no
// registered bunch holds them anymore.
func (m *Manager) prune(candidates []*Element, j *journal) {
	if !m.opts.LibraryDeletion || len(candidates) == 0 {
		return
	}
	var evict []string
	for _, e := range candidates {
		if !m.holds(e.ID()) {
			evict = append(evict, e.ID())
		}
	}
	if len(evict) == 0 {
		return
	}
	lib := m.library
	before := slices.Clone(lib.items)
	lib.Remove(evict...)
	j.record(func() { lib.items = before })
	log.Debug(log.CatManager, "Library pruned", "manager", m.Key(), "count", len(evict))
}

func (m *Manager) holds(elementID string) bool {
	for _, id := range m.order {
		if m.entries[id].bunch.IndexOf(elementID) >= 0 {
			return true
		}
	}
	return false
}

// Object returns the structural form of the manager with its registered
// bunches as items.
func (m *Manager) Object() Object {
	obj := objectOf(&m.WithMeta, nil)
	items := make([]Object, 0, len(m.order))
	for _, b := range m.Items() {
		items = append(items, b.Object())
	}
	obj.Items = &items
	return obj
}

func (m *Manager) String() string {
	return describe(m, nil, len(m.order))
}
