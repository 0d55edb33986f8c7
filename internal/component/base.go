package component

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/cardkit/internal/log"
)

// Type discriminates the concrete kind of a component.
type Type string

const (
	TypeElement Type = "element"
	TypeBunch   Type = "bunch"
	TypeManager Type = "manager"
	TypePlayer  Type = "player"
)

// Kind is the display name used by String.
func (t Type) Kind() string {
	switch t {
	case TypeElement:
		return "Element"
	case TypeBunch:
		return "Bunch"
	case TypeManager:
		return "Manager"
	case TypePlayer:
		return "Player"
	default:
		return "Unknown"
	}
}

// Component is the identity, placement and error-sink contract shared by every
// kind. Implementations are sealed to this package.
type Component interface {
	ID() string
	Key() string
	SetKey(key string)
	Type() Type
	Context() Component
	Options() Options
	Errors() []*Error
	LastError() *Error
	ClearErrors()
	String() string

	core() *Base
}

// Base carries identity, the context back-reference and the local error list.
// The context records placement only; detaching clears it and nothing is
// destroyed through it.
type Base struct {
	id     string
	key    string
	kind   Type
	opts   Options
	self   Component
	parent *Base
	errs   []*Error
}

func newBase(kind Type, key string, opts Options) *Base {
	id := uuid.NewString()
	if key == "" {
		key = id
	}
	return &Base{id: id, key: key, kind: kind, opts: opts}
}

// bind records the concrete component that embeds b.
func (b *Base) bind(self Component) { b.self = self }

func (b *Base) core() *Base { return b }

// ID returns the unique identifier assigned at construction.
func (b *Base) ID() string { return b.id }

// Key returns the display label.
func (b *Base) Key() string { return b.key }

// SetKey sets the display label; an empty key falls back to the id.
func (b *Base) SetKey(key string) {
	if key == "" {
		key = b.id
	}
	b.key = key
}

// Type returns the component's kind.
func (b *Base) Type() Type { return b.kind }

// Options returns a copy of the construction-time options.
func (b *Base) Options() Options { return b.opts }

// Context returns the current parent, or nil when detached.
func (b *Base) Context() Component {
	if b.parent == nil {
		return nil
	}
	return b.parent.self
}

func (b *Base) setContext(c Component) {
	if c == nil {
		b.parent = nil
		return
	}
	b.parent = c.core()
}

func (b *Base) hasContext(c Component) bool {
	return c != nil && b.parent == c.core()
}

// sink resolves the outermost ancestor, which owns error state for the chain.
func (b *Base) sink() *Base {
	cur := b
	seen := map[*Base]bool{b: true}
	for {
		p := cur.parent
		if p == nil || seen[p] {
			return cur
		}
		seen[p] = true
		cur = p
	}
}

// Errors returns the errors recorded at the sink of record.
func (b *Base) Errors() []*Error {
	s := b.sink()
	out := make([]*Error, len(s.errs))
	copy(out, s.errs)
	return out
}

// LastError returns the most recent error recorded at the sink of record.
func (b *Base) LastError() *Error {
	s := b.sink()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

// ClearErrors empties the sink of record.
func (b *Base) ClearErrors() {
	b.sink().errs = nil
}

// raise builds an *Error and routes it to the sink. In soft-fail mode the error
// is recorded and nil is returned; otherwise the error is returned to the caller.
func (b *Base) raise(code Code, target Component, format string, args ...any) error {
	e := &Error{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Initiator: b.self,
		Target:    target,
		Time:      time.Now(),
	}

	fields := []any{"code", code, "initiator", b.id}
	if target != nil {
		fields = append(fields, "target", target.ID())
	}
	log.Warn(log.CatComponent, e.Message, fields...)

	s := b.sink()
	if !s.opts.Errors {
		return e
	}
	s.errs = append(s.errs, e)
	return nil
}
