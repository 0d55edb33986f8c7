package component

import (
	"github.com/zjrosen/cardkit/internal/finder"
)

// Queryable fields.
const (
	FieldID       finder.Field = "id"
	FieldKey      finder.Field = "key"
	FieldType     finder.Field = "type"
	FieldOwner    finder.Field = "owner"    // owner id, nil when unowned
	FieldOwnerKey finder.Field = "ownerKey" // owner key, nil when unowned
	FieldIndex    finder.Field = "index"    // position within the bunch
	FieldMeta     finder.Field = "meta"     // object search over metadata
	FieldScope    finder.Field = "scope"    // registry scope of a bunch
	FieldSize     finder.Field = "size"     // number of items in a bunch
)

type elementSource = finder.Source[*Element]

type bunchSource = finder.Source[*Bunch]

var elementFields = finder.Config[*Element]{
	FieldID: {
		Operators: finder.IdentityOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return e.ID() },
	},
	FieldKey: {
		Operators: finder.IdentityOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return e.Key() },
	},
	FieldType: {
		Operators: finder.IdentityOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return string(e.Type()) },
	},
	FieldOwner: {
		Operators: finder.IdentityOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return ownerID(e.owner) },
	},
	FieldOwnerKey: {
		Operators: finder.IdentityOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return ownerKey(e.owner) },
	},
	FieldIndex: {
		Operators: finder.NumericOps,
		Value:     func(_ *Element, i int, _ elementSource) any { return i },
	},
	FieldMeta: {
		Operators: finder.AllOps,
		Value:     func(e *Element, _ int, _ elementSource) any { return map[string]any(e.meta) },
		Object:    true,
	},
}

var bunchFields = finder.Config[*Bunch]{
	FieldID: {
		Operators: finder.IdentityOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return b.ID() },
	},
	FieldKey: {
		Operators: finder.IdentityOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return b.Key() },
	},
	FieldType: {
		Operators: finder.IdentityOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return string(b.Type()) },
	},
	FieldOwner: {
		Operators: finder.IdentityOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return ownerID(b.owner) },
	},
	FieldOwnerKey: {
		Operators: finder.IdentityOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return ownerKey(b.owner) },
	},
	FieldScope: {
		Operators: finder.IdentityOps,
		Value:     scopeOf,
	},
	FieldSize: {
		Operators: finder.NumericOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return len(b.items) },
	},
	FieldMeta: {
		Operators: finder.AllOps,
		Value:     func(b *Bunch, _ int, _ bunchSource) any { return map[string]any(b.meta) },
		Object:    true,
	},
}

func scopeOf(b *Bunch, _ int, src bunchSource) any {
	m, ok := src.(*Manager)
	if !ok {
		return nil
	}
	if entry, ok := m.entries[b.ID()]; ok {
		return entry.scope
	}
	return nil
}

func ownerID(p *Player) any {
	if p == nil {
		return nil
	}
	return p.ID()
}

func ownerKey(p *Player) any {
	if p == nil {
		return nil
	}
	return p.Key()
}
