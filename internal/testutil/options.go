package testutil

import (
	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/fixture"
)

// BunchOption configures a bunch during builder setup.
type BunchOption func(*fixture.BunchSpec)

// Scope registers the bunch in scope.
func Scope(scope string) BunchOption {
	return func(b *fixture.BunchSpec) { b.Scope = scope }
}

// Owner sets the bunch owner by player key.
func Owner(player string) BunchOption {
	return func(b *fixture.BunchSpec) { b.Owner = player }
}

// UniqueKey rejects duplicate element keys in the bunch.
func UniqueKey() BunchOption {
	return func(b *fixture.BunchSpec) { b.Options.UniqueKey = ptr(true) }
}

// InheritOwner gives added elements the bunch owner.
func InheritOwner() BunchOption {
	return func(b *fixture.BunchSpec) { b.Options.InheritOwner = ptr(true) }
}

// Virtual makes the bunch reference elements without taking custody.
func Virtual() BunchOption {
	return func(b *fixture.BunchSpec) { b.Options.VirtualContext = ptr(true) }
}

// BunchMeta sets the bunch metadata.
func BunchMeta(meta component.Meta) BunchOption {
	return func(b *fixture.BunchSpec) { b.Meta = meta }
}

// Items declares new elements (nested option).
func Items(items ...fixture.ItemSpec) BunchOption {
	return func(b *fixture.BunchSpec) { b.Items = append(b.Items, items...) }
}

// Refs reuses elements declared earlier (nested option).
func Refs(keys ...string) BunchOption {
	return func(b *fixture.BunchSpec) {
		for _, k := range keys {
			b.Items = append(b.Items, fixture.ItemSpec{Ref: k})
		}
	}
}

// Item creates an element declaration.
func Item(key string, meta component.Meta) fixture.ItemSpec {
	return fixture.ItemSpec{Key: key, Meta: meta}
}

// OwnedItem creates an element declaration with an owner.
func OwnedItem(key, owner string, meta component.Meta) fixture.ItemSpec {
	return fixture.ItemSpec{Key: key, Owner: owner, Meta: meta}
}

func ptr[T any](v T) *T { return &v }
