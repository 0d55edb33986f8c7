// Package component implements an in-memory hierarchy of addressable game
// components: elements, players, ordered bunches of elements, and a manager
// that keeps bunches in named scopes.
//
// # Capability layers
//
// Every kind is built from the same layers, composed by embedding:
//   - Base: identity (id, key, type), a non-owning context back-reference and an error sink
//   - WithMeta: an open metadata bag
//   - Physical: an optional owning Player
//
// Element and Player are physical leaves. Bunch is a physical collection.
// Manager carries metadata but is never owned.
//
// # Context and errors
//
// A component's context is its current placement (an element's bunch, a
// bunch's manager). It is a relation only and is cleared on detach. Errors
// raised anywhere in a chain are routed to the outermost ancestor, the sink of record. When the
// sink has the Errors option the error is recorded there and the operation
// returns nil; otherwise the operation returns the *Error.
//
//	m := component.NewManager("table", []string{"team1"}, component.WithErrors(true))
//	deck := component.NewBunch("deck", component.WithUniqueKey(true))
//	_ = m.Add(deck, "team1")
//	_ = deck.Add(component.NewElement("ace"))
//	_ = deck.Add(component.NewElement("ace")) // recorded as key_conflict
//	last := deck.LastError()                  // resolved at the manager
//
// # Queries
//
// Bunch.Find and Manager.Find evaluate finder.Query values against a fixed
// field table (id, key, type, owner, ownerKey, index, meta for elements; id,
// key, type, owner, ownerKey, scope, size, meta for bunches).
//
// The engine is single-threaded: no method is safe for concurrent use.
package component
