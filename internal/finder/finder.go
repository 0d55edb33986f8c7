// Package finder evaluates structured predicate queries against the items of an
// owning collection. A Finder is configured once with a table of queryable
// fields; each field declares the operators it accepts and how to read its value
// from an item.
//
// Semantics:
//   - An empty query matches nothing.
//   - Query fields missing from the configuration are ignored; a query naming
//     only unknown fields matches nothing.
//   - Fields combine with AND, and so do operators under one field.
//   - An operator outside a field's allowed set is a non-match, never an error.
//   - Object-search fields (such as metadata) take a Nested criterion; a missing
//     sub-field is a non-match.
package finder

import (
	"slices"

	"github.com/zjrosen/cardkit/internal/log"
)

// Source is the owning collection a Finder reads from.
type Source[T any] interface {
	Items() []T
}

// ValueFunc reads a field value from item. index is the item's position in src.
type ValueFunc[T any] func(item T, index int, src Source[T]) any

// FieldSpec configures one queryable field.
type FieldSpec[T any] struct {
	Operators OperatorSet
	Value     ValueFunc[T]
	Object    bool // value is a string-keyed mapping searched with Nested criteria
}

// Config is the fixed field table of a Finder.
type Config[T any] map[Field]FieldSpec[T]

// Finder answers queries over the current items of its Source.
type Finder[T any] struct {
	src    Source[T]
	config Config[T]
}

// New creates a Finder bound to src.
func New[T any](src Source[T], config Config[T]) *Finder[T] {
	return &Finder[T]{src: src, config: config}
}

// Fields returns the configured field names, sorted.
func (f *Finder[T]) Fields() []Field {
	fields := make([]Field, 0, len(f.config))
	for name := range f.config {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	return fields
}

// Execute returns the items matching every criterion of q, in source order.
func (f *Finder[T]) Execute(q Query) []T {
	active := f.active(q)
	if len(active) == 0 {
		log.Debug(log.CatFinder, "Query has no configured fields", "fields", len(q))
		return nil
	}

	items := f.src.Items()
	var result []T
	for i, item := range items {
		if f.match(item, i, q, active) {
			result = append(result, item)
		}
	}

	log.Debug(log.CatFinder, "Query complete", "fields", len(active), "items", len(items), "results", len(result))
	return result
}

func (f *Finder[T]) active(q Query) []Field {
	var fields []Field
	for name := range q {
		if _, ok := f.config[name]; ok {
			fields = append(fields, name)
		}
	}
	return fields
}

func (f *Finder[T]) match(item T, index int, q Query, fields []Field) bool {
	for _, name := range fields {
		spec := f.config[name]
		value := spec.Value(item, index, f.src)
		if !matchCriterion(spec, value, q[name]) {
			return false
		}
	}
	return true
}

func matchCriterion[T any](spec FieldSpec[T], value any, crit Criterion) bool {
	if spec.Object {
		nested, ok := crit.(Nested)
		if !ok {
			return false
		}
		fields, ok := asMap(value)
		if !ok {
			return false
		}
		for sub, cond := range nested {
			v, present := fields[sub]
			if !present {
				return false
			}
			if !matchCondition(spec.Operators, v, cond) {
				return false
			}
		}
		return true
	}

	cond, ok := crit.(Condition)
	if !ok {
		return false
	}
	return matchCondition(spec.Operators, value, cond)
}

func matchCondition(allowed OperatorSet, value any, cond Condition) bool {
	for op, arg := range cond {
		if !allowed.Has(op) {
			return false
		}
		if !apply(op, value, arg) {
			return false
		}
	}
	return true
}
