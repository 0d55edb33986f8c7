// Package testutil builds fixture tables for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/fixture"
)

// Builder accumulates a fixture document.
type Builder struct {
	t   *testing.T
	doc fixture.Document
}

// NewBuilder creates a builder for a manager with the given key and scopes.
func NewBuilder(t *testing.T, key string, scopes ...string) *Builder {
	t.Helper()
	return &Builder{t: t, doc: fixture.Document{
		Manager: fixture.ManagerSpec{Key: key, Scopes: scopes},
	}}
}

// SoftErrors makes the manager record errors instead of returning them.
func (b *Builder) SoftErrors() *Builder {
	on := true
	b.doc.Manager.Errors = &on
	return b
}

// WithPlayer adds a player.
func (b *Builder) WithPlayer(key string, meta component.Meta) *Builder {
	b.doc.Players = append(b.doc.Players, fixture.PlayerSpec{Key: key, Meta: meta})
	return b
}

// WithBunch adds a bunch with optional configuration.
func (b *Builder) WithBunch(key string, opts ...BunchOption) *Builder {
	spec := fixture.BunchSpec{Key: key}
	for _, opt := range opts {
		opt(&spec)
	}
	b.doc.Bunches = append(b.doc.Bunches, spec)
	return b
}

// Document returns the accumulated document.
func (b *Builder) Document() *fixture.Document {
	return &b.doc
}

// Build loads the document with zero option defaults.
func (b *Builder) Build() *fixture.Table {
	b.t.Helper()
	table, err := fixture.NewLoader(component.Options{}, nil).Build(b.t.Context(), &b.doc)
	require.NoError(b.t, err)
	return table
}

// WriteFile marshals the document into a temp dir and returns its path.
func (b *Builder) WriteFile() string {
	b.t.Helper()
	data, err := yaml.Marshal(b.doc)
	require.NoError(b.t, err)
	path := filepath.Join(b.t.TempDir(), "table.yaml")
	require.NoError(b.t, os.WriteFile(path, data, 0o600))
	return path
}
