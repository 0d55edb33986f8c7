// Package fixture loads a table of players, bunches and elements from YAML and
// builds it through the component engine, so every engine rule applies.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cardkit/internal/component"
)

// Document is the on-disk shape of a fixture.
type Document struct {
	Manager ManagerSpec  `yaml:"manager"`
	Players []PlayerSpec `yaml:"players,omitempty"`
	Bunches []BunchSpec  `yaml:"bunches,omitempty"`
}

// ManagerSpec configures the registry. Unset flags fall back to the loader
// defaults.
type ManagerSpec struct {
	Key             string         `yaml:"key,omitempty"`
	Scopes          []string       `yaml:"scopes,omitempty"`
	Errors          *bool          `yaml:"errors,omitempty"`
	LibraryDeletion *bool          `yaml:"library_deletion,omitempty"`
	Meta            component.Meta `yaml:"meta,omitempty"`
}

type PlayerSpec struct {
	Key  string         `yaml:"key,omitempty"`
	Meta component.Meta `yaml:"meta,omitempty"`
}

// OptionsSpec overrides individual bunch options.
type OptionsSpec struct {
	Errors         *bool `yaml:"errors,omitempty"`
	UniqueKey      *bool `yaml:"unique_key,omitempty"`
	ReplaceIndex   *bool `yaml:"replace_index,omitempty"`
	InheritOwner   *bool `yaml:"inherit_owner,omitempty"`
	VirtualContext *bool `yaml:"virtual_context,omitempty"`
}

type BunchSpec struct {
	Key     string         `yaml:"key,omitempty"`
	Scope   string         `yaml:"scope,omitempty"`
	Owner   string         `yaml:"owner,omitempty"`
	Options OptionsSpec    `yaml:"options,omitempty"`
	Meta    component.Meta `yaml:"meta,omitempty"`
	Items   []ItemSpec     `yaml:"items,omitempty"`
}

// ItemSpec declares a new element, or with Ref reuses an element declared
// earlier in the document.
type ItemSpec struct {
	Key   string         `yaml:"key,omitempty"`
	Ref   string         `yaml:"ref,omitempty"`
	Owner string         `yaml:"owner,omitempty"`
	Meta  component.Meta `yaml:"meta,omitempty"`
}

// Decode errors.
var (
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrUnknownRef       = errors.New("unknown element ref")
	ErrDuplicateElement = errors.New("element declared twice")
	ErrDuplicatePlayer  = errors.New("player declared twice")
	ErrInvalidItem      = errors.New("invalid item")
)

// Decode parses a fixture document. Unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validate checks references within the document before anything is built.
func (d *Document) validate() error {
	players := make(map[string]bool, len(d.Players))
	for i, p := range d.Players {
		if p.Key == "" {
			return fmt.Errorf("player %d: key is required", i)
		}
		if players[p.Key] {
			return fmt.Errorf("player %q: %w", p.Key, ErrDuplicatePlayer)
		}
		players[p.Key] = true
	}

	declared := make(map[string]bool)
	for i, b := range d.Bunches {
		name := b.Key
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if b.Owner != "" && !players[b.Owner] {
			return fmt.Errorf("bunch %s owner %q: %w", name, b.Owner, ErrUnknownPlayer)
		}
		for j, it := range b.Items {
			switch {
			case it.Ref != "" && (it.Key != "" || it.Owner != "" || len(it.Meta) > 0):
				return fmt.Errorf("bunch %s item %d: %w: ref cannot be combined with key, owner or meta", name, j, ErrInvalidItem)
			case it.Ref != "":
				if !declared[it.Ref] {
					return fmt.Errorf("bunch %s item %d ref %q: %w", name, j, it.Ref, ErrUnknownRef)
				}
			case it.Key == "":
				return fmt.Errorf("bunch %s item %d: %w: key or ref is required", name, j, ErrInvalidItem)
			default:
				if declared[it.Key] {
					return fmt.Errorf("bunch %s item %q: %w", name, it.Key, ErrDuplicateElement)
				}
				declared[it.Key] = true
				if it.Owner != "" && !players[it.Owner] {
					return fmt.Errorf("bunch %s item %q owner %q: %w", name, it.Key, it.Owner, ErrUnknownPlayer)
				}
			}
		}
	}
	return nil
}

// apply layers the set flags over base.
func (o OptionsSpec) apply(base component.Options) component.Options {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.Errors, o.Errors)
	set(&base.UniqueKey, o.UniqueKey)
	set(&base.ReplaceIndex, o.ReplaceIndex)
	set(&base.InheritOwner, o.InheritOwner)
	set(&base.VirtualContext, o.VirtualContext)
	return base
}
