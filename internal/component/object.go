package component

import (
	"fmt"
	"strings"
)

// Object is the structural form of a physical component. Meta is present only
// when non-empty, Owner only when set, Items only (and always) on collections.
type Object struct {
	ID    string    `json:"id" yaml:"id"`
	Key   string    `json:"key" yaml:"key"`
	Type  Type      `json:"type" yaml:"type"`
	Meta  Meta      `json:"meta,omitempty" yaml:"meta,omitempty"`
	Owner string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Items *[]Object `json:"items,omitempty" yaml:"items,omitempty"`
}

func objectOf(w *WithMeta, owner *Player) Object {
	obj := Object{ID: w.ID(), Key: w.Key(), Type: w.Type()}
	if len(w.meta) > 0 {
		obj.Meta = w.meta.Clone()
	}
	if owner != nil {
		obj.Owner = owner.String()
	}
	return obj
}

// describe renders "Component <key> - Type: <Kind>[ - Owner: <ownerKey>][ - Items: <n>]".
// items < 0 omits the item count.
func describe(c Component, owner *Player, items int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Component %s - Type: %s", c.Key(), c.Type().Kind())
	if owner != nil {
		fmt.Fprintf(&b, " - Owner: %s", owner.Key())
	}
	if items >= 0 {
		fmt.Fprintf(&b, " - Items: %d", items)
	}
	return b.String()
}
