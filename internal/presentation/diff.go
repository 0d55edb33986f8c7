package presentation

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/cardkit/internal/component"
)

// Outline renders a registry as one line per bunch and per item, keyed by
// component keys. Ids are left out so two loads of the same fixture render
// identically.
func Outline(m *component.Manager) string {
	var sb strings.Builder
	for _, b := range m.Items() {
		scope, _ := m.GetScope(b.ID())
		fmt.Fprintf(&sb, "bunch %s [%s]%s%s\n", b.Key(), scope, ownerSuffix(b.Owner()), metaSuffix(b.Meta()))
		for _, e := range b.Items() {
			fmt.Fprintf(&sb, "  %s%s%s\n", e.Key(), ownerSuffix(e.Owner()), metaSuffix(e.Meta()))
		}
	}
	return sb.String()
}

func ownerSuffix(p *component.Player) string {
	if p == nil {
		return ""
	}
	return " owner=" + p.Key()
}

// fmt prints maps with sorted keys, so the suffix is stable.
func metaSuffix(meta component.Meta) string {
	if len(meta) == 0 {
		return ""
	}
	return fmt.Sprintf(" %v", map[string]any(meta))
}

// DiffLines compares two outlines line by line and returns the changed lines
// prefixed with "- " or "+ ". Equal outlines yield nil.
func DiffLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}
