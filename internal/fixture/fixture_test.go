package fixture

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/finder"
)

func loadString(t *testing.T, l *Loader, text string) (*Table, error) {
	t.Helper()
	doc, err := Decode(strings.NewReader(text))
	require.NoError(t, err)
	return l.Build(t.Context(), doc)
}

func keys[T interface{ Key() string }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Key())
	}
	return out
}

func TestLoadFile_Table(t *testing.T) {
	tbl, err := NewLoader(component.Options{}, nil).LoadFile(t.Context(), filepath.Join("testdata", "table.yaml"))
	require.NoError(t, err)
	m := tbl.Manager

	require.Equal(t, "table", m.Key())
	require.Equal(t, []string{"default", "virtual", "team1", "team2"}, m.Scopes())
	v, _ := m.GetMeta("round")
	require.Equal(t, 1, v)
	require.Equal(t, []string{"alice", "bob"}, keys(tbl.Players))

	require.Equal(t, []string{"deck", "hand", "spades"}, keys(m.Items()))
	require.Equal(t, []string{"ace", "two", "three", "king", "queen"}, keys(m.Library().Items()))

	deck, ok := tbl.Bunch("deck")
	require.True(t, ok)
	require.True(t, deck.Options().UniqueKey)
	require.Equal(t, []string{"ace", "two", "three"}, keys(deck.Items()))

	hand, _ := tbl.Bunch("hand")
	scope, err := m.GetScope(hand.ID())
	require.NoError(t, err)
	require.Equal(t, "team1", scope)
	alice, _ := tbl.Player("alice")
	require.Same(t, alice, hand.Owner())
	queen, _ := tbl.Element("queen")
	require.Same(t, alice, queen.Owner(), "inherit_owner overrides the declared owner")

	spades, _ := tbl.Bunch("spades")
	scope, _ = m.GetScope(spades.ID())
	require.Equal(t, component.ScopeVirtual, scope)
	ace, _ := tbl.Element("ace")
	require.Same(t, ace, spades.Items()[0], "refs share the element")
	require.Same(t, deck, ace.Context(), "virtual bunches do not take custody")

	lib, ok := tbl.Bunch(component.LibraryKey)
	require.True(t, ok)
	require.Same(t, m.Library(), lib)
}

func TestLoadFile_QueryAfterLoad(t *testing.T) {
	tbl, err := NewLoader(component.Options{}, nil).LoadFile(t.Context(), filepath.Join("testdata", "table.yaml"))
	require.NoError(t, err)

	q, err := finder.Parse(`{meta: {suit: {$eq: spades}}}`)
	require.NoError(t, err)
	require.Equal(t, []string{"ace", "three"}, keys(tbl.Manager.Library().Find(q)))

	q, err = finder.Parse(`{meta: {tags: {$contains: face}}, ownerKey: {$eq: alice}}`)
	require.NoError(t, err)
	hand, _ := tbl.Bunch("hand")
	require.Equal(t, []string{"king", "queen"}, keys(hand.Find(q)))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := NewLoader(component.Options{}, nil).LoadFile(t.Context(), filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening fixture")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
		msg  string
	}{
		{name: "unknown key", text: "manager: {key: t, colour: red}", msg: "parsing fixture"},
		{name: "bad yaml", text: "bunches: [", msg: "parsing fixture"},
		{name: "player without key", text: "players: [{meta: {a: 1}}]", msg: "key is required"},
		{name: "duplicate player", text: "players: [{key: a}, {key: a}]", want: ErrDuplicatePlayer},
		{name: "unknown bunch owner", text: "bunches: [{key: b, owner: zed}]", want: ErrUnknownPlayer},
		{name: "unknown item owner", text: "bunches: [{key: b, items: [{key: x, owner: zed}]}]", want: ErrUnknownPlayer},
		{name: "forward ref", text: "bunches: [{key: b, items: [{ref: x}, {key: x}]}]", want: ErrUnknownRef},
		{name: "ref with meta", text: "bunches: [{key: b, items: [{key: x}, {ref: x, meta: {a: 1}}]}]", want: ErrInvalidItem},
		{name: "empty item", text: "bunches: [{key: b, items: [{}]}]", want: ErrInvalidItem},
		{name: "duplicate element", text: "bunches: [{key: a, items: [{key: x}]}, {key: b, items: [{key: x}]}]", want: ErrDuplicateElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text))
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			if tt.msg != "" {
				require.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	doc, err := Decode(strings.NewReader(""))
	require.NoError(t, err)

	tbl, err := NewLoader(component.Options{}, []string{"team1"}).Build(t.Context(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{"default", "virtual", "team1"}, tbl.Manager.Scopes(), "fallback scopes apply")
	require.Zero(t, tbl.Manager.Len())
}

func TestBuild_HardFailStops(t *testing.T) {
	text := `
manager: {key: t}
bunches:
  - key: a
    scope: nowhere
  - key: b
`
	_, err := loadString(t, NewLoader(component.Options{}, nil), text)

	require.ErrorIs(t, err, component.ErrInvalidScope)
	require.Contains(t, err.Error(), `bunch "a"`)
}

func TestBuild_SoftFailRecords(t *testing.T) {
	text := `
manager: {key: t, errors: true}
bunches:
  - key: a
    scope: nowhere
  - key: b
    options: {unique_key: true}
    items:
      - {key: x}
      - {key: y}
  - key: c
    options: {unique_key: true}
    items:
      - {ref: x}
      - {ref: x}
`
	tbl, err := loadString(t, NewLoader(component.Options{}, nil), text)
	require.NoError(t, err)
	m := tbl.Manager

	require.Equal(t, []string{"b", "c"}, keys(m.Items()))
	require.Len(t, m.Errors(), 2)
	require.Equal(t, component.CodeInvalidScope, m.Errors()[0].Code)
	require.Equal(t, component.CodeIDConflict, m.Errors()[1].Code)

	c, _ := tbl.Bunch("c")
	require.Equal(t, []string{"x"}, keys(c.Items()))
	b, _ := tbl.Bunch("b")
	require.Equal(t, []string{"y"}, keys(b.Items()), "x moved to c")
}

func TestBuild_DefaultsApply(t *testing.T) {
	defaults := component.Options{UniqueKey: true, Errors: true}
	text := `
bunches:
  - key: a
    items: [{key: x}]
  - key: b
    options: {unique_key: false}
`
	tbl, err := loadString(t, NewLoader(defaults, nil), text)
	require.NoError(t, err)

	require.True(t, tbl.Manager.Options().Errors)
	a, _ := tbl.Bunch("a")
	require.True(t, a.Options().UniqueKey)
	b, _ := tbl.Bunch("b")
	require.False(t, b.Options().UniqueKey)
	require.NoError(t, b.Add(component.NewElement("z")))
	require.NoError(t, b.Add(component.NewElement("z")))
	require.Equal(t, 2, b.Len())
}

func TestBuild_LibraryDeletion(t *testing.T) {
	text := `
manager: {key: t, library_deletion: true}
bunches:
  - key: a
    items: [{key: x}, {key: y}]
`
	tbl, err := loadString(t, NewLoader(component.Options{}, nil), text)
	require.NoError(t, err)

	a, _ := tbl.Bunch("a")
	a.RemoveAt(0)
	require.Equal(t, []string{"y"}, keys(tbl.Manager.Library().Items()))
}

func TestTable_Lookups(t *testing.T) {
	tbl, err := loadString(t, NewLoader(component.Options{}, nil), "players: [{key: p}]")
	require.NoError(t, err)

	_, ok := tbl.Bunch("missing")
	require.False(t, ok)
	_, ok = tbl.Element("missing")
	require.False(t, ok)
	_, ok = tbl.Player("missing")
	require.False(t, ok)
	p, ok := tbl.Player("p")
	require.True(t, ok)
	require.Equal(t, component.TypePlayer, p.Type())
}
