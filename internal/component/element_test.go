package component

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElement_Meta(t *testing.T) {
	e := NewElement("ace")

	_, ok := e.GetMeta("suit")
	require.False(t, ok, "absent keys read as undefined")

	e.SetMeta("suit", "spades")
	e.SetMeta("ranks", []int{1, 14})
	e.MergeMeta(Meta{"face": false, "cost": nil})

	v, ok := e.GetMeta("suit")
	require.True(t, ok)
	require.Equal(t, "spades", v)
	require.Equal(t, Meta{"suit": "spades", "ranks": []int{1, 14}, "face": false, "cost": nil}, e.Meta())

	e.DeleteMeta("face")
	_, ok = e.GetMeta("face")
	require.False(t, ok)
}

func TestElement_MetaIsCopied(t *testing.T) {
	e := NewElement("ace")
	tags := []string{"red"}
	e.SetMeta("tags", tags)
	tags[0] = "black"

	snapshot := e.Meta()
	snapshot["tags"].([]string)[0] = "green"

	v, _ := e.GetMeta("tags")
	require.Equal(t, []string{"red"}, v)
}

func TestElement_Copy(t *testing.T) {
	alice := NewPlayer("alice")
	b := NewBunch("deck")
	e := NewElement("ace")
	e.SetMeta("tags", []any{"red"})
	e.SetOwner(alice)
	require.NoError(t, b.Add(e))

	c := e.Copy()

	require.NotEqual(t, e.ID(), c.ID())
	require.Equal(t, "ace", c.Key())
	require.Equal(t, e.Meta(), c.Meta())
	require.Nil(t, c.Context())
	require.Nil(t, c.Owner())

	c.SetMeta("tags", []any{"black"})
	v, _ := e.GetMeta("tags")
	require.Equal(t, []any{"red"}, v)
}

func TestElement_StringAndObject(t *testing.T) {
	alice := NewPlayer("alice")
	e := NewElement("ace")
	require.Equal(t, "Component ace - Type: Element", e.String())

	obj := e.Object()
	require.Equal(t, Object{ID: e.ID(), Key: "ace", Type: TypeElement}, obj)

	e.SetOwner(alice)
	e.SetMeta("rank", 1)
	require.Equal(t, "Component ace - Type: Element - Owner: alice", e.String())

	obj = e.Object()
	require.Equal(t, "Component alice - Type: Player", obj.Owner)
	require.Equal(t, Meta{"rank": 1}, obj.Meta)
	require.Nil(t, obj.Items)
}

func TestPlayer_OwnsManyComponents(t *testing.T) {
	alice := NewPlayer("alice")
	e1, e2 := NewElement("a"), NewElement("b")
	hand := NewBunch("hand")

	e1.SetOwner(alice)
	e2.SetOwner(alice)
	hand.SetOwner(alice)

	require.Same(t, alice, e1.Owner())
	require.Same(t, alice, e2.Owner())
	require.Same(t, alice, hand.Owner())

	e1.ClearOwner()
	require.Nil(t, e1.Owner())
	require.Same(t, alice, e2.Owner())
	require.Equal(t, "Component alice - Type: Player", alice.String())
	require.Equal(t, TypePlayer, alice.Object().Type)
}
