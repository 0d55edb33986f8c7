package presentation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cardkit/internal/component"
)

func outlineTable(t *testing.T, queenRank int, extra ...string) *component.Manager {
	t.Helper()
	m := component.NewManager("table", []string{"team1"})
	alice := component.NewPlayer("alice")
	hand := component.NewBunch("hand")
	hand.SetOwner(alice)
	require.NoError(t, m.Add(hand, "team1"))

	king := component.NewElement("king")
	queen := component.NewElement("queen")
	queen.SetMeta("rank", queenRank)
	require.NoError(t, hand.AddMany([]*component.Element{king, queen}))
	for _, key := range extra {
		require.NoError(t, hand.Add(component.NewElement(key)))
	}
	return m
}

func TestOutline_StableAcrossLoads(t *testing.T) {
	a, b := outlineTable(t, 12), outlineTable(t, 12)

	require.Equal(t, "bunch hand [team1] owner=alice\n  king\n  queen map[rank:12]\n", Outline(a))
	require.Equal(t, Outline(a), Outline(b), "ids do not leak into the outline")
	require.Nil(t, DiffLines(Outline(a), Outline(b)))
}

func TestDiffLines(t *testing.T) {
	before := Outline(outlineTable(t, 12))
	after := Outline(outlineTable(t, 11, "jack"))

	require.Equal(t, []string{
		"- " + "  queen map[rank:12]",
		"+ " + "  queen map[rank:11]",
		"+ " + "  jack",
	}, DiffLines(before, after))
}
