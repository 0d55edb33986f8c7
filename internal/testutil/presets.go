package testutil

import (
	"fmt"

	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/fixture"
)

// Suits of the standard deck, in deal order.
var Suits = []string{"clubs", "diamonds", "hearts", "spades"}

// StandardDeck returns 52 card declarations keyed "<rank>-<suit>" with suit,
// rank and color metadata. Ranks run 1 (ace) to 13 (king).
func StandardDeck() []fixture.ItemSpec {
	items := make([]fixture.ItemSpec, 0, 52)
	for _, suit := range Suits {
		color := "black"
		if suit == "diamonds" || suit == "hearts" {
			color = "red"
		}
		for rank := 1; rank <= 13; rank++ {
			items = append(items, Item(fmt.Sprintf("%d-%s", rank, suit), component.Meta{
				"suit":  suit,
				"rank":  rank,
				"color": color,
			}))
		}
	}
	return items
}

// WithStandardDeck adds a unique-key "deck" bunch holding StandardDeck.
func (b *Builder) WithStandardDeck() *Builder {
	return b.WithBunch("deck", UniqueKey(), Items(StandardDeck()...))
}

// WithTwoTeams adds players alice and bob with a hand each in scopes team1 and
// team2. The builder's manager must declare both scopes. Its card keys overlap
// StandardDeck, so the two presets cannot share a builder.
//
// Structure:
//
//	team1: hand-alice (owner alice, inherit owner) [1-spades, 13-hearts]
//	team2: hand-bob   (owner bob,   inherit owner) [12-clubs]
//	virtual: faces -> 13-hearts, 12-clubs
func (b *Builder) WithTwoTeams() *Builder {
	return b.
		WithPlayer("alice", component.Meta{"seat": 1}).
		WithPlayer("bob", component.Meta{"seat": 2}).
		WithBunch("hand-alice", Scope("team1"), Owner("alice"), InheritOwner(),
			Items(
				Item("1-spades", component.Meta{"suit": "spades", "rank": 1}),
				Item("13-hearts", component.Meta{"suit": "hearts", "rank": 13, "face": true}),
			)).
		WithBunch("hand-bob", Scope("team2"), Owner("bob"), InheritOwner(),
			Items(Item("12-clubs", component.Meta{"suit": "clubs", "rank": 12, "face": true}))).
		WithBunch("faces", Virtual(), Refs("13-hearts", "12-clubs"))
}
