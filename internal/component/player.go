package component

// Player is an actor that can own other components. A player may be the owner
// of many components at once; none of them hold it in custody.
type Player struct {
	Physical
}

// NewPlayer creates a detached player.
func NewPlayer(key string, opts ...Option) *Player {
	p := &Player{Physical: newPhysical(TypePlayer, key, Options{}.With(opts...))}
	p.bind(p)
	return p
}

// Object returns the structural form of the player.
func (p *Player) Object() Object {
	return objectOf(&p.WithMeta, p.owner)
}

func (p *Player) String() string {
	return describe(p, p.owner, -1)
}
