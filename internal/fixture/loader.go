package fixture

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/log"
	"github.com/zjrosen/cardkit/internal/tracing"
)

// Table is a loaded fixture.
type Table struct {
	Manager  *component.Manager
	Players  []*component.Player
	elements map[string]*component.Element
}

// Player returns the player declared with key.
func (t *Table) Player(key string) (*component.Player, bool) {
	for _, p := range t.Players {
		if p.Key() == key {
			return p, true
		}
	}
	return nil, false
}

// Element returns the element declared with key.
func (t *Table) Element(key string) (*component.Element, bool) {
	e, ok := t.elements[key]
	return e, ok
}

// Bunch returns the first registered bunch with key. The library is reachable
// by its reserved key.
func (t *Table) Bunch(key string) (*component.Bunch, bool) {
	if key == component.LibraryKey {
		return t.Manager.Library(), true
	}
	for _, b := range t.Manager.Items() {
		if b.Key() == key {
			return b, true
		}
	}
	return nil, false
}

// Loader builds tables with the given option defaults and fallback scopes.
type Loader struct {
	defaults component.Options
	scopes   []string
	tracer   trace.Tracer
}

func NewLoader(defaults component.Options, scopes []string) *Loader {
	return &Loader{defaults: defaults, scopes: scopes, tracer: noop.NewTracerProvider().Tracer("")}
}

// WithTracer records loading spans with tr.
func (l *Loader) WithTracer(tr trace.Tracer) *Loader {
	if tr != nil {
		l.tracer = tr
	}
	return l
}

// LoadFile decodes and builds the fixture at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (_ *Table, err error) {
	ctx, span := l.tracer.Start(ctx, tracing.SpanLoadFixture,
		trace.WithAttributes(attribute.String(tracing.AttrFixturePath, path)))
	defer func() { tracing.Finish(span, err) }()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Decode(f)
	if err != nil {
		log.ErrorErr(log.CatFixture, "Failed to decode fixture", err, "path", path)
		return nil, err
	}
	return l.Build(ctx, doc)
}

// Build creates the manager, players and bunches of doc in declaration order.
// Engine errors are returned in hard-fail mode; with the manager's Errors
// option they are recorded on the manager and loading continues.
func (l *Loader) Build(ctx context.Context, doc *Document) (_ *Table, err error) {
	_, span := l.tracer.Start(ctx, tracing.SpanBuildFixture,
		trace.WithAttributes(attribute.String(tracing.AttrManagerKey, doc.Manager.Key)))
	defer func() { tracing.Finish(span, err) }()

	mopts := l.defaults
	if doc.Manager.Errors != nil {
		mopts.Errors = *doc.Manager.Errors
	}
	if doc.Manager.LibraryDeletion != nil {
		mopts.LibraryDeletion = *doc.Manager.LibraryDeletion
	}
	scopes := doc.Manager.Scopes
	if len(scopes) == 0 {
		scopes = l.scopes
	}

	m := component.NewManager(doc.Manager.Key, scopes, component.WithOptions(mopts))
	m.MergeMeta(doc.Manager.Meta)
	t := &Table{Manager: m, elements: make(map[string]*component.Element)}

	for _, ps := range doc.Players {
		p := component.NewPlayer(ps.Key)
		p.MergeMeta(ps.Meta)
		t.Players = append(t.Players, p)
	}

	for _, bs := range doc.Bunches {
		if err := l.buildBunch(t, bs); err != nil {
			return nil, err
		}
		span.AddEvent(tracing.EventBunchBuilt, trace.WithAttributes(attribute.String(tracing.AttrBunchKey, bs.Key)))
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrBunchCount, m.Len()),
		attribute.Int(tracing.AttrElementCount, m.Library().Len()),
		attribute.Int(tracing.AttrErrorCount, len(m.Errors())),
	)

	log.Info(log.CatFixture, "Fixture loaded",
		"manager", m.Key(), "players", len(t.Players), "bunches", m.Len(),
		"elements", m.Library().Len(), "errors", len(m.Errors()))
	return t, nil
}

func (l *Loader) buildBunch(t *Table, bs BunchSpec) error {
	opts := bs.Options.apply(l.defaults)
	b := component.NewBunch(bs.Key, component.WithOptions(opts))
	b.MergeMeta(bs.Meta)
	if bs.Owner != "" {
		owner, _ := t.Player(bs.Owner)
		b.SetOwner(owner)
	}

	if err := t.Manager.Add(b, bs.Scope); err != nil {
		return fmt.Errorf("bunch %q: %w", b.Key(), err)
	}

	items := make([]*component.Element, 0, len(bs.Items))
	for _, it := range bs.Items {
		if it.Ref != "" {
			items = append(items, t.elements[it.Ref])
			continue
		}
		e := component.NewElement(it.Key)
		e.MergeMeta(it.Meta)
		if it.Owner != "" {
			owner, _ := t.Player(it.Owner)
			e.SetOwner(owner)
		}
		t.elements[it.Key] = e
		items = append(items, e)
	}

	if err := b.AddMany(items); err != nil {
		return fmt.Errorf("bunch %q: %w", b.Key(), err)
	}
	log.Debug(log.CatFixture, "Bunch built", "bunch", b.Key(), "items", b.Len())
	return nil
}
