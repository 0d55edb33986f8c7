package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanLoadFixture  = "fixture.load"
	SpanBuildFixture = "fixture.build"
	SpanQuery        = "query.run"
	SpanPrefixShell  = "shell."
)

// Span attribute keys.
const (
	AttrFixturePath  = "fixture.path"
	AttrManagerKey   = "manager.key"
	AttrBunchKey     = "bunch.key"
	AttrBunchCount   = "fixture.bunches"
	AttrElementCount = "fixture.elements"
	AttrErrorCount   = "fixture.errors"
	AttrQueryTarget  = "query.target"
	AttrQueryFields  = "query.fields"
	AttrMatchCount   = "query.matches"
	AttrShellLine    = "shell.line"
)

// Event names.
const (
	EventBunchBuilt = "bunch.built"
	EventReloaded   = "fixture.reloaded"
)

// Finish sets the span status from err and ends the span.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
