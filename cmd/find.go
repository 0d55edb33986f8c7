package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cardkit/internal/cachemanager"
	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/finder"
	"github.com/zjrosen/cardkit/internal/fixture"
	"github.com/zjrosen/cardkit/internal/log"
	"github.com/zjrosen/cardkit/internal/presentation"
	"github.com/zjrosen/cardkit/internal/tracing"
)

// Query targets that are not bunch keys.
const (
	targetRegistry = "registry"
	targetLibrary  = component.LibraryKey
)

var (
	findQuery    string
	findBunch    string
	findRegistry bool
	findLibrary  bool
	findFormat   string
)

var findCmd = &cobra.Command{
	Use:   "find FILE",
	Short: "Run a query against a fixture",
	Long: `Run a structured query against the library (default), one bunch, or the
registry of bunches. The query is a JSON or YAML mapping of field to operators.

Element fields: id, key, type, owner, ownerKey, index, meta
Bunch fields:   id, key, type, owner, ownerKey, scope, size, meta
Operators:      $eq $ne $in $nin $gte $lte $contains $ncontains

Examples:
  # Spades in the library
  cardkit find table.yaml --query '{meta: {suit: {$eq: spades}}}'

  # First two cards of the deck
  cardkit find table.yaml --bunch deck --query '{index: {$lte: 1}}'

  # Bunches of team1 that are not empty
  cardkit find table.yaml --registry --query '{scope: {$eq: team1}, size: {$gte: 1}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		q, err := cachemanager.NewQueryCache(cfg.QueryCacheTTL).Parse(cmd.Context(), findQuery)
		if err != nil {
			return err
		}
		formatter, err := newFormatter(cmd, findFormat)
		if err != nil {
			return err
		}

		target := targetLibrary
		switch {
		case findRegistry:
			target = targetRegistry
		case findBunch != "":
			target = findBunch
		}
		return runQuery(cmd.Context(), formatter, table, target, q)
	},
}

// runQuery evaluates q against target and writes the matches.
func runQuery(ctx context.Context, f *presentation.Formatter, table *fixture.Table, target string, q finder.Query) (err error) {
	_, span := tracer().Start(ctx, tracing.SpanQuery,
		trace.WithAttributes(
			attribute.String(tracing.AttrQueryTarget, target),
			attribute.StringSlice(tracing.AttrQueryFields, queryFieldNames(q)),
		))
	defer func() { tracing.Finish(span, err) }()

	if target == targetRegistry {
		warnUnknownFields(span, q, table.Manager.QueryFields())
		found := table.Manager.Find(q)
		span.SetAttributes(attribute.Int(tracing.AttrMatchCount, len(found)))
		log.Debug(log.CatCLI, "Registry query", "matches", len(found))
		return f.FormatBunches(presentation.FromBunches(table.Manager, found))
	}
	b, ok := table.Bunch(target)
	if !ok {
		return fmt.Errorf("no bunch with key %q", target)
	}
	warnUnknownFields(span, q, b.QueryFields())
	found := b.Find(q)
	span.SetAttributes(attribute.Int(tracing.AttrMatchCount, len(found)))
	log.Debug(log.CatCLI, "Bunch query", "bunch", b.Key(), "matches", len(found))
	return f.FormatObjects(presentation.FromElements(found))
}

func queryFieldNames(q finder.Query) []string {
	names := make([]string, 0, len(q))
	for field := range q {
		names = append(names, string(field))
	}
	slices.Sort(names)
	return names
}

// unknownFields returns the fields of q the target cannot filter on. They
// are ignored by Find.
func unknownFields(q finder.Query, known []finder.Field) []string {
	var unknown []string
	for _, name := range queryFieldNames(q) {
		if !slices.Contains(known, finder.Field(name)) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func warnUnknownFields(span trace.Span, q finder.Query, known []finder.Field) {
	unknown := unknownFields(q, known)
	if len(unknown) == 0 {
		return
	}
	log.Warn(log.CatCLI, "Query fields ignored", "fields", unknown)
	span.AddEvent("query.unknown_fields", trace.WithAttributes(attribute.StringSlice("fields", unknown)))
}

func init() {
	findCmd.Flags().StringVarP(&findQuery, "query", "q", "", "Query as JSON or YAML (required)")
	findCmd.Flags().StringVarP(&findBunch, "bunch", "b", "", "Query the items of the bunch with this key")
	findCmd.Flags().BoolVar(&findRegistry, "registry", false, "Query the registered bunches")
	findCmd.Flags().BoolVar(&findLibrary, "library", false, "Query the library (default)")
	findCmd.Flags().StringVarP(&findFormat, "format", "f", "", "Output format: json or yaml (default from config)")
	_ = findCmd.MarkFlagRequired("query")
	findCmd.MarkFlagsMutuallyExclusive("bunch", "registry", "library")
	rootCmd.AddCommand(findCmd)
}
