package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cardkit/internal/cachemanager"
	"github.com/zjrosen/cardkit/internal/fixture"
	"github.com/zjrosen/cardkit/internal/log"
	"github.com/zjrosen/cardkit/internal/presentation"
	"github.com/zjrosen/cardkit/internal/tracing"
	"github.com/zjrosen/cardkit/internal/watcher"
)

var shellWatch bool

const shellHelp = `commands:
  find <target> <query>   query "registry", "library" or a bunch key
  show <target>           print "registry", "library" or a bunch
  fields [target]         list the query fields of "registry" or a bunch
  scopes                  list scopes with their bunch keys
  errors                  list errors recorded on the manager
  help                    show this help
  quit                    leave the shell
`

var shellCmd = &cobra.Command{
	Use:   "shell FILE",
	Short: "Query a loaded fixture interactively",
	Long: `Load a fixture once and read commands from standard input, one per line.
Parsed queries are cached for query_cache_ttl. With --watch the fixture is
reloaded before the next command whenever the file changes, and the lines
that changed in the table outline are printed.

` + shellHelp,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		formatter, err := newFormatter(cmd, "")
		if err != nil {
			return err
		}
		sh := &shell{
			table:     table,
			formatter: formatter,
			queries:   cachemanager.NewQueryCache(cfg.QueryCacheTTL),
			out:       cmd.OutOrStdout(),
		}
		if shellWatch {
			w, err := watcher.New(watcher.DefaultConfig(args[0]))
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			if sh.changes, err = w.Start(); err != nil {
				return err
			}
			sh.reload = func(ctx context.Context) (*fixture.Table, error) { return loadTable(ctx, args[0]) }
		}
		return sh.run(cmd.Context(), cmd.InOrStdin())
	},
}

type shell struct {
	table     *fixture.Table
	formatter *presentation.Formatter
	queries   *cachemanager.QueryCache
	out       io.Writer

	changes <-chan struct{}
	reload  func(ctx context.Context) (*fixture.Table, error)
}

// run reads commands until quit or end of input. Command errors are printed
// and do not end the session.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		s.refresh(ctx)
		if line != "" {
			if err := s.exec(ctx, line); err != nil {
				log.Debug(log.CatCLI, "Shell command failed", "line", line, "error", err)
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
		s.prompt()
	}
	return scanner.Err()
}

// refresh swaps in a freshly loaded table when the fixture changed and prints
// the outline diff. A broken fixture keeps the previous table.
func (s *shell) refresh(ctx context.Context) {
	select {
	case <-s.changes:
	default:
		return
	}
	table, err := s.reload(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "reload failed: %v\n", err)
		return
	}
	diff := presentation.DiffLines(presentation.Outline(s.table.Manager), presentation.Outline(table.Manager))
	trace.SpanFromContext(ctx).AddEvent(tracing.EventReloaded,
		trace.WithAttributes(attribute.Int("diff.lines", len(diff))))
	s.table = table
	fmt.Fprintln(s.out, "reloaded")
	for _, line := range diff {
		fmt.Fprintln(s.out, line)
	}
}

func (s *shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

func (s *shell) exec(ctx context.Context, line string) (err error) {
	name, rest := cutWord(line)
	ctx, span := tracer().Start(ctx, tracing.SpanPrefixShell+name,
		trace.WithAttributes(attribute.String(tracing.AttrShellLine, line)))
	defer func() { tracing.Finish(span, err) }()

	switch name {
	case "find":
		target, text := cutWord(rest)
		if target == "" || text == "" {
			return fmt.Errorf("usage: find <target> <query>")
		}
		q, err := s.queries.Parse(ctx, text)
		if err != nil {
			return err
		}
		return runQuery(ctx, s.formatter, s.table, target, q)
	case "show":
		return s.show(rest)
	case "fields":
		return s.fields(rest)
	case "scopes":
		return s.scopes()
	case "errors":
		return s.formatter.FormatErrors(presentation.FromErrors(s.table.Manager.Errors()))
	case "help":
		fmt.Fprint(s.out, shellHelp)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
}

func (s *shell) show(target string) error {
	m := s.table.Manager
	if target == "" || target == targetRegistry {
		return s.formatter.FormatTable(presentation.FromManager(m))
	}
	b, ok := s.table.Bunch(target)
	if !ok {
		return fmt.Errorf("no bunch with key %q", target)
	}
	return s.formatter.FormatObjects(b.Object())
}

func (s *shell) fields(target string) error {
	fields := s.table.Manager.QueryFields()
	if target != "" && target != targetRegistry {
		b, ok := s.table.Bunch(target)
		if !ok {
			return fmt.Errorf("no bunch with key %q", target)
		}
		fields = b.QueryFields()
	}
	for _, f := range fields {
		fmt.Fprintln(s.out, f)
	}
	return nil
}

func (s *shell) scopes() error {
	m := s.table.Manager
	for _, scope := range m.Scopes() {
		var keys []string
		for _, b := range m.GetAll(scope) {
			keys = append(keys, b.Key())
		}
		fmt.Fprintf(s.out, "%s: %s\n", scope, strings.Join(keys, ", "))
	}
	return nil
}

// cutWord splits off the first whitespace-delimited word.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func init() {
	shellCmd.Flags().BoolVarP(&shellWatch, "watch", "w", false, "Reload the fixture when the file changes")
	rootCmd.AddCommand(shellCmd)
}
