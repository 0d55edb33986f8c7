package component

// Options is the configuration of a component, fixed at construction.
// Operations that accept per-call overrides merge them into a copy.
type Options struct {
	// Errors records recoverable errors in the sink instead of returning them.
	// Only the sink of record (the outermost ancestor) consults it.
	Errors bool
	// UniqueKey rejects a second item sharing an existing item's key.
	UniqueKey bool
	// ReplaceIndex overwrites the occupied slot instead of shifting.
	ReplaceIndex bool
	// InheritOwner forces added items to take the bunch's owner, and
	// propagates owner changes on the bunch to its items.
	InheritOwner bool
	// VirtualContext keeps a reference view: items keep their context.
	VirtualContext bool
	// LibraryDeletion evicts library entries that no registered bunch holds
	// anymore. Manager only.
	LibraryDeletion bool
}

// Option overrides one Options field.
type Option func(*Options)

// With returns a copy of o with opts applied.
func (o Options) With(opts ...Option) Options {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func WithErrors(on bool) Option          { return func(o *Options) { o.Errors = on } }
func WithUniqueKey(on bool) Option       { return func(o *Options) { o.UniqueKey = on } }
func WithReplaceIndex(on bool) Option    { return func(o *Options) { o.ReplaceIndex = on } }
func WithInheritOwner(on bool) Option    { return func(o *Options) { o.InheritOwner = on } }
func WithVirtualContext(on bool) Option  { return func(o *Options) { o.VirtualContext = on } }
func WithLibraryDeletion(on bool) Option { return func(o *Options) { o.LibraryDeletion = on } }

// WithOptions replaces every field with those of src.
func WithOptions(src Options) Option { return func(o *Options) { *o = src } }
