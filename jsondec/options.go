package jsondec

import "github.com/reoring/jsongram"

// DuplicatePolicy controls how repeated object keys are treated.
type DuplicatePolicy int

const (
	DuplicatesError  DuplicatePolicy = iota // Reject the document.
	DuplicatesWarn                          // Report through the warning callback; the last value wins.
	DuplicatesIgnore                        // The last value wins silently.
)

// DefaultMaxDepth bounds container nesting unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 512

// Options bundles decoding options.
type Options struct {
	Duplicates DuplicatePolicy
	MaxDepth   int   // <= 0 disables the check
	MaxBytes   int64 // <= 0 disables the check
	OnWarning  func(jsongram.Issue)
}

// Option mutates Options.
type Option func(*Options)

// WithDuplicates sets the duplicate key policy.
func WithDuplicates(p DuplicatePolicy) Option { return func(o *Options) { o.Duplicates = p } }

// WithMaxDepth bounds container nesting.
func WithMaxDepth(n int) Option { return func(o *Options) { o.MaxDepth = n } }

// WithMaxBytes bounds the input size.
func WithMaxBytes(n int64) Option { return func(o *Options) { o.MaxBytes = n } }

// WithWarnings registers a callback for non-fatal issues.
func WithWarnings(fn func(jsongram.Issue)) Option { return func(o *Options) { o.OnWarning = fn } }

func newOptions(opts []Option) Options {
	o := Options{MaxDepth: DefaultMaxDepth}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
