package jsongram

import "github.com/reoring/jsongram/internal/gbnf"

// KeyPolicy decides which key orders and multiplicities an object rule admits.
type KeyPolicy = gbnf.KeyPolicy

const (
	// KeysRelaxed admits any subset of the declared keys, in any order, with
	// repeats. Required keys are not enforced by the grammar.
	KeysRelaxed = gbnf.KeysRelaxed
	// KeysDeclared admits required keys in recorded order followed by
	// optional keys in recorded order; each at most once.
	KeysDeclared = gbnf.KeysDeclared
)

// DefaultMaxDepth bounds nesting during inference when CompileOpt.MaxDepth is unset.
const DefaultMaxDepth = 32

// CompileOpt bundles compilation options.
type CompileOpt struct {
	// Name is the hint used for rules derived from the top-level value.
	// Empty means the lowercased Go type name, or "root" if there is none.
	Name string
	// RootRule is the entry rule name. Empty means "root".
	RootRule string
	// Separator joins the parts of generated rule names: "_" (default) or
	// "-". llama.cpp only accepts [A-Za-z0-9-] in rule names, so grammars
	// meant for llama.cpp need "-".
	Separator string
	Keys      KeyPolicy
	MaxDepth  int // <= 0 means DefaultMaxDepth
}

func (o CompileOpt) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
