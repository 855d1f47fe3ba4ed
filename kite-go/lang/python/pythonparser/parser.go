package pythonparser

import (
	"fmt"
	"go/token"
	"sync"

	"github.com/kiteco/go-tree-sitter/python"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"go.uber.org/zap"

	sitter "github.com/kiteco/go-tree-sitter"
)

// ErrorMode determines how the parser behaves when
// a syntax error is encountered.
type ErrorMode int

const (
	// FailFast causes Parse to return a nil module and an error if the
	// source contains any syntax error.
	FailFast ErrorMode = iota

	// Recover keeps every statement that could be converted and replaces the
	// rest with BadStmt nodes. The returned error lists the syntax errors.
	Recover
)

// Options represents configuration for parsing
type Options struct {
	ErrorMode ErrorMode // ErrorMode determines what happens when there is a syntax error
	NoCache   bool      // NoCache bypasses the parse cache
}

// SyntaxError records the location of a region tree-sitter could not parse
type SyntaxError struct {
	Pos  token.Pos
	Line int
	Msg  string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// tree-sitter parsers are not safe for concurrent use, so parsers are pooled
var parsers = sync.Pool{
	New: func() interface{} {
		p := sitter.NewParser()
		p.SetLanguage(python.GetLanguage())
		return p
	},
}

// Parse builds a syntax tree for src. In Recover mode the module is returned
// alongside an errors.Errors value listing the syntax errors, if any.
func Parse(ctx kitectx.Context, src []byte, opts Options) (*pythonast.Module, error) {
	ctx.CheckAbort()

	if !opts.NoCache {
		if entry, ok := getCachedParse(src, opts.ErrorMode); ok {
			return entry.mod, entry.err
		}
	}

	mod, err := parse(ctx, src, opts)
	if !opts.NoCache {
		cacheParse(src, opts.ErrorMode, mod, err)
	}
	return mod, err
}

func parse(ctx kitectx.Context, src []byte, opts Options) (*pythonast.Module, error) {
	parser := parsers.Get().(*sitter.Parser)
	defer parsers.Put(parser)

	tree := parser.Parse(src)
	defer tree.Close()

	c := &converter{
		ctx:   ctx,
		src:   src,
		lines: pythonast.NewLineMap(src),
	}
	mod := c.module(tree.RootNode())

	if c.errs != nil && c.errs.Len() > 0 {
		ctx.Logger.Debug("syntax errors", zap.Int("count", c.errs.Len()))
		if opts.ErrorMode == FailFast {
			return nil, c.errs
		}
		return mod, c.errs
	}
	return mod, nil
}
