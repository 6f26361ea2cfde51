package parser

import (
	"fmt"
	"strings"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/lexer"
)

// Parse lexes and parses a whole source string, returning every
// accumulated syntax error (if any) joined with "; " into a single error
// value.
func Parse(src string) (*ast.Program, error) {
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return prog, nil
}

// ParseFragment parses src as a standalone statement list, for splicing a
// "#load" result back into the emitter (spec.md §4.2, §9).
func ParseFragment(src string) ([]ast.Statement, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return prog.Statements, nil
}
