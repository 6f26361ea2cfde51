// Package evalrt implements the compile-time evaluator (spec.md §4.4): it
// assembles a self-contained scratch program from a dependency chain, the
// embedded serialiser, and an evaluation trailer; invokes the external
// `luajit` interpreter on it; and either splices the double-form result
// expression back into the emitted output or maps a failure back to the
// original source line.
//
// Grounded on spec.md §4.4 directly — the teacher's bytecode VM runs
// in-process and has no subprocess-delegation analogue. Process-invocation
// style (capture stderr, propagate stdout, wrap errors with %w) follows the
// teacher's general error-wrapping idiom seen throughout its
// cmd/dwscript/cmd/*.go command implementations. Standard library
// `os/exec`: no pack library wraps subprocess invocation, and `os/exec` is
// the idiomatic ecosystem choice for this — see DESIGN.md.
package evalrt

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/complua/complua/internal/ast"
	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/deps"
	"github.com/complua/complua/internal/diag"
	"github.com/complua/complua/internal/emitter"
	"github.com/complua/complua/internal/scratch"
	"github.com/complua/complua/internal/serializer"
	"github.com/complua/complua/internal/token"
)

// Evaluator implements emitter.Evaluator, delegating "real" compile-time
// execution to an external luajit subprocess (spec.md §4.4).
type Evaluator struct {
	Scratch     *scratch.Dir
	Interpreter string
	Log         *logrus.Logger
	Emit        *emitter.Emitter // self-referential: constructed with this Evaluator as its Eval collaborator
}

// New wires an Evaluator and the Emitter that stringifies AST subtrees on
// its behalf. parse is the fragment parser used for "#load" splicing.
func New(file string, sd *scratch.Dir, interpreter string, log *logrus.Logger, parse emitter.FragmentParser) *Evaluator {
	ev := &Evaluator{Scratch: sd, Interpreter: interpreter, Log: log}
	ev.Emit = emitter.New(file, ev, parse)
	return ev
}

// Eval implements emitter.Evaluator.Eval (spec.md §4.2 "#eval", §4.4).
func (ev *Evaluator) Eval(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error) {
	result, err := ev.run(ctx, file, expr, pos, "eval")
	if err != nil {
		return "", err
	}
	return result.spliceExpr(), nil
}

// EvalConstString implements emitter.Evaluator.EvalConstString (spec.md
// §4.2/§9 "#load"): expr must evaluate to a string; its decoded content is
// returned for re-parsing as a fragment.
func (ev *Evaluator) EvalConstString(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position) (string, error) {
	result, err := ev.run(ctx, file, expr, pos, "load")
	if err != nil {
		return "", err
	}
	s, ok := unquoteStringLiteral(strings.TrimSpace(result.text))
	if !ok {
		return "", diag.New(file, pos, "#load expression did not evaluate to a string")
	}
	return s, nil
}

// CheckCall implements emitter.Evaluator.CheckCall (spec.md §4.2
// "#checkcall"): runs "(function(params) body end)(args)" at compile time,
// purely for its side effect of erroring (or not).
func (ev *Evaluator) CheckCall(ctx *compctx.Context, file string, cc *ast.CheckCallStatement, args []ast.Expression, pos token.Position) error {
	call := &ast.CallExpression{
		Token: cc.Token,
		Callee: &ast.FunctionLiteral{
			Token:  cc.Token,
			Params: cc.Params,
			Vararg: cc.Vararg,
			Body:   cc.Body,
		},
		Args: args,
	}
	_, err := ev.run(ctx, file, call, pos, "checkcall")
	return err
}

type evalResult struct {
	dump []byte
	text string
}

// spliceExpr builds the double-form splice of spec.md §4.4 step 6: it
// loads the byte-dumped zero-argument result function and, if that
// succeeds, returns its call result; otherwise it falls back to the
// serialiser's textual reconstruction. Both reconstruction paths are
// present in the output, satisfying "restores the textual representation
// *and* loads the byte-dumped function" — preferring the byte-dump path
// because it alone preserves function identity.
func (r evalResult) spliceExpr() string {
	var sb strings.Builder
	sb.WriteString("(function()\n")
	sb.WriteString("local __complua_fn = load(string.char(")
	for i, b := range r.dump {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(b)))
	}
	sb.WriteString("))\n")
	sb.WriteString("if __complua_fn then\n")
	sb.WriteString("local __complua_ok, __complua_v = pcall(__complua_fn)\n")
	sb.WriteString("if __complua_ok then return __complua_v end\n")
	sb.WriteString("end\n")
	fmt.Fprintf(&sb, "return %s\n", r.text)
	sb.WriteString("end)()")
	return sb.String()
}

// run assembles the scratch program for expr, invokes the interpreter, and
// returns the decoded result artefacts. kind names the scratch-artefact
// family (spec.md §6: ".eval"/".load" and parallel per-invocation files).
func (ev *Evaluator) run(ctx *compctx.Context, file string, expr ast.Expression, pos token.Position, kind string) (evalResult, error) {
	chain := deps.Chain(expr, ctx)
	ev.Log.WithField("len", len(chain)).Debugf("replaying dependency chain for %s at %s", kind, pos)

	chainSrc, err := ev.Emit.RenderChain(ctx, chain)
	if err != nil {
		return evalResult{}, err
	}
	exprSrc, err := ev.Emit.RenderExpr(ctx, expr)
	if err != nil {
		return evalResult{}, err
	}

	artefacts := ev.Scratch.Next(kind)

	var program strings.Builder
	program.WriteString(serializer.Prelude())
	program.WriteString(chainSrc)
	program.WriteString("local function __complua_eval_fn()\n")
	fmt.Fprintf(&program, "return %s\n", exprSrc)
	program.WriteString("end\n")
	fmt.Fprintf(&program, "local __complua_dumpfile = io.open(%q, %q)\n", artefacts.Dump, "wb")
	program.WriteString("__complua_dumpfile:write(string.dump(__complua_eval_fn))\n")
	program.WriteString("__complua_dumpfile:close()\n")
	program.WriteString("local __complua_value = __complua_eval_fn()\n")
	fmt.Fprintf(&program, "local __complua_textfile = io.open(%q, %q)\n", artefacts.Text, "w")
	fmt.Fprintf(&program, "__complua_textfile:write(%s(__complua_value))\n", serializer.Global)
	program.WriteString("__complua_textfile:close()\n")

	programText := program.String()
	if err := os.WriteFile(artefacts.Program, []byte(programText), 0o644); err != nil {
		return evalResult{}, fmt.Errorf("evalrt: writing scratch program: %w", err)
	}

	ev.Log.Debugf("invoking %s on %s", ev.Interpreter, artefacts.Program)

	cmd := exec.Command(ev.Interpreter, artefacts.Program)
	cmd.Stdout = os.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if runErr != nil || stderr.Len() > 0 {
		scratchLines := strings.Split(programText, "\n")
		return evalResult{}, diag.FromInterpreterStderr(file, stderr.String(), scratchLines, pos)
	}

	dump, err := os.ReadFile(artefacts.Dump)
	if err != nil {
		return evalResult{}, fmt.Errorf("evalrt: reading result byte-dump: %w", err)
	}
	text, err := os.ReadFile(artefacts.Text)
	if err != nil {
		return evalResult{}, fmt.Errorf("evalrt: reading result text form: %w", err)
	}
	return evalResult{dump: dump, text: string(text)}, nil
}

// unquoteStringLiteral accepts the serialiser's own string output exactly
// (spec.md §9: "If the result is not a string literal reconstruction, the
// compiler aborts"): a double-quoted literal using the serialiser's escape
// scheme (internal/serializer: \\, \", and a fixed-width \DDD for control
// bytes). The width must be fixed at exactly 3 digits: a greedy variable-
// width read would misparse a control-byte escape immediately followed by a
// literal digit (e.g. newline then '1') as a single longer escape.
func unquoteStringLiteral(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	body := s[1 : len(s)-1]

	var out strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch {
		case body[i] == '\\':
			out.WriteByte('\\')
		case body[i] == '"':
			out.WriteByte('"')
		case body[i] >= '0' && body[i] <= '9':
			if i+3 > len(body) {
				return "", false
			}
			digits := body[i : i+3]
			n, err := strconv.Atoi(digits)
			if err != nil || n > 255 {
				return "", false
			}
			out.WriteByte(byte(n))
			i += 2
		default:
			return "", false
		}
	}
	return out.String(), true
}
