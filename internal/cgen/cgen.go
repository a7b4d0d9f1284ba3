// Package cgen walks a generated IR module and emits one C99
// translation unit, per spec.md §4.6. It never touches the filesystem
// (it writes through any io.Writer) and never invokes a C compiler —
// both are the driver's job, out of core scope.
//
// Grounded on wut4/lang/ygen/emit.go's Emitter: a bufio.Writer-backed
// struct with one small method per output construct (Comment, Label,
// Instr1/2/3 there; Comment, line, block-bracketed statement helpers
// here). wut4 emits flat WUT-4 assembly lines; this emitter generalizes
// the same "one method per construct, Fprintf underneath" shape to
// nested, braced C statements, tracking an indent level wut4's flat
// assembly never needed.
package cgen

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/ir"
)

// Config carries the emitter knobs. EmitLineDirectives (off by
// default) is stored on the Emitter but not read: the emitter writes
// no `#line` directives whatever its value.
type Config struct {
	EmitLineDirectives bool
}

// Emitter renders one translation unit to out.
type Emitter struct {
	out    *bufio.Writer
	cfg    Config
	bag    *diag.Bag
	indent int

	tmpCount int

	errUnionBases map[string]bool // base C type name -> needed
	errorNames    map[string]bool
	usesSyscall   bool

	curRetType *ast.Type // enclosing function's declared return type, for wrapping return values into an err_union_<T> when needed
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer, cfg Config, bag *diag.Bag) *Emitter {
	return &Emitter{out: bufio.NewWriter(w), cfg: cfg, bag: bag, errUnionBases: make(map[string]bool), errorNames: make(map[string]bool)}
}

// Generate renders mod as a complete translation unit and flushes out.
func Generate(mod *ir.Module, w io.Writer, cfg Config, bag *diag.Bag) error {
	e := NewEmitter(w, cfg, bag)
	e.scan(mod)
	e.prelude()
	e.forwardDecls(mod)
	e.errUnionStructs()
	e.errorIDMacros()
	e.typeInfoStruct()
	if e.usesSyscall {
		e.syscallHelpers()
	}
	e.prototypes(mod)
	for _, d := range mod.Decls {
		if d.Kind == ir.KFuncDef && !d.IsExtern {
			e.funcDef(d)
		}
	}
	return e.out.Flush()
}

// line writes one indented, newline-terminated line.
func (e *Emitter) line(format string, args ...interface{}) {
	fmt.Fprint(e.out, strings.Repeat("    ", e.indent))
	fmt.Fprintf(e.out, format, args...)
	fmt.Fprintln(e.out)
}

// raw writes text with no indentation or trailing newline added beyond
// what format itself supplies.
func (e *Emitter) raw(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

// blank emits an empty line, matching wut4's Emitter.BlankLine.
func (e *Emitter) blank() {
	fmt.Fprintln(e.out)
}

// comment emits a `/* ... */` comment line.
func (e *Emitter) comment(format string, args ...interface{}) {
	e.line("/* %s */", fmt.Sprintf(format, args...))
}

func (e *Emitter) newTemp(prefix string) string {
	n := e.tmpCount
	e.tmpCount++
	return fmt.Sprintf("_uya_%s%d", prefix, n)
}

// scan walks every instruction in mod once to discover which
// error-union base types are referenced, which error.Name values are
// referenced, and whether @syscall appears, since the err_union_<T>
// struct set, the ERR_<Name> macros, and the uya_syscallN helpers are
// only emitted when something in the module actually needs them.
func (e *Emitter) scan(mod *ir.Module) {
	var walk func(i *ir.Instr)
	walk = func(i *ir.Instr) {
		if i == nil {
			return
		}
		if i.Type != nil {
			e.noteType(i.Type)
		}
		if i.Kind == ir.KCall && strings.HasPrefix(i.Callee, "@syscall") {
			e.usesSyscall = true
		}
		if i.Kind == ir.KErrorValue {
			e.errorNames[i.ErrorName] = true
		}
		if i.Kind == ir.KErrorUnion || i.Kind == ir.KTryCatch {
			e.noteType(i.Type)
		}
		for _, c := range []*ir.Instr{i.Init, i.Dest, i.Src, i.Left, i.Right, i.Operand, i.Value, i.Stmt, i.Cond, i.Iterable, i.X, i.Base, i.Index, i.TryBody, i.Inner} {
			walk(c)
		}
		for _, group := range [][]*ir.Instr{i.Args, i.Then, i.Else, i.Body, i.Stmts, i.FieldValues, i.CatchBody, i.Slots, i.FnBody} {
			for _, c := range group {
				walk(c)
			}
		}
	}
	for _, d := range mod.Decls {
		if d.Kind == ir.KFuncDef {
			for _, p := range d.Params {
				e.noteType(p.Type)
			}
			e.noteType(d.ReturnType)
		}
		if d.Kind == ir.KStructDecl {
			for _, f := range d.Fields {
				e.noteType(f.Type)
			}
		}
		walk(d)
	}
}

// isArithTryInner reports whether a KErrorUnion's Inner is a plain
// (non-wrapping, non-saturating) arithmetic op — the `try a + b` form
// the checker recognizes specially in checkUnaryExpr for an overflow
// check, as opposed to the propagating-call form (`try f()`) where
// Inner's own type is already an error union.
func isArithTryInner(inner *ir.Instr) bool {
	if inner == nil || inner.Kind != ir.KBinaryOp {
		return false
	}
	switch inner.Op {
	case "+", "-", "*":
		return true
	default:
		return false
	}
}

func (e *Emitter) noteType(t *ast.Type) {
	if t == nil {
		return
	}
	if t.Kind == ast.TypeErrorUnion {
		e.errUnionBases[cBaseName(t.Elem)] = true
	}
	e.noteType(t.Elem)
}

func (e *Emitter) sortedErrUnionBases() []string {
	out := make([]string, 0, len(e.errUnionBases))
	for k := range e.errUnionBases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Emitter) sortedErrorNames() []string {
	out := make([]string, 0, len(e.errorNames))
	for k := range e.errorNames {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
