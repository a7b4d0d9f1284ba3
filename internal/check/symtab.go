// Package check implements the two-pass type checker spec.md §4.4
// describes: pass 1 populates the function table (rewriting `Self` in
// impl-block method signatures and renaming single-argument `drop`
// methods to `drop_T`); pass 2 walks every function body, infers
// expression types, and runs the six safety checks backed by
// internal/constraint's path-sensitive predicate sets.
//
// Grounded on wut4/lang/ysem/sym.go's scope-level symbol table (a
// map keyed by name, entries carrying a scope-level integer, innermost
// lookup winning on shadowed names) — wut4's own checker stops at type
// matching; the constraint propagation and safety-check layer here has
// no wut4 analog and is built directly from spec.md §4.4.
package check

import (
	"github.com/uya-lang/uyac/internal/ast"
)

// Symbol is one named binding: a variable, constant, or parameter.
// Fields mirror spec.md §3's Symbol tuple exactly.
type Symbol struct {
	Name             string
	Type             *ast.Type
	IsMut            bool
	IsConst          bool
	IsInitialized    bool
	IsModified       bool
	ScopeLevel       int
	Loc              ast.SourceLoc
	OriginalTypeName string // preserved for pointer params to named user types, per spec.md §4.5
	ArraySize        int64  // meaningful only when Type.Kind == ast.TypeArray and the size folded to a constant
	HasArraySize     bool
	ElementType      *ast.Type // meaningful only when Type.Kind == ast.TypeArray
	FromVarDecl      bool      // true only for locals/globals introduced by an *ast.VarDecl (params, loop binds, and match binds are excluded from the unmodified-var warning)
	ConstValue       *int64    // folded value, set only for VarConst symbols whose initializer constant-folds
}

// FuncSig is one function's table entry, per spec.md §3's Function
// signature tuple.
type FuncSig struct {
	Name       string
	ParamTypes []*ast.Type
	ReturnType *ast.Type
	IsExtern   bool
	HasVarargs bool
	Loc        ast.SourceLoc
}

// SymTab is the scope-aware symbol table pass 2 consults and mutates.
// Scope levels are plain integers; function bodies each get a unique
// level drawn from funcLevelCounter (starting at 1000 per spec.md
// §4.4) so that two functions' same-named locals never collide when
// looked up by level alone — lookup instead walks the explicit scope
// stack, innermost first.
type SymTab struct {
	funcLevelCounter int
	stack            []int
	byLevel          map[int]map[string]*Symbol
	orderByLevel     map[int][]string
}

// NewSymTab returns an empty symbol table with its function-level
// counter seeded at 1000, per spec.md §4.4.
func NewSymTab() *SymTab {
	return &SymTab{
		funcLevelCounter: 1000,
		byLevel:          make(map[int]map[string]*Symbol),
		orderByLevel:     make(map[int][]string),
	}
}

// PushGlobalScope enters level 0, the file-scope level for top-level
// const/var declarations.
func (t *SymTab) PushGlobalScope() {
	t.stack = append(t.stack, 0)
	t.ensureLevel(0)
}

// PushFuncScope allocates a fresh function-unique level and enters it.
// Per spec.md §4.4 ("Block statements that are a function body do not
// introduce an additional scope"), callers must NOT call PushBlockScope
// for the outermost block of a function body; only for nested blocks
// inside it.
func (t *SymTab) PushFuncScope() int {
	level := t.funcLevelCounter
	t.funcLevelCounter++
	t.stack = append(t.stack, level)
	t.ensureLevel(level)
	return level
}

// PushBlockScope enters a new nested scope one level above the current
// innermost one (unique within a compilation since levels only ever
// increase).
func (t *SymTab) PushBlockScope() int {
	level := t.funcLevelCounter
	t.funcLevelCounter++
	t.stack = append(t.stack, level)
	t.ensureLevel(level)
	return level
}

// PopScope leaves the innermost scope.
func (t *SymTab) PopScope() {
	if len(t.stack) == 0 {
		return
	}
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *SymTab) ensureLevel(level int) {
	if _, ok := t.byLevel[level]; !ok {
		t.byLevel[level] = make(map[string]*Symbol)
	}
}

// currentLevel returns the innermost active scope level, or -1 if no
// scope is active.
func (t *SymTab) currentLevel() int {
	if len(t.stack) == 0 {
		return -1
	}
	return t.stack[len(t.stack)-1]
}

// Insert adds sym to the innermost active scope. It returns false
// (without mutating the table) if a symbol with the same name already
// exists at that exact scope level — a name collision within the same
// scope, which the caller reports as a diagnostic per spec.md §4.4
// ("a name collision within the same scope level is a diagnostic").
func (t *SymTab) Insert(sym *Symbol) bool {
	level := t.currentLevel()
	if level < 0 {
		return false
	}
	sym.ScopeLevel = level
	bucket := t.byLevel[level]
	if _, exists := bucket[sym.Name]; exists {
		return false
	}
	bucket[sym.Name] = sym
	t.orderByLevel[level] = append(t.orderByLevel[level], sym.Name)
	return true
}

// SymbolsInOrder returns the symbols inserted at level, in insertion
// order, for the checker's end-of-scope unmodified-var sweep.
func (t *SymTab) SymbolsInOrder(level int) []*Symbol {
	names := t.orderByLevel[level]
	out := make([]*Symbol, 0, len(names))
	bucket := t.byLevel[level]
	for _, name := range names {
		out = append(out, bucket[name])
	}
	return out
}

// Lookup walks the scope stack from innermost to outermost and returns
// the first symbol named name, honoring shadowing (innermost wins).
func (t *SymTab) Lookup(name string) (*Symbol, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if sym, ok := t.byLevel[t.stack[i]][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FuncTab is the global function table. Names are globally unique; a
// duplicate function name is a diagnostic (spec.md §3: "function names
// are globally unique (duplicates are a diagnostic)").
type FuncTab struct {
	byName map[string]*FuncSig
	order  []string
}

// NewFuncTab returns an empty function table.
func NewFuncTab() *FuncTab {
	return &FuncTab{byName: make(map[string]*FuncSig)}
}

// Insert adds sig to the table. It returns false without mutating the
// table if a function with the same name already exists.
func (f *FuncTab) Insert(sig *FuncSig) bool {
	if _, exists := f.byName[sig.Name]; exists {
		return false
	}
	f.byName[sig.Name] = sig
	f.order = append(f.order, sig.Name)
	return true
}

// Lookup returns the signature registered under name.
func (f *FuncTab) Lookup(name string) (*FuncSig, bool) {
	sig, ok := f.byName[name]
	return sig, ok
}

// InOrder returns signatures in first-occurrence order, per spec.md
// §5's "the function table is populated in the order of first
// occurrence".
func (f *FuncTab) InOrder() []*FuncSig {
	out := make([]*FuncSig, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.byName[name])
	}
	return out
}
