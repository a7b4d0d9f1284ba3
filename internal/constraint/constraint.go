// Package constraint implements the path-sensitive predicate set
// spec.md §3 "Constraint set" names: per-name Range/Nonzero/NotNull/
// Initialized facts, carried and refined by internal/check's pass 2 as
// it walks into `if` branches (spec.md §4.4's condition-propagation
// rules) and consulted by the divide-by-zero, array-bound, and
// uninitialized-use safety checks.
//
// wut4 has no static safety prover (lang/ysem's checker rejects type
// mismatches only; array/division/overflow are unchecked, left to the
// 16-bit runtime). This package has no direct teacher analog; it is
// shaped as an immutable-copy value type the way
// wut4/lang/yparse/symtab.go's FuncScope is saved and restored across
// scope entry/exit, generalized here to constraint-set save/restore
// across if-branches per spec.md §4.4.
package constraint

import "math"

// Kind tags which predicate a Fact carries.
type Kind int

const (
	KindInvalid Kind = iota
	KindRange
	KindNonzero
	KindNotNull
	KindInitialized
)

// Fact is one predicate attached to a name. Min/Max are meaningful
// only for KindRange, a half-open interval [Min, Max) over signed
// 64-bit integers per spec.md §3.
type Fact struct {
	Kind Kind
	Min  int64
	Max  int64
}

// Range returns a Range fact covering [min, max).
func Range(min, max int64) Fact { return Fact{Kind: KindRange, Min: min, Max: max} }

// Nonzero returns a Nonzero fact.
func Nonzero() Fact { return Fact{Kind: KindNonzero} }

// NotNull returns a Not-null fact.
func NotNull() Fact { return Fact{Kind: KindNotNull} }

// Initialized returns an Initialized fact.
func Initialized() Fact { return Fact{Kind: KindInitialized} }

// Contains reports whether n satisfies a KindRange fact; undefined for
// other kinds.
func (f Fact) Contains(n int64) bool {
	return f.Kind == KindRange && n >= f.Min && n < f.Max
}

// Set is the full constraint set for one name: at most one Fact per
// Kind (a second Range add-with-merges into the first instead of
// appending, per spec.md §3's "Add-with-merge on a range tightens min
// and max when an existing range is present; otherwise it appends").
//
// Set is a value type: Copy returns an independent snapshot so a
// caller can mutate the copy across an if-branch and discard it
// without affecting the original, the save/restore pattern spec.md
// §4.4 requires around every `if`.
type Set struct {
	facts map[Kind]Fact
}

// NewSet returns an empty constraint set.
func NewSet() *Set {
	return &Set{facts: make(map[Kind]Fact)}
}

// Copy returns an independent snapshot of s.
func (s *Set) Copy() *Set {
	out := NewSet()
	for k, f := range s.facts {
		out.facts[k] = f
	}
	return out
}

// Has reports whether s carries a fact of kind k.
func (s *Set) Has(k Kind) bool {
	_, ok := s.facts[k]
	return ok
}

// Get returns the fact of kind k and whether it is present.
func (s *Set) Get(k Kind) (Fact, bool) {
	f, ok := s.facts[k]
	return f, ok
}

// Add merges f into s. For KindRange, an existing range is tightened
// (the intersection of the two intervals) rather than replaced;
// non-range kinds are idempotent (a second Add of the same kind is a
// no-op, there being nothing to tighten).
func (s *Set) Add(f Fact) {
	if f.Kind != KindRange {
		s.facts[f.Kind] = f
		return
	}
	existing, ok := s.facts[KindRange]
	if !ok {
		s.facts[KindRange] = f
		return
	}
	tightened := Fact{Kind: KindRange, Min: maxInt64(existing.Min, f.Min), Max: minInt64(existing.Max, f.Max)}
	s.facts[KindRange] = tightened
}

// RangeWithinArrayBound reports whether s's Range fact, if present,
// lies fully within [0, size) — the array-bound safety check's test
// for a name-indexed subscript (spec.md §4.4(d)).
func (s *Set) RangeWithinArrayBound(size int64) bool {
	f, ok := s.facts[KindRange]
	if !ok {
		return false
	}
	return f.Min >= 0 && f.Max <= size
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Int64Min / Int64Max mirror Zig/Rust-style i64::MIN / i64::MAX,
// used by internal/check when synthesizing an unbounded Range from a
// one-sided comparison (`x < k` has no lower bound, so the lower bound
// is the type's true minimum, per spec.md §4.4's condition-propagation
// table).
const (
	Int64Min = math.MinInt64
	Int64Max = math.MaxInt64
)

// Env is a per-name map of constraint sets, the unit internal/check
// saves and restores around an if-statement's branches (spec.md §4.4:
// "After the if, the pre-condition set is restored").
type Env struct {
	sets map[string]*Set
}

// NewEnv returns an empty constraint environment.
func NewEnv() *Env {
	return &Env{sets: make(map[string]*Set)}
}

// Copy returns an independent snapshot of e, deep enough that further
// Add calls on the copy's sets never mutate e's.
func (e *Env) Copy() *Env {
	out := NewEnv()
	for name, s := range e.sets {
		out.sets[name] = s.Copy()
	}
	return out
}

// SetFor returns the constraint set for name, creating an empty one on
// first access.
func (e *Env) SetFor(name string) *Set {
	s, ok := e.sets[name]
	if !ok {
		s = NewSet()
		e.sets[name] = s
	}
	return s
}

// Add records fact for name.
func (e *Env) Add(name string, f Fact) {
	e.SetFor(name).Add(f)
}

// Has reports whether name carries a fact of kind k.
func (e *Env) Has(name string, k Kind) bool {
	s, ok := e.sets[name]
	if !ok {
		return false
	}
	return s.Has(k)
}

// Clear drops all facts for name, used when a name is reassigned (a
// fresh value invalidates any previously derived constraint).
func (e *Env) Clear(name string) {
	delete(e.sets, name)
}
