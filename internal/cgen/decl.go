package cgen

import (
	"github.com/uya-lang/uyac/internal/ir"
)

// prelude emits the fixed headers, uya_alignof macro, and the two
// memcpy/memcmp inline helpers, per spec.md §4.6 point 1 / §6's
// "bit-exact on naming and helper forms" contract.
func (e *Emitter) prelude() {
	e.comment("generated by uyac; do not edit")
	e.line("#include <stdint.h>")
	e.line("#include <stdbool.h>")
	e.line("#include <stddef.h>")
	e.line("#include <stdarg.h>")
	e.line("#include <stdio.h>")
	e.blank()
	e.line("#define uya_alignof(t) offsetof(struct { char c; t member; }, member)")
	e.blank()
	e.line("static inline void __uya_memcpy(void *dst, const void *src, size_t n) {")
	e.indent++
	e.line("unsigned char *d = (unsigned char *)dst;")
	e.line("const unsigned char *s = (const unsigned char *)src;")
	e.line("for (size_t i = 0; i < n; i++) { d[i] = s[i]; }")
	e.indent--
	e.line("}")
	e.blank()
	e.line("static inline int __uya_memcmp(const void *a, const void *b, size_t n) {")
	e.indent++
	e.line("const unsigned char *x = (const unsigned char *)a;")
	e.line("const unsigned char *y = (const unsigned char *)b;")
	e.line("for (size_t i = 0; i < n; i++) { if (x[i] != y[i]) { return (int)x[i] - (int)y[i]; } }")
	e.line("return 0;")
	e.indent--
	e.line("}")
	e.blank()
}

// forwardDecls emits `struct Name;`/`enum Name;` for every user struct
// and synthesized tuple struct, plus `enum Name { ... };` bodies and
// `struct Name { ... };` bodies, in declaration order (spec.md §4.6
// point 2; spec.md §5's ordering guarantee keeps this the same order
// the IR array carries).
func (e *Emitter) forwardDecls(mod *ir.Module) {
	var structs, enums []*ir.Instr
	for _, d := range mod.Decls {
		switch d.Kind {
		case ir.KStructDecl:
			structs = append(structs, d)
		case ir.KEnumDecl:
			enums = append(enums, d)
		}
	}
	for _, s := range structs {
		e.line("struct %s;", s.StructName)
	}
	for _, en := range enums {
		e.line("enum %s;", en.StructName)
	}
	e.blank()
	for _, en := range enums {
		e.enumDef(en)
	}
	for _, s := range structs {
		e.structDef(s)
	}
}

func (e *Emitter) structDef(s *ir.Instr) {
	e.line("struct %s {", s.StructName)
	e.indent++
	for _, f := range s.Fields {
		e.line("%s;", declareVar(f.Type, f.Name))
	}
	e.indent--
	e.line("};")
	e.blank()
}

// enumDef renders variant values: explicit values fold through the
// emitter-local literal evaluator (arraySizeLiteral covers the same
// shapes enum discriminants use — literal arithmetic), otherwise the
// variant auto-increments from the previous one, starting at 0.
func (e *Emitter) enumDef(en *ir.Instr) {
	underlying := "int"
	if en.Underlying != nil {
		underlying = cType(en.Underlying)
	}
	e.line("enum %s {", en.StructName)
	e.indent++
	next := int64(0)
	for _, v := range en.Variants {
		val := next
		if v.Value != nil {
			if n, ok := arraySizeLiteral(v.Value); ok {
				val = n
			}
		}
		e.line("%s_%s = %d,", en.StructName, v.Name, val)
		next = val + 1
	}
	e.indent--
	e.line("}; /* underlying: %s */", underlying)
	e.blank()
}

// errUnionStructs emits one `struct err_union_<T> { uint32_t error_id;
// T value; };` per distinct base type discovered during the scan pass,
// per spec.md §4.6 point 3 / §6's exact field-shape contract.
func (e *Emitter) errUnionStructs() {
	for _, base := range e.sortedErrUnionBases() {
		e.line("struct %s {", errUnionName(base))
		e.indent++
		e.line("uint32_t error_id;")
		e.line("%s value;", base)
		e.indent--
		e.line("};")
		e.blank()
	}
}

// errorIDMacros assigns each distinct error.Name referenced in the
// module a stable nonzero integer id (error_id 0 is reserved for "no
// error", per the err_union struct's own zero value), emitted as
// `#define ERR_<Name> <n>` so error-union construction sites and catch
// handlers can compare against a named constant rather than a bare
// integer. spec.md names the error-union struct shape but leaves the
// id assignment scheme unspecified; names are sorted for a
// deterministic, reproducible numbering across runs.
func (e *Emitter) errorIDMacros() {
	for i, name := range e.sortedErrorNames() {
		e.line("#define ERR_%s %d", name, i+1)
	}
	if len(e.errorNames) > 0 {
		e.blank()
	}
}

// typeInfoStruct emits the built-in TypeInfo struct the `@mc_type`
// builtin reflects through (spec.md §4.6 point 4): a minimal runtime
// type descriptor, since no richer reflection surface is named
// anywhere else in spec.md.
func (e *Emitter) typeInfoStruct() {
	e.line("struct TypeInfo {")
	e.indent++
	e.line("const char *name;")
	e.line("size_t size;")
	e.line("size_t align;")
	e.indent--
	e.line("};")
	e.blank()
}

// syscallHelpers emits the Linux x86-64 uya_syscallN inline helpers,
// elided unless @syscall is referenced anywhere in the module (spec.md
// §4.6 point 5).
func (e *Emitter) syscallHelpers() {
	for n := 0; n <= 6; n++ {
		args := ""
		regs := ""
		for i := 0; i < n; i++ {
			args += ", long a" + itoa(i)
			regs += ", \"r\"(a" + itoa(i) + ")"
		}
		e.line("static inline long uya_syscall%d(long nr%s) {", n, args)
		e.indent++
		e.line("long ret;")
		e.line("/* clobbers rcx, r11 per the x86-64 syscall calling convention */")
		e.line("__asm__ volatile (\"syscall\" : \"=a\"(ret) : \"a\"(nr)%s : \"rcx\", \"r11\", \"memory\");", regs)
		e.line("return ret;")
		e.indent--
		e.line("}")
	}
	e.blank()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

// prototypes emits one semicolon-terminated forward declaration per
// function, extern or not (spec.md §4.6 point 6), so later definitions
// may call each other regardless of declaration order.
func (e *Emitter) prototypes(mod *ir.Module) {
	for _, d := range mod.Decls {
		if d.Kind != ir.KFuncDef {
			continue
		}
		e.line("%s;", funcSignature(d))
	}
	e.blank()
}

func funcSignature(fn *ir.Instr) string {
	name := cFuncName(fn)
	params := ""
	for i, p := range fn.Params {
		if i > 0 {
			params += ", "
		}
		params += declareVar(p.Type, p.Name)
	}
	if fn.IsVarargs {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	if params == "" {
		params = "void"
	}
	return cType(fn.ReturnType) + " " + name + "(" + params + ")"
}

// cFuncName applies spec.md §4.6/§6's naming rules: `main` is renamed
// to `uya_main`, and a test block's name is sanitized into
// `@test$<name>` with non-alphanumerics replaced by `_`.
func cFuncName(fn *ir.Instr) string {
	if fn.IsTest {
		return "@test$" + sanitizeTestName(fn.FnName)
	}
	if fn.FnName == "main" {
		return "uya_main"
	}
	return fn.FnName
}

func sanitizeTestName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
