package cgen

import (
	"fmt"
	"strings"

	"github.com/uya-lang/uyac/internal/ir"
)

// stringInterpFillLines renders the snprintf/memcpy sequence spec.md
// §4.6 describes ("allocate a stack buffer of the precomputed size;
// emit a sequence of snprintf(buf + off, cap - off, fmt, arg) calls
// interleaved with literal memcpys of text segments; track off between
// calls"), writing into an already-declared buffer named buf of
// capacity x.BufferSize. A slot whose value was constant-folded by
// internal/ir (x.ConstSlotValues[i] != "") is emitted as a pre-rendered
// literal memcpy instead of a snprintf call, per spec.md's "constant
// slots are emitted as pre-rendered string segments".
func (e *Emitter) stringInterpFillLines(buf string, x *ir.Instr) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("size_t %s_off = 0;", buf))
	segIdx := 0
	emitSeg := func(text string) {
		if text == "" {
			return
		}
		lines = append(lines, fmt.Sprintf("__uya_memcpy(%s + %s_off, %q, %d);", buf, buf, text, len(text)))
		lines = append(lines, fmt.Sprintf("%s_off += %d;", buf, len(text)))
	}
	for i, slot := range x.Slots {
		if segIdx < len(x.TextSegments) {
			emitSeg(x.TextSegments[segIdx])
			segIdx++
		}
		constVal := ""
		if i < len(x.ConstSlotValues) {
			constVal = x.ConstSlotValues[i]
		}
		if constVal != "" {
			emitSeg(constVal)
			continue
		}
		spec := ""
		if i < len(x.FormatSpecs) {
			spec = x.FormatSpecs[i]
		}
		fmtStr := "%" + spec
		if !specHasType(spec) {
			fmtStr += printfConv(slot)
		}
		lines = append(lines, fmt.Sprintf(
			"%s_off += (size_t)snprintf((char *)%s + %s_off, sizeof(%s) - %s_off, \"%s\", %s);",
			buf, buf, buf, buf, buf, fmtStr, e.emitExpr(slot)))
	}
	if segIdx < len(x.TextSegments) {
		emitSeg(x.TextSegments[segIdx])
		segIdx++
	}
	return lines
}

// specHasType reports whether a raw format spec (`[flags][width]
// [.precision][type]`, spec.md §4.3) carries an explicit trailing type
// letter, walking past the flags/width/precision fields the same way
// internal/ir's specWidth does. When true the spec already supplies
// its own printf conversion and printfConv must not be appended too.
func specHasType(spec string) bool {
	i := 0
	for i < len(spec) && strings.ContainsRune("#0-+ ", rune(spec[i])) {
		i++
	}
	for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
		i++
	}
	if i < len(spec) && spec[i] == '.' {
		i++
		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
	}
	return i < len(spec)
}

// printfConv picks the printf conversion character matching a slot's
// static type, per spec.md §4.3's interpolation-format grammar.
func printfConv(slot *ir.Instr) string {
	if slot == nil || slot.Type == nil || slot.Type.Name == "" {
		return "d"
	}
	switch slot.Type.Name {
	case "i64":
		return "lld"
	case "u64", "usize":
		return "llu"
	case "u8", "u16", "u32":
		return "u"
	case "f32", "f64":
		return "f"
	case "bool":
		return "d"
	default:
		return "d"
	}
}

// emitStringInterp renders a string-interpolation expression used in
// value position (anywhere other than a var-decl initializer, which
// emitStmt in func.go special-cases to avoid this extra indirection) as a
// GNU statement expression producing the filled buffer.
func (e *Emitter) emitStringInterp(x *ir.Instr) string {
	buf := e.newTemp("buf")
	var b strings.Builder
	fmt.Fprintf(&b, "({ uint8_t %s[%d]; ", buf, x.BufferSize)
	for _, line := range e.stringInterpFillLines(buf, x) {
		fmt.Fprintf(&b, "%s ", line)
	}
	fmt.Fprintf(&b, "%s; })", buf)
	return b.String()
}
