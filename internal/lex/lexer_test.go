package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	l := New([]byte(src), "t.uya", bag, DefaultConfig())
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestEmptyStringLiteralHasNoInterpTokens(t *testing.T) {
	toks, bag := lexAll(t, `""`)
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{token.String, token.EOF}, kinds(toks))
	assert.Equal(t, "", toks[0].Lexeme)
}

func TestSimpleInterpolation(t *testing.T) {
	toks, bag := lexAll(t, `"${x}"`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{
		token.InterpText, token.InterpOpen, token.Ident, token.InterpClose, token.InterpEnd, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "", toks[0].Lexeme)
	assert.Equal(t, "x", toks[2].Lexeme)
}

func TestInterpolationWithFormatSpec(t *testing.T) {
	toks, bag := lexAll(t, `"n=${n:04d}"`)
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{
		token.InterpText, token.InterpOpen, token.Ident, token.InterpSpec, token.InterpClose, token.InterpEnd, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "n=", toks[0].Lexeme)
	assert.Equal(t, "04d", toks[3].Lexeme)
}

func TestInterpolationWithNestedBraces(t *testing.T) {
	toks, bag := lexAll(t, `"${Point{x: 1}.x}"`)
	require.False(t, bag.HasErrors())
	k := kinds(toks)
	require.Equal(t, token.InterpText, k[0])
	require.Equal(t, token.InterpOpen, k[1])
	// Point { x : 1 } . x
	assert.Contains(t, k, token.LBrace)
	assert.Contains(t, k, token.RBrace)
	assert.Equal(t, token.InterpClose, k[len(k)-3])
	assert.Equal(t, token.InterpEnd, k[len(k)-2])
	assert.Equal(t, token.EOF, k[len(k)-1])
}

func TestMultipleInterpolationsTrailingTextOmittedWhenEmpty(t *testing.T) {
	toks, bag := lexAll(t, `"${a}${b}"`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{
		token.InterpText, token.InterpOpen, token.Ident, token.InterpClose,
		token.InterpText, token.InterpOpen, token.Ident, token.InterpClose,
		token.InterpEnd, token.EOF,
	}, kinds(toks))
}

func TestTrailingTextEmittedWhenNonEmpty(t *testing.T) {
	toks, bag := lexAll(t, `"${a} done"`)
	require.False(t, bag.HasErrors())
	last := toks[len(toks)-3]
	assert.Equal(t, token.InterpText, last.Kind)
	assert.Equal(t, " done", last.Lexeme)
}

func TestNestedStringInsideInterpolation(t *testing.T) {
	toks, bag := lexAll(t, `"${"${inner}"}"`)
	require.False(t, bag.HasErrors())
	k := kinds(toks)
	// outer InterpText InterpOpen, then a full nested interp-string sequence, InterpClose InterpEnd EOF
	assert.Equal(t, token.InterpText, k[0])
	assert.Equal(t, token.InterpOpen, k[1])
	assert.Contains(t, k, token.Ident)
	assert.Equal(t, token.EOF, k[len(k)-1])
}

func TestPlainStringNoEscapes(t *testing.T) {
	toks, bag := lexAll(t, `"hello world"`)
	require.False(t, bag.HasErrors())
	require.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestEscapeSequences(t *testing.T) {
	toks, bag := lexAll(t, `"a\nb\tc\\d\"e"`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, "a\nb\tc\\d\"e", toks[0].Lexeme)
}

func TestNumberLiterals(t *testing.T) {
	toks, bag := lexAll(t, `42 3.14 1e3 1.5e-2 0`)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 6)
	assert.Equal(t, token.Integer, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.Floating, toks[1].Kind)
	assert.Equal(t, token.Floating, toks[2].Kind)
	assert.Equal(t, "1e3", toks[2].Lexeme)
	assert.Equal(t, token.Floating, toks[3].Kind)
}

func TestRangeNotConfusedWithFloat(t *testing.T) {
	toks, bag := lexAll(t, `0..10`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Integer, token.DotDot, token.Integer, token.EOF}, kinds(toks))
}

func TestKeywordsAndIdents(t *testing.T) {
	toks, bag := lexAll(t, `fn main struct mut x`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{
		token.KwFn, token.Ident, token.KwStruct, token.KwMut, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestAsBangCast(t *testing.T) {
	toks, bag := lexAll(t, `x as! i32`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.KwAsBang, token.Ident, token.EOF}, kinds(toks))
}

func TestSaturatingAndWrappingOperators(t *testing.T) {
	toks, bag := lexAll(t, `a +| b -% c *| d`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{
		token.Ident, token.PlusPipe, token.Ident, token.MinusPct, token.Ident,
		token.StarPipe, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestAtBuiltinWhitelist(t *testing.T) {
	toks, bag := lexAll(t, `@sizeof(i32)`)
	require.False(t, bag.HasErrors())
	assert.Equal(t, token.At, toks[0].Kind)
	assert.Equal(t, "@sizeof", toks[0].Lexeme)
}

func TestAtBuiltinUnknownNameIsDiagnostic(t *testing.T) {
	_, bag := lexAll(t, `@bogus(x)`)
	assert.True(t, bag.HasErrors())
}

func TestUnrecognizedCharacterReportsDiagnosticAndEOF(t *testing.T) {
	toks, bag := lexAll(t, `x ` + "`" + ` y`)
	assert.True(t, bag.HasErrors())
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, bag := lexAll(t, "a\nb")
	require.False(t, bag.HasErrors())
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}

func TestLineCommentSkipped(t *testing.T) {
	toks, bag := lexAll(t, "a // comment\nb")
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}

func TestBlockCommentSkipped(t *testing.T) {
	toks, bag := lexAll(t, "a /* multi\nline */ b")
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}

func TestUnterminatedBlockCommentBecomesEOFSilently(t *testing.T) {
	toks, bag := lexAll(t, "a /* never closed")
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.EOF}, kinds(toks))
}

func TestPreprocessorIfTrueKeepsBody(t *testing.T) {
	bag := &diag.Bag{}
	cfg := DefaultConfig()
	cfg.Tags = map[string]bool{"DEBUG": true}
	l := New([]byte("#if DEBUG\na\n#endif\nb"), "t.uya", bag, cfg)
	var toks []token.Token
	for {
		tk := l.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.EOF}, kinds(toks))
}

func TestPreprocessorIfFalseSkipsBody(t *testing.T) {
	bag := &diag.Bag{}
	cfg := DefaultConfig()
	cfg.Tags = map[string]bool{"DEBUG": false}
	l := New([]byte("#if DEBUG\na\n#endif\nb"), "t.uya", bag, cfg)
	var toks []token.Token
	for {
		tk := l.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Kind{token.Ident, token.EOF}, kinds(toks))
}

func TestPreprocessorElseBranch(t *testing.T) {
	bag := &diag.Bag{}
	cfg := DefaultConfig()
	l := New([]byte("#if MISSING\na\n#else\nb\n#endif"), "t.uya", bag, cfg)
	var toks []token.Token
	for {
		tk := l.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 2)
	assert.Equal(t, "b", toks[0].Lexeme)
}
