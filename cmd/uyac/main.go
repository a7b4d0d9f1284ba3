// uyac - uya compiler driver
//
// Usage: uyac [flags] file ...
//
// Input files:
//   one or more .uya source files, parsed and checked together as a
//   single program (forward references across files resolve exactly
//   as they do within one file, per spec.md §8's two-pass guarantee).
//
// Flags:
//   -o file              Write emitted C99 to file (default: derived
//                         from the first source file, suffix .c)
//   -exec                After successful emission, invoke the system
//                         C compiler to produce an executable at the
//                         output path sans .c
//   -line-directives      Accepted and passed to the emitter, which
//                         writes no #line directives either way
//   -no-line-directives   Omit #line directives (default)
//   -v                    Verbose output
//
// Unlike wut4's ya, which shells out to separate ylex/yparse/ysem/ygen
// binaries via os/exec, uyac runs the whole pipeline in process: the
// lexer, parser, checker, IR generator, and C99 emitter are all
// packages of this same module, not independent tools on $PATH.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/uya-lang/uyac/internal/ast"
	"github.com/uya-lang/uyac/internal/cgen"
	"github.com/uya-lang/uyac/internal/check"
	"github.com/uya-lang/uyac/internal/diag"
	"github.com/uya-lang/uyac/internal/ir"
	"github.com/uya-lang/uyac/internal/lex"
	"github.com/uya-lang/uyac/internal/parse"
)

var (
	outputFile = flag.String("o", "", "output C file (default: derived from first source file)")
	runExec    = flag.Bool("exec", false, "invoke the system C compiler after successful emission")
	lineDirOn  = flag.Bool("line-directives", false, "accepted; the emitter writes no #line directives either way")
	lineDirOff = flag.Bool("no-line-directives", false, "omit #line directives (default)")
	verbose    = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "uya compiler driver\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if *lineDirOn && *lineDirOff {
		fmt.Fprintf(os.Stderr, "uyac: -line-directives and -no-line-directives are incompatible\n")
		os.Exit(1)
	}

	out := *outputFile
	if out == "" {
		base := filepath.Base(args[0])
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".c"
	}

	bag := &diag.Bag{}
	prog, ok := parseAndCheck(args, bag)
	if !ok {
		printDiags(bag)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "uyac: generating IR...\n")
	}
	checker := check.NewChecker(bag)
	checker.Check(prog)
	if bag.HasErrors() {
		printDiags(bag)
		os.Exit(1)
	}
	mod := ir.New(checker).Generate(prog)

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uyac: cannot create %s: %v\n", out, err)
		os.Exit(1)
	}
	cfg := cgen.Config{EmitLineDirectives: *lineDirOn}
	if *verbose {
		fmt.Fprintf(os.Stderr, "uyac: emitting C99 to %s...\n", out)
	}
	genErr := cgen.Generate(mod, f, cfg, bag)
	f.Close()
	if genErr != nil || bag.HasErrors() {
		os.Remove(out)
		printDiags(bag)
		os.Exit(1)
	}

	if *runExec {
		if err := execBuild(out); err != nil {
			fmt.Fprintf(os.Stderr, "uyac: %v\n", err)
			os.Exit(1)
		}
	}
}

// parseAndCheck lexes and parses every source file independently —
// the lexer and parser are both single-file tools — then merges
// their declarations into one combined *ast.Program before the
// checker and IR generator ever see them, since both of those operate
// on a single Program and spec.md's cross-file forward-reference
// guarantee requires every function to be visible to every other
// file's callers.
func parseAndCheck(files []string, bag *diag.Bag) (*ast.Program, bool) {
	merged := &ast.Program{}
	for _, path := range files {
		if *verbose {
			fmt.Fprintf(os.Stderr, "uyac: parsing %s...\n", path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			bag.Add(path, 0, 0, "cannot read file: %v", err)
			continue
		}
		lx := lex.New(src, path, bag, lex.DefaultConfig())
		p := parse.New(lx, bag).Parse()
		if merged.L == (ast.SourceLoc{}) {
			merged.L = p.L
		}
		merged.Decls = append(merged.Decls, p.Decls...)
	}
	return merged, !bag.HasErrors()
}

func printDiags(bag *diag.Bag) {
	for _, s := range bag.Strings() {
		fmt.Fprintln(os.Stderr, s)
	}
}

// execBuild invokes the system C compiler on the emitted source,
// producing an executable at outPath sans its .c suffix. It links in
// a sibling bridge.c (providing main, get_argc, get_argv) when one is
// found: same directory as outPath first, then a tests/bridge.c next
// to it, else the binary is built from the emitted file alone.
func execBuild(outPath string) error {
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	binPath := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	dir := filepath.Dir(outPath)

	sources := []string{outPath}
	if bridge := findBridge(dir); bridge != "" {
		if *verbose {
			fmt.Fprintf(os.Stderr, "uyac: linking %s\n", bridge)
		}
		sources = append(sources, bridge)
	}

	cmdArgs := append(append([]string{}, sources...), "-o", binPath)
	if *verbose {
		fmt.Fprintf(os.Stderr, "uyac: running %s %s\n", cc, strings.Join(cmdArgs, " "))
	}
	cmd := exec.Command(cc, cmdArgs...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %v", cc, err)
	}
	return nil
}

// findBridge searches, in order, dir/bridge.c then dir/tests/bridge.c,
// per spec.md §6's bridge search order. Returns "" if neither exists.
func findBridge(dir string) string {
	candidates := []string{
		filepath.Join(dir, "bridge.c"),
		filepath.Join(dir, "tests", "bridge.c"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
