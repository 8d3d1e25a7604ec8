// Package pipeline wires P1 through P7 into the single entrypoint a
// driver (CLI, test harness) calls to run the whole semantic
// middle-end over one entry file: module assembly, declaration
// registration, trait conformance, bidirectional inference,
// monomorphization, DI graph construction, and closure/exhaustiveness
// verification, in the order spec §9 fixes.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/digraph"
	"github.com/plutolang/pluto/internal/infer"
	"github.com/plutolang/pluto/internal/lexer"
	"github.com/plutolang/pluto/internal/lower"
	"github.com/plutolang/pluto/internal/module"
	"github.com/plutolang/pluto/internal/mono"
	"github.com/plutolang/pluto/internal/parser"
	"github.com/plutolang/pluto/internal/register"
)

// Config controls how a single Run call drives the pipeline.
type Config struct {
	// StdlibPath is the root of the standard library tree, passed on
	// to module.Assemble (spec §4.1); Assemble does not load any
	// module from it.
	StdlibPath string

	// Logger receives one Info line per phase with its elapsed time
	// and error count. Nil disables logging (zap.NewNop()).
	Logger *zap.Logger
}

// Result is the terminal state of every phase that ran. Phases run in
// order and each one's errors are appended to Errors; the run stops
// after the first phase that reports any, and the fields of the phases
// that did not run stay nil, so a caller can still inspect how far
// compilation got.
type Result struct {
	Program   *module.Program
	Symbols   *register.Table
	Conform   *conform.Table
	Infer     *infer.Result
	Mono      *mono.Result
	Graphs    map[string]*digraph.Graph    // keyed by qualified app name
	Entries   map[string]*digraph.EntryPlan // keyed by qualified app name

	Errors       []error
	PhaseTimings map[string]int64 // milliseconds, keyed by phase name
}

// ParseFile turns one source file into an AST using the project's
// lexer and recursive-descent/Pratt parser, reporting every syntax
// error it collects rather than stopping at the first one.
func ParseFile(path string, src []byte) (*ast.File, error) {
	l := lexer.New(string(src), path)
	p := parser.New(l, path)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return file, errors.Join(errs...)
	}
	return file, nil
}

// Run executes the full pipeline over the module rooted at entryPath.
// It always returns a Result, whose Errors holds every diagnostic
// reported. Each phase runs only when no earlier phase reported an
// error; the returned error is non-nil whenever Errors is non-empty.
func Run(cfg Config, entryPath string) (*Result, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res := &Result{
		Graphs:       make(map[string]*digraph.Graph),
		Entries:      make(map[string]*digraph.EntryPlan),
		PhaseTimings: make(map[string]int64),
	}

	// phase times fn, records it under name in res.PhaseTimings, and
	// logs one line with elapsed time and the error count fn passed
	// back — the same bracketing shape every phase call below used
	// to repeat inline.
	phase := func(name string, fn func() int) {
		start := time.Now()
		errCount := fn()
		elapsed := time.Since(start)
		res.PhaseTimings[name] = elapsed.Milliseconds()
		log.Info("phase complete", zap.String("phase", name), zap.Duration("elapsed", elapsed), zap.Int("errors", errCount))
	}

	parseFile := func(path string) (*ast.File, error) {
		src, err := readSourceFile(path)
		if err != nil {
			return nil, err
		}
		return ParseFile(path, src)
	}

	var assembleErr error
	phase("assemble", func() int {
		res.Program, assembleErr = module.Assemble(entryPath, cfg.StdlibPath, parseFile)
		if assembleErr != nil {
			return 1
		}
		return 0
	})
	if assembleErr != nil {
		res.Errors = append(res.Errors, assembleErr)
		return res, fmt.Errorf("module assembly: %w", assembleErr)
	}

	var registerErr error
	phase("register", func() int {
		res.Symbols, registerErr = register.Register(res.Program)
		if registerErr != nil {
			return 1
		}
		return 0
	})
	if registerErr != nil {
		res.Errors = append(res.Errors, registerErr)
		return res, fmt.Errorf("declaration registration: %w", registerErr)
	}

	phase("conform", func() int {
		conformTable, conformErrs := conform.Check(res.Symbols)
		res.Conform = conformTable
		res.Errors = append(res.Errors, conformErrs...)
		return len(conformErrs)
	})
	if len(res.Errors) > 0 {
		return res, fmt.Errorf("pipeline reported %d error(s), see Result.Errors", len(res.Errors))
	}

	// Closure capture sets are computed over raw ASTs before
	// inference runs, so every lambda's Captures field is already
	// populated by the time P4 type-checks a call that allocates one
	// (spec §9).
	lower.PrecomputeCaptures(res.Symbols)

	phase("infer", func() int {
		res.Infer = infer.Run(res.Symbols, res.Conform)
		res.Errors = append(res.Errors, res.Infer.Errors...)
		return len(res.Infer.Errors)
	})
	if len(res.Errors) > 0 {
		return res, fmt.Errorf("pipeline reported %d error(s), see Result.Errors", len(res.Errors))
	}

	phase("mono", func() int {
		res.Mono = mono.Run(res.Infer.Ctx)
		res.Errors = append(res.Errors, res.Mono.Errors...)
		return len(res.Mono.Errors)
	})
	if len(res.Errors) > 0 {
		return res, fmt.Errorf("pipeline reported %d error(s), see Result.Errors", len(res.Errors))
	}

	phase("digraph", func() int {
		graphErrs := buildGraphs(res.Symbols, res)
		res.Errors = append(res.Errors, graphErrs...)
		return len(graphErrs)
	})
	if len(res.Errors) > 0 {
		return res, fmt.Errorf("pipeline reported %d error(s), see Result.Errors", len(res.Errors))
	}

	phase("lower", func() int {
		lowerResult := lower.Run(res.Infer.Ctx)
		res.Errors = append(res.Errors, lowerResult.Errors...)
		return len(lowerResult.Errors)
	})

	if len(res.Errors) > 0 {
		return res, fmt.Errorf("pipeline reported %d error(s), see Result.Errors", len(res.Errors))
	}
	return res, nil
}

func readSourceFile(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.New(diag.ModuleResolve, "module", err.Error()))
	}
	return src, nil
}

// buildGraphs runs P5 over every `app` declaration reachable from the
// registered program. Each app gets its own dependency graph and
// synthetic entry plan (spec §4.5); a program with no app declarations
// at all (a library module, compiled only for its exported classes and
// traits) simply produces no graphs.
//
// Scoped dependency graphs (digraph.BuildScope / CheckEscape, spec
// §4.5's "Scoped services" extension) are not driven from here: each
// `scope(seed) { ... }` block needs the inferred type of its own seed
// expression, which only exists per call site inside a checked
// function body, not at this whole-program assembly granularity. They
// remain directly usable through internal/digraph's own API — a future
// caller with a site-specific *infer.Context walk can supply the seed
// type this layer does not have.
func buildGraphs(reg *register.Table, res *Result) []error {
	var errs []error
	for _, mt := range reg.Modules {
		for _, sym := range mt.Ordered() {
			if sym.Kind != register.KindApp {
				continue
			}
			app, ok := sym.Decl.(*ast.AppDecl)
			if !ok {
				continue
			}
			g, gerrs := digraph.Build(reg, mt, app)
			errs = append(errs, gerrs...)
			if g == nil {
				continue
			}
			res.Graphs[sym.QualifiedName] = g
			res.Entries[sym.QualifiedName] = digraph.GenerateEntry(g)
		}
	}
	return errs
}
