package infer

import (
	"fmt"
	"sort"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/sid"
)

// propMode classifies how a call site currently being resolved is
// wrapped, recorded by checkCallArgsTyped at the moment it learns the
// callee's FuncSig (spec §4.4.3).
type propMode int

const (
	// propBare is a call with neither `!` nor `catch` — legal only if
	// the callee turns out infallible.
	propBare propMode = iota
	// propWrapped is `callee(...)!` — propagates the callee's error
	// set into the caller's.
	propWrapped
	// propCaught is `callee(...) catch ...` — absorbs the callee's
	// error set entirely (this compiler has no typed catch patterns,
	// spec §9 open question, so catch always covers everything).
	propCaught
)

// callSiteRecord is one call/method-call resolved during the single
// typed walk, kept so the error-set fixed point can revisit it once
// every callee's final error set is known, and so the post-condition
// diagnostics (UnhandledError, PropagateOnInfallible, UselessCatch) can
// be reported against the actual call position.
type callSiteRecord struct {
	Caller sid.SID
	Callee sid.SID
	Pos    ast.Pos
	Mode   propMode
}

func (c *Context) recordRaise(caller sid.SID, errorKind string) {
	if c.directRaise == nil {
		c.directRaise = make(map[sid.SID]map[string]bool)
	}
	set, ok := c.directRaise[caller]
	if !ok {
		set = make(map[string]bool)
		c.directRaise[caller] = set
	}
	set[errorKind] = true
}

func (c *Context) recordCallSite(caller, callee sid.SID, at ast.Pos, mode propMode) {
	c.callSites = append(c.callSites, callSiteRecord{Caller: caller, Callee: callee, Pos: at, Mode: mode})
}

// RunErrorSetFixedPoint implements spec §4.4.3: start every function's
// error set at its directly-raised kinds, then repeatedly propagate
// through `!`-wrapped call edges until nothing changes — guaranteed to
// terminate since error kinds only accumulate over a finite universe.
// Components are processed callee-before-caller per the call graph's
// SCC order so acyclic chains converge in one pass; a cycle (mutual
// recursion through raises) converges within a few passes over its own
// component, since a component cannot exceed the total kind count.
//
// Once every FuncSig.ErrorSet is final, it reports the three
// post-conditions spec §4.4.3 defines and finally invokes
// conform.CheckErrorSets, whose subset rule cannot run any earlier
// (impl error sets are inferred, not declared).
func (c *Context) RunErrorSetFixedPoint() []error {
	for _, f := range c.OrderedFuncs() {
		f.ErrorSet = make(map[string]bool)
		for kind := range c.directRaise[f.SID] {
			f.ErrorSet[kind] = true
		}
	}

	graph := newCallGraph()
	for _, f := range c.OrderedFuncs() {
		graph.addNode(f.SID)
	}
	for _, cs := range c.callSites {
		if cs.Mode == propWrapped {
			graph.addEdge(cs.Caller, cs.Callee)
		}
	}

	for _, comp := range graph.sccs() {
		for {
			changed := false
			for _, id := range comp {
				caller, ok := c.Funcs[id]
				if !ok {
					continue
				}
				for _, cs := range c.callSites {
					if cs.Mode != propWrapped || cs.Caller != id {
						continue
					}
					callee, ok := c.Funcs[cs.Callee]
					if !ok {
						continue
					}
					for kind := range callee.ErrorSet {
						if !caller.ErrorSet[kind] {
							caller.ErrorSet[kind] = true
							changed = true
						}
					}
				}
			}
			if !changed {
				break
			}
		}
	}

	var errs []error
	for _, cs := range c.callSites {
		callee, ok := c.Funcs[cs.Callee]
		if !ok {
			continue
		}
		fallible := len(callee.ErrorSet) > 0
		switch cs.Mode {
		case propBare:
			if fallible {
				errs = append(errs, diag.Wrap(diag.New(diag.UnhandledError, "infer",
					fmt.Sprintf("call to %s may raise %s; handle it with `!` or `catch`", callee.Name, sortedKinds(callee.ErrorSet))).
					WithSpan(spanAt(cs.Pos))))
			}
		case propWrapped:
			if !fallible {
				errs = append(errs, diag.Wrap(diag.New(diag.PropagateOnInfallible, "infer",
					fmt.Sprintf("`!` used on a call to %s, which never raises", callee.Name)).
					WithSpan(spanAt(cs.Pos))))
			}
		case propCaught:
			if !fallible {
				errs = append(errs, diag.Wrap(diag.New(diag.UselessCatch, "infer",
					fmt.Sprintf("`catch` used on a call to %s, which never raises", callee.Name)).
					WithSpan(spanAt(cs.Pos))))
			}
		}
	}

	errs = append(errs, c.checkTraitErrorSets()...)
	return errs
}

func sortedKinds(set map[string]bool) string {
	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}

// checkTraitErrorSets runs P3's deferred error-set subset rule now that
// every method's ErrorSet is final (spec §4.3, §4.4.3).
func (c *Context) checkTraitErrorSets() []error {
	declToFunc := make(map[ast.Node]*FuncSig, len(c.Funcs))
	for _, f := range c.Funcs {
		if f.IsMethod {
			declToFunc[f.Decl] = f
		}
	}
	errorsOf := conform.ErrorSetProvider(func(m *ast.MethodDecl) []string {
		f, ok := declToFunc[m]
		if !ok || f.ErrorSet == nil {
			return nil
		}
		kinds := make([]string, 0, len(f.ErrorSet))
		for k := range f.ErrorSet {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		return kinds
	})
	return conform.CheckErrorSets(c.Conform, errorsOf)
}
