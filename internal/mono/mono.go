// Package mono implements P6 (spec §4.6): specialize every generic
// declaration for every concrete instantiation P4 discovered, draining
// the shared generic-instantiation worklist until no new request
// remains (spec §5: "P4 and P6 share a worklist and interleave
// deterministically by always draining new work before the outer
// fixed point concludes").
package mono

import (
	"fmt"
	"strings"

	"github.com/plutolang/pluto/internal/infer"
	"github.com/plutolang/pluto/internal/sid"
)

// Specialization is one uniquely-named, fully-concrete clone of a
// generic declaration's typed body (spec §4.6 step 6: "Emit a
// uniquely-named specialization visible to the code generator").
// `Box<int>` and `Box<string>` become distinct Specializations, never
// a shared erased representation.
type Specialization struct {
	Qualified string
	Args      []*infer.Type
	Sig       *infer.FuncSig
}

// Result is P6's output: every specialization produced and every
// diagnostic surfaced while re-typing their bodies.
type Result struct {
	Specializations []Specialization
	Errors          []error
}

// Run drains ctx.Generics — populated by P4's initial pass over the
// program, and grown further here whenever a specialization's own body
// contains another generic call (spec §4.6 step 4) — until a full pass
// over the worklist adds nothing new.
func Run(ctx *infer.Context) *Result {
	res := &Result{}
	seen := make(map[string]bool)
	cursor := 0

	for {
		entries := ctx.Generics.Entries()
		if cursor >= len(entries) {
			break
		}
		for ; cursor < len(entries); cursor++ {
			inst := entries[cursor]
			key := specializationKey(inst.Qualified, inst.Args)
			if seen[key] {
				continue
			}
			seen[key] = true

			orig, ok := ctx.FuncSigByQualified(inst.Qualified)
			if !ok {
				continue // a bound-check failure already reported this during P4
			}

			spec := specialize(orig, inst.Args)
			res.Errors = append(res.Errors, ctx.CheckFunc(spec)...)
			res.Specializations = append(res.Specializations, Specialization{
				Qualified: spec.Qualified,
				Args:      inst.Args,
				Sig:       spec,
			})
		}
	}

	return res
}

// specialize clones orig's signature (spec §4.6 step 1: "Clone the
// declaration's typed body") with every generic parameter substituted
// by its concrete argument (step 2), sharing the original AST body —
// the source text is identical across specializations, only the
// resolved types differ, which is exactly what re-typing it under a
// new substitution (step 3) is for.
func specialize(orig *infer.FuncSig, args []*infer.Type) *infer.FuncSig {
	subst := make(map[string]*infer.Type, len(orig.GenericOrder))
	for i, g := range orig.GenericOrder {
		if i < len(args) {
			subst[g] = args[i]
		}
	}

	params := make([]*infer.Type, len(orig.Params))
	for i, p := range orig.Params {
		params[i] = p.Substitute(subst)
	}

	spec := *orig
	spec.Qualified = specializationName(orig.Qualified, args)
	spec.GenericOrder = nil
	spec.Bounds = nil
	spec.Generics = infer.GenericScope{}
	spec.Params = params
	spec.Return = orig.Return.Substitute(subst)
	spec.ErrorSet = nil
	if orig.Receiver != nil {
		spec.Receiver = orig.Receiver.Substitute(subst)
	}

	pos := orig.Decl.Position()
	spec.SID = sid.New(pos.File, pos.Offset, pos.Offset, "specialization", spec.Qualified)

	return &spec
}

func specializationKey(qualified string, args []*infer.Type) string {
	return specializationName(qualified, args)
}

func specializationName(qualified string, args []*infer.Type) string {
	if len(args) == 0 {
		return qualified
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", qualified, strings.Join(parts, ", "))
}
