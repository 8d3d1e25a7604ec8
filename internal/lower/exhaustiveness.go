package lower

import (
	"fmt"
	"sort"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/infer"
)

// CheckExhaustiveness verifies every match-over-enum P4 recorded
// covers every variant of its scrutinee's enum (spec §4.7: "match must
// list every variant of its enum scrutinee"), either explicitly or via
// a trailing wildcard/binding arm. checkMatch already rejected unknown
// variants, duplicate arms, and variant patterns on a non-enum scrutinee while
// it had expression-level type information at hand; this pass only
// adds the one check that needs the *complete* variant set.
func CheckExhaustiveness(ctx *infer.Context) []error {
	var errs []error
	for _, site := range ctx.MatchSites {
		if site.Wildcard {
			continue
		}
		decl, ok := ctx.EnumDeclByQualified(site.Enum)
		if !ok {
			continue
		}
		var missing []string
		for _, v := range decl.Variants {
			if !site.Matched[v.Name] {
				missing = append(missing, v.Name)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		errs = append(errs, diag.Wrap(diag.New(diag.NonExhaustiveMatch, "lower",
			fmt.Sprintf("match on %s is missing variant(s): %v", decl.Name, missing)).
			WithSpan(ast.Span{Start: site.Pos, End: site.Pos})))
	}
	return errs
}
