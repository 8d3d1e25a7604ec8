package diag

// Code constants implement the `E-*` diagnostic taxonomy from spec
// §7, one per named kind.
const (
	ModuleResolve            = "E-ModuleResolve"
	Manifest                 = "E-Manifest"
	CyclicImport              = "E-CyclicImport"
	MissingModule             = "E-MissingModule"
	NameCollision             = "E-NameCollision"
	AmbiguousName             = "E-AmbiguousName"
	ReservedName              = "E-ReservedName"
	DuplicateDeclaration      = "E-DuplicateDeclaration"
	Undefined                 = "E-Undefined"
	TypeMismatch              = "E-TypeMismatch"
	InvalidCast               = "E-InvalidCast"
	AmbiguousNone             = "E-AmbiguousNone"
	EmptyArrayUntyped         = "E-EmptyArrayUntyped"
	NullablePropagationIllegal = "E-NullablePropagationIllegal"
	UnhandledError            = "E-UnhandledError"
	PropagateOnInfallible     = "E-PropagateOnInfallible"
	UselessCatch              = "E-UselessCatch"
	CannotInferTypeArguments  = "E-CannotInferTypeArguments"
	BoundNotSatisfied         = "E-BoundNotSatisfied"
	MissingMethod             = "E-MissingMethod"
	DuplicateImpl             = "E-DuplicateImpl"
	ContractNarrowing         = "E-ContractNarrowing"
	CyclicDependency          = "E-CyclicDependency"
	AmbientNotSatisfied       = "E-AmbientNotSatisfied"
	ScopeEscape               = "E-ScopeEscape"
	MissingReturn             = "E-MissingReturn"
	UnreachableCode           = "E-UnreachableCode"
	NonExhaustiveMatch        = "E-NonExhaustiveMatch"
	DuplicateMatchArm         = "E-DuplicateMatchArm"
	ImmutableAssignment       = "E-ImmutableAssignment"
	BreakOutsideLoop          = "E-BreakOutsideLoop"
	MatchOnNonEnum            = "E-MatchOnNonEnum"
	ForLoopBadIterand         = "E-ForLoopBadIterand"
	Redeclaration             = "E-Redeclaration"
	SyntaxError               = "E-SyntaxError"
)

// Info describes one diagnostic code for tooling and documentation.
type Info struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every code to its descriptive info.
var Registry = map[string]Info{
	ModuleResolve:              {ModuleResolve, "module", "resolution", "Module could not be resolved"},
	Manifest:                   {Manifest, "module", "manifest", "Invalid package manifest"},
	CyclicImport:               {CyclicImport, "module", "dependency", "Circular module import"},
	MissingModule:              {MissingModule, "module", "resolution", "Referenced module not found"},
	NameCollision:              {NameCollision, "module", "namespace", "Duplicate declaration name within a module"},
	AmbiguousName:              {AmbiguousName, "module", "namespace", "Dependency name collides with a local module directory"},
	ReservedName:               {ReservedName, "module", "namespace", "Name is reserved (std or a keyword)"},
	DuplicateDeclaration:       {DuplicateDeclaration, "register", "namespace", "Declaration name already bound"},
	Undefined:                  {Undefined, "infer", "scope", "Name does not resolve to any declaration"},
	TypeMismatch:               {TypeMismatch, "infer", "type", "Operand/argument types do not match"},
	InvalidCast:                {InvalidCast, "infer", "type", "Cast pair is not permitted"},
	AmbiguousNone:              {AmbiguousNone, "infer", "type", "`none` has no nullable context to infer from"},
	EmptyArrayUntyped:          {EmptyArrayUntyped, "infer", "type", "`[]` has no outer [T] context to infer from"},
	NullablePropagationIllegal: {NullablePropagationIllegal, "infer", "nullability", "`?` used where enclosing function is not U? nor void"},
	UnhandledError:             {UnhandledError, "infer", "effect", "Fallible call site missing `!` or `catch`"},
	PropagateOnInfallible:      {PropagateOnInfallible, "infer", "effect", "`!` applied to a call with an empty error set"},
	UselessCatch:               {UselessCatch, "infer", "effect", "`catch` applied to a call with an empty error set"},
	CannotInferTypeArguments:   {CannotInferTypeArguments, "infer", "generics", "Unification failed to determine type arguments"},
	BoundNotSatisfied:          {BoundNotSatisfied, "infer", "generics", "Concrete type fails a trait bound"},
	MissingMethod:              {MissingMethod, "conform", "trait", "Impl omits a required trait method with no default"},
	DuplicateImpl:              {DuplicateImpl, "conform", "trait", "Same trait named twice in one impl list"},
	ContractNarrowing:          {ContractNarrowing, "conform", "contract", "Impl weakens a trait method's requires clause"},
	CyclicDependency:           {CyclicDependency, "digraph", "dependency", "DI graph contains a cycle"},
	AmbientNotSatisfied:        {AmbientNotSatisfied, "digraph", "dependency", "A `uses T` has no matching ambient or bracket-reachable class"},
	ScopeEscape:                {ScopeEscape, "digraph", "lifetime", "A singleton references a scope-lifetime instance"},
	MissingReturn:              {MissingReturn, "lower", "control-flow", "Non-void function falls off the end"},
	UnreachableCode:            {UnreachableCode, "lower", "control-flow", "Code follows an unconditional terminator"},
	NonExhaustiveMatch:         {NonExhaustiveMatch, "lower", "exhaustiveness", "Match does not cover every enum variant"},
	DuplicateMatchArm:          {DuplicateMatchArm, "infer", "exhaustiveness", "Same variant matched by two arms"},
	ImmutableAssignment:        {ImmutableAssignment, "infer", "mutability", "Assignment target is not a valid l-value"},
	BreakOutsideLoop:           {BreakOutsideLoop, "infer", "control-flow", "break/continue outside any enclosing loop"},
	MatchOnNonEnum:             {MatchOnNonEnum, "infer", "type", "match scrutinee is not an enum"},
	ForLoopBadIterand:          {ForLoopBadIterand, "infer", "type", "for-loop iterand is not array/range/string/stream/map"},
	Redeclaration:              {Redeclaration, "infer", "scope", "let binding redeclared in the same block scope"},
	SyntaxError:                {SyntaxError, "parse", "syntax", "Source does not match the grammar"},
}

// Lookup returns descriptive info for a code.
func Lookup(code string) (Info, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsPhase reports whether a code belongs to the named phase.
func IsPhase(code, phase string) bool {
	info, ok := Lookup(code)
	return ok && info.Phase == phase
}
