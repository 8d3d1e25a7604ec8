package infer

// builtinSigs gives each unshadowable builtin (spec §4.2) a function
// type for ordinary identifier reference (passing print as a value,
// etc). Call sites for the variadic print and the single-argument
// math builtins are special-cased in inferFreeCall, since none of
// them fit one fixed arity/type signature faithfully.
var builtinSigs = map[string]*Type{
	"print":   Func([]*Type{String}, Void),
	"abs":     Func([]*Type{Float}, Float),
	"min":     Func([]*Type{Float, Float}, Float),
	"max":     Func([]*Type{Float, Float}, Float),
	"pow":     Func([]*Type{Float, Float}, Float),
	"sqrt":    Func([]*Type{Float}, Float),
	"floor":   Func([]*Type{Float}, Float),
	"ceil":    Func([]*Type{Float}, Float),
	"round":   Func([]*Type{Float}, Float),
	"sin":     Func([]*Type{Float}, Float),
	"cos":     Func([]*Type{Float}, Float),
	"tan":     Func([]*Type{Float}, Float),
	"log":     Func([]*Type{Float}, Float),
	"time_ns": Func(nil, Int),
}

func builtinType(name string) (*Type, bool) {
	t, ok := builtinSigs[name]
	return t, ok
}

// mathBuiltins accept either int or float, returning the same type
// they were given (spec §4.2 lists them without a fixed numeric
// type); print accepts any number of printable primitive arguments.
var mathBuiltins = map[string]bool{
	"abs": true, "sqrt": true, "floor": true, "ceil": true, "round": true,
	"sin": true, "cos": true, "tan": true, "log": true,
}
