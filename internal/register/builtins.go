package register

// BuiltinNames lists every pre-populated, unshadowable builtin (spec
// §4.2: "Builtins ... are pre-populated as unshadowable").
var BuiltinNames = []string{
	"print", "abs", "min", "max", "pow", "sqrt", "floor", "ceil",
	"round", "sin", "cos", "tan", "log", "time_ns",
}

// IsBuiltin reports whether name is one of the unshadowable builtins.
func IsBuiltin(name string) bool {
	for _, b := range BuiltinNames {
		if b == name {
			return true
		}
	}
	return false
}

func builtinSymbols() []*Symbol {
	syms := make([]*Symbol, 0, len(BuiltinNames))
	for _, name := range BuiltinNames {
		syms = append(syms, &Symbol{
			Name:          name,
			QualifiedName: name,
			Kind:          KindBuiltin,
			Pub:           true,
		})
	}
	return syms
}
