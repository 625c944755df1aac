package unionspec

import "strings"

// TypeExpr is one parsed type expression from a union definition.
//
// The canonical String rendering doubles as the structural-equality key
// for duplicate detection and as the display type name reported by the
// generated introspection code.
type TypeExpr interface {
	String() string
}

// Named is a (possibly qualified, possibly generic) named type,
// e.g. `int`, `time.Time`, `List[string]`.
type Named struct {
	Segments []string
	Args     []TypeExpr
}

func (t *Named) String() string {
	s := strings.Join(t.Segments, ".")
	if len(t.Args) == 0 {
		return s
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return s + "[" + strings.Join(args, ", ") + "]"
}

// Pointer is the reference shape, e.g. `*string`.
type Pointer struct {
	Elem TypeExpr
}

func (t *Pointer) String() string {
	return "*" + t.Elem.String()
}

// Array keeps its length expression as the literal source text so that
// constant identifiers survive round-tripping into generated code.
type Array struct {
	Len  string
	Elem TypeExpr
}

func (t *Array) String() string {
	return "[" + t.Len + "]" + t.Elem.String()
}

type Slice struct {
	Elem TypeExpr
}

func (t *Slice) String() string {
	return "[]" + t.Elem.String()
}

// Tuple is a parenthesized member list. It is not a native Go type; the
// emitter synthesizes a payload struct for every tuple variant.
type Tuple struct {
	Elems []TypeExpr
}

func (t *Tuple) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// Map is parseable as a payload but never derivable; variants holding
// one need an explicit name.
type Map struct {
	Key   TypeExpr
	Value TypeExpr
}

func (t *Map) String() string {
	return "map[" + t.Key.String() + "]" + t.Value.String()
}

// Chan is parseable as a payload but never derivable.
type Chan struct {
	Elem TypeExpr
}

func (t *Chan) String() string {
	return "chan " + t.Elem.String()
}

// SameType reports structural equality of two type expressions.
func SameType(a, b TypeExpr) bool {
	return a.String() == b.String()
}
