package unionspec

import "github.com/thorn-jmh/errorst"

// Annotation is a `#[name...]` marker attached to a union, a variant, or
// a wrapper struct. Raw keeps the source text between the brackets so
// unknown annotations can be echoed as comments on the generated type.
type Annotation struct {
	Name  string
	Args  []string
	Value string
	Raw   string
	Pos   Pos
}

// Variant is one payload type of a union together with its derived
// identifier and the reverse-conversion targets declared on it.
type Variant struct {
	Attrs []Annotation
	Into  []TypeExpr
	Ident string
	Type  TypeExpr
}

// Features records which generated method families were requested via
// `impl` keyword lists. Zero value means none.
type Features struct {
	TryInto       bool
	IsAs          bool
	Introspection bool
}

func (f *Features) Merge(o Features) {
	f.TryInto = f.TryInto || o.TryInto
	f.IsAs = f.IsAs || o.IsAs
	f.Introspection = f.Introspection || o.Introspection
}

func (f Features) None() bool {
	return !f.TryInto && !f.IsAs && !f.Introspection
}

// featureKeywords maps `impl` list keywords to feature toggles. A
// keyword list containing anything else is a trait path instead.
var featureKeywords = map[string]func(*Features){
	"try_into":      func(f *Features) { f.TryInto = true },
	"is_as":         func(f *Features) { f.IsAs = true },
	"introspection": func(f *Features) { f.Introspection = true },
}

// Param is a single type parameter with its constraint expression.
type Param struct {
	Name       string
	Constraint string
}

// Arg is one parameter of a delegated method signature.
type Arg struct {
	Name string
	Type string
}

// MethodSig is a bodiless method declaration inside an impl block. The
// generator fills in a dispatch body that forwards to the active payload.
type MethodSig struct {
	Name        string
	HasRecv     bool
	PointerRecv bool
	RecvName    string
	Params      []Arg
	Results     string
	Pos         Pos
}

// PassItem is an impl-block item with a body. It is emitted verbatim
// with the union type substituted as the receiver.
type PassItem struct {
	Sig  MethodSig
	Body string
}

// ImplBlock groups the delegated signatures and bodied items of one
// `impl { ... }` block.
type ImplBlock struct {
	Items   []PassItem
	Methods []MethodSig
}

// TraitBlock is an `impl path { ... }` block naming an interface the
// union should satisfy.
type TraitBlock struct {
	Path  string
	Block ImplBlock
}

// Derives is the capability set declared via `#[derive(...)]`. It gates
// which wrapper operation families get generated.
type Derives struct {
	Eq      bool
	Ord     bool
	Default bool
	Clone   bool
	Copy    bool
}

// Set enables the flag named by one #[derive(...)] entry, reporting
// whether the name is a known capability.
func (d *Derives) Set(name string) bool {
	switch name {
	case "Eq":
		d.Eq = true
	case "Ord":
		d.Ord = true
	case "Default":
		d.Default = true
	case "Clone":
		d.Clone = true
	case "Copy":
		d.Copy = true
	default:
		return false
	}
	return true
}

// Field is a named struct field of a custom wrapper.
type Field struct {
	Name string
	Type string
}

// VecWrapper describes a slice wrapper around the union, either the
// standard `vec Name;` form or a custom annotated struct. Derives is the
// wrapper's own capability set: the standard form inherits the union's
// plus Default, a custom struct declares its own with `#[derive(...)]`.
type VecWrapper struct {
	Name        string
	Attrs       []Annotation
	Params      []Param
	ExtraFields []Field
	VecField    string
	Custom      bool
	Derives     Derives
}

// Union is the full parsed definition: the variants, the requested
// method families, delegation blocks, and any number of wrappers.
type Union struct {
	Attrs      []Annotation
	Derives    Derives
	ModulePath string
	Imports    map[string]string
	Name       string
	Params     []Param
	Variants   []Variant
	Features   Features
	Impl       ImplBlock
	Traits     []TraitBlock
	Wrappers   []VecWrapper
}

// AddVariant derives the identifier for ty and appends the variant,
// rejecting duplicate payload types and identifier collisions.
func (u *Union) AddVariant(attrs []Annotation, into []TypeExpr, ident string, ty TypeExpr) error {
	if ident == "" {
		derived, err := DeriveIdent(ty)
		if err != nil {
			return err
		}
		ident = derived
	}
	for _, v := range u.Variants {
		if SameType(v.Type, ty) {
			return errorst.Wrap(ErrDuplicateVariant, "type %q appears twice", ty.String())
		}
		if v.Ident == ident {
			return errorst.Wrap(ErrDuplicateVariant,
				"identifier %q derived for both %q and %q", ident, v.Type.String(), ty.String())
		}
	}
	u.Variants = append(u.Variants, Variant{
		Attrs: attrs,
		Into:  into,
		Ident: ident,
		Type:  ty,
	})
	return nil
}

// Variant returns the variant with the given identifier, if any.
func (u *Union) Variant(ident string) (Variant, bool) {
	for _, v := range u.Variants {
		if v.Ident == ident {
			return v, true
		}
	}
	return Variant{}, false
}

// HasVariantType reports whether ty is a payload type of the union.
func (u *Union) HasVariantType(ty TypeExpr) bool {
	for _, v := range u.Variants {
		if SameType(v.Type, ty) {
			return true
		}
	}
	return false
}

// Generic reports whether the union itself takes type parameters.
func (u *Union) Generic() bool {
	return len(u.Params) > 0
}
