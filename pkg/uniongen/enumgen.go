package uniongen

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"uniongen/pkg/unionspec"
)

// genEnum emits the union type itself plus every method family the
// definition requested: tag, struct, constructors, the generic bridge,
// conversions, introspection, accessors, and derived comparisons.
func (g *Generator) genEnum(f *jen.File) error {
	u := g.u

	g.genTuplePayloads(f)
	g.genTagAndStruct(f)
	g.genConstructors(f)
	if !u.Generic() {
		g.genBridge(f)
	}
	if u.Features.TryInto {
		g.genTryInto(f)
	}
	if u.Features.Introspection {
		g.genIntrospection(f)
	}
	if u.Features.IsAs {
		g.genAccessors(f)
	}
	if u.Derives.Eq {
		g.genEqual(f)
	}
	if u.Derives.Ord {
		g.genCompare(f)
	}
	return nil
}

// genTuplePayloads declares one named struct per tuple variant, fields
// F0..Fn, since Go has no tuple type.
func (g *Generator) genTuplePayloads(f *jen.File) {
	for _, v := range g.u.Variants {
		tup, ok := v.Type.(*unionspec.Tuple)
		if !ok {
			continue
		}
		f.Line().Commentf("%s is the payload of the %s variant.", v.Ident, v.Type)
		declare(f.Type().Id(v.Ident), g.u.Params).StructFunc(func(s *jen.Group) {
			for i, e := range tup.Elems {
				s.Id(tupleField(i)).Add(g.typeCode(e))
			}
		})
	}
}

func tupleField(i int) string {
	return "F" + strconv.Itoa(i)
}

func (g *Generator) genTagAndStruct(f *jen.File) {
	u := g.u

	f.Line().Commentf("%s discriminates the payload held by a %s.", tagTypeName(u), u.Name)
	f.Type().Id(tagTypeName(u)).Uint8()

	f.Const().DefsFunc(func(d *jen.Group) {
		for i, v := range u.Variants {
			if i == 0 {
				d.Id(tagConstName(u, v.Ident)).Id(tagTypeName(u)).Op("=").Iota()
			} else {
				d.Id(tagConstName(u, v.Ident))
			}
		}
	})

	names := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		names[i] = v.Type.String()
	}
	for _, a := range u.Attrs {
		f.Commentf("uniongen:%s", a.Raw)
	}
	f.Commentf("%s holds exactly one of: %s.", u.Name, strings.Join(names, ", "))
	declare(f.Type().Id(u.Name), u.Params).StructFunc(func(s *jen.Group) {
		s.Id("tag").Id(tagTypeName(u))
		for _, v := range u.Variants {
			stat := s.Id(fieldName(v.Ident)).Add(g.payloadType(v))
			if c := passComment(v.Attrs); c != "" {
				stat.Comment(c)
			}
		}
	})
}

func passComment(attrs []unionspec.Annotation) string {
	var parts []string
	for _, a := range attrs {
		parts = append(parts, "uniongen:"+a.Raw)
	}
	return strings.Join(parts, "; ")
}

// genConstructors emits one forward-conversion constructor per variant.
func (g *Generator) genConstructors(f *jen.File) {
	u := g.u
	for _, v := range u.Variants {
		v := v
		f.Line().Commentf("%s wraps a %s value.", ctorName(u, v.Ident), v.Type)
		declare(f.Func().Id(ctorName(u, v.Ident)), u.Params).
			Params(jen.Id("v").Add(g.payloadType(v))).
			Add(g.selfType()).
			Block(jen.Return(g.selfType().Values(jen.Dict{
				jen.Id("tag"):               jen.Id(tagConstName(u, v.Ident)),
				jen.Id(fieldName(v.Ident)): jen.Id("v"),
			})))
	}
}

// genBridge emits the constraint listing every payload type and the
// generic converter over it, so call sites can pass payloads directly.
func (g *Generator) genBridge(f *jen.File) {
	u := g.u

	types := make([]jen.Code, len(u.Variants))
	for i, v := range u.Variants {
		types[i] = g.payloadType(v)
	}
	f.Line().Commentf("%s matches any type %s can hold.", likeName(u), u.Name)
	f.Type().Id(likeName(u)).Interface(jen.Union(types...))

	f.Commentf("%s converts any held type into a %s.", bridgeName(u), u.Name)
	f.Func().Id(bridgeName(u)).
		Types(jen.Id("V").Id(likeName(u))).
		Params(jen.Id("v").Id("V")).
		Id(u.Name).
		Block(
			jen.Switch(jen.Id("x").Op(":=").Id("any").Call(jen.Id("v")).Assert(jen.Type())).
				BlockFunc(func(s *jen.Group) {
					for _, v := range u.Variants {
						s.Case(g.payloadType(v)).Block(
							jen.Return(jen.Id(ctorName(u, v.Ident)).Call(jen.Id("x"))))
					}
				}),
			jen.Panic(jen.Lit("unreachable")),
		)
}

// conversion renders dst(expr), parenthesizing composite destination
// types so the conversion parses.
func (g *Generator) conversion(dst unionspec.TypeExpr, expr jen.Code) jen.Code {
	if _, ok := dst.(*unionspec.Named); ok {
		return jen.Add(g.typeCode(dst)).Call(expr)
	}
	return jen.Parens(g.typeCode(dst)).Call(expr)
}

// genTryInto emits one fallible extractor per variant. A variant that
// declared the destination in #[into] converts instead of failing.
func (g *Generator) genTryInto(f *jen.File) {
	u := g.u
	for _, dst := range u.Variants {
		dst := dst
		f.Line().Commentf("TryInto%s extracts the %s payload.", dst.Ident, dst.Type)
		f.Func().
			Params(jen.Id("v").Add(g.selfType())).
			Id("TryInto" + dst.Ident).
			Params().
			Params(g.payloadType(dst), jen.Error()).
			BlockFunc(func(s *jen.Group) {
				s.Var().Id("zero").Add(g.payloadType(dst))
				s.Switch(jen.Id("v").Dot("tag")).BlockFunc(func(sw *jen.Group) {
					for _, src := range u.Variants {
						src := src
						switch {
						case src.Ident == dst.Ident:
							sw.Case(jen.Id(tagConstName(u, src.Ident))).Block(
								jen.Return(jen.Id("v").Dot(fieldName(src.Ident)), jen.Nil()))
						case declaresInto(src, dst.Type):
							sw.Case(jen.Id(tagConstName(u, src.Ident))).Block(
								jen.Return(g.conversion(dst.Type,
									jen.Id("v").Dot(fieldName(src.Ident))), jen.Nil()))
						default:
							sw.Case(jen.Id(tagConstName(u, src.Ident))).Block(
								jen.Return(jen.Id("zero"), jen.Qual("errors", "New").
									Call(jen.Lit("no conversion from '"+src.Type.String()+
										"' to '"+dst.Type.String()+"'"))))
						}
					}
				})
				s.Return(jen.Id("zero"), jen.Qual("errors", "New").
					Call(jen.Lit("no conversion to '"+dst.Type.String()+"'")))
			})
	}
}

func declaresInto(src unionspec.Variant, dst unionspec.TypeExpr) bool {
	for _, t := range src.Into {
		if unionspec.SameType(t, dst) {
			return true
		}
	}
	return false
}

// genIntrospection emits the variant count, the ordered display-name
// list, and the per-value type name.
func (g *Generator) genIntrospection(f *jen.File) {
	u := g.u

	f.Line().Commentf("%sVariantCount is the number of payload types.", u.Name)
	f.Const().Id(u.Name + "VariantCount").Op("=").Lit(len(u.Variants))

	f.Commentf("%sTypes lists the payload type names in declaration order.", u.Name)
	f.Func().Id(u.Name + "Types").Params().Index().String().
		BlockFunc(func(s *jen.Group) {
			vals := make([]jen.Code, len(u.Variants))
			for i, v := range u.Variants {
				vals[i] = jen.Lit(v.Type.String())
			}
			s.Return(jen.Index().String().Values(vals...))
		})

	f.Comment("TypeName reports the display name of the held payload type.")
	f.Func().
		Params(jen.Id("v").Add(g.selfType())).
		Id("TypeName").
		Params().
		String().
		BlockFunc(func(s *jen.Group) {
			s.Switch(jen.Id("v").Dot("tag")).BlockFunc(func(sw *jen.Group) {
				for _, v := range u.Variants {
					sw.Case(jen.Id(tagConstName(u, v.Ident))).Block(
						jen.Return(jen.Lit(v.Type.String())))
				}
			})
			s.Return(jen.Lit(""))
		})
}

// genAccessors emits the Is / TryAs / TryAsRef family. The Ref accessor
// is skipped for pointer payloads, which are already references.
func (g *Generator) genAccessors(f *jen.File) {
	u := g.u
	for _, dst := range u.Variants {
		dst := dst

		f.Line()
		f.Func().
			Params(jen.Id("v").Add(g.selfType())).
			Id("Is" + dst.Ident).
			Params().
			Bool().
			Block(jen.Return(jen.Id("v").Dot("tag").Op("==").Id(tagConstName(u, dst.Ident))))

		f.Func().
			Params(jen.Id("v").Add(g.selfType())).
			Id("TryAs" + dst.Ident).
			Params().
			Params(g.payloadType(dst), jen.Bool()).
			BlockFunc(func(s *jen.Group) {
				s.Var().Id("zero").Add(g.payloadType(dst))
				s.Switch(jen.Id("v").Dot("tag")).BlockFunc(func(sw *jen.Group) {
					for _, src := range u.Variants {
						src := src
						switch {
						case src.Ident == dst.Ident:
							sw.Case(jen.Id(tagConstName(u, src.Ident))).Block(
								jen.Return(jen.Id("v").Dot(fieldName(src.Ident)), jen.True()))
						case declaresInto(src, dst.Type):
							sw.Case(jen.Id(tagConstName(u, src.Ident))).Block(
								jen.Return(g.conversion(dst.Type,
									jen.Id("v").Dot(fieldName(src.Ident))), jen.True()))
						}
					}
				})
				s.Return(jen.Id("zero"), jen.False())
			})

		if _, ptr := dst.Type.(*unionspec.Pointer); ptr {
			continue
		}
		f.Func().
			Params(jen.Id("v").Op("*").Add(g.selfType())).
			Id("TryAs" + dst.Ident + "Ref").
			Params().
			Op("*").Add(g.payloadType(dst)).
			Block(
				jen.If(jen.Id("v").Dot("tag").Op("==").Id(tagConstName(u, dst.Ident))).Block(
					jen.Return(jen.Op("&").Id("v").Dot(fieldName(dst.Ident)))),
				jen.Return(jen.Nil()),
			)
	}
}

// genEqual emits the Eq-derived comparison: tags first, then payload
// equality of the active variant.
func (g *Generator) genEqual(f *jen.File) {
	u := g.u
	f.Line().Commentf("Equal reports whether two %s values hold the same payload.", u.Name)
	f.Func().
		Params(jen.Id("v").Add(g.selfType())).
		Id("Equal").
		Params(jen.Id("o").Add(g.selfType())).
		Bool().
		BlockFunc(func(s *jen.Group) {
			s.If(jen.Id("v").Dot("tag").Op("!=").Id("o").Dot("tag")).Block(
				jen.Return(jen.False()))
			s.Switch(jen.Id("v").Dot("tag")).BlockFunc(func(sw *jen.Group) {
				for _, v := range u.Variants {
					fn := fieldName(v.Ident)
					sw.Case(jen.Id(tagConstName(u, v.Ident))).Block(
						jen.Return(jen.Id("v").Dot(fn).Op("==").Id("o").Dot(fn)))
				}
			})
			s.Return(jen.True())
		})
}

// genCompare emits the Ord-derived ordering: declaration order of the
// tags first, then the payloads. Tuple payloads compare field by field.
func (g *Generator) genCompare(f *jen.File) {
	u := g.u
	f.Line().Commentf("Compare orders two %s values by tag, then payload.", u.Name)
	f.Func().
		Params(jen.Id("v").Add(g.selfType())).
		Id("Compare").
		Params(jen.Id("o").Add(g.selfType())).
		Int().
		BlockFunc(func(s *jen.Group) {
			s.If(
				jen.Id("c").Op(":=").Qual("cmp", "Compare").
					Call(jen.Id("v").Dot("tag"), jen.Id("o").Dot("tag")),
				jen.Id("c").Op("!=").Lit(0),
			).Block(jen.Return(jen.Id("c")))
			s.Switch(jen.Id("v").Dot("tag")).BlockFunc(func(sw *jen.Group) {
				for _, v := range u.Variants {
					v := v
					fn := fieldName(v.Ident)
					if tup, ok := v.Type.(*unionspec.Tuple); ok {
						sw.Case(jen.Id(tagConstName(u, v.Ident))).BlockFunc(func(c *jen.Group) {
							for i := 0; i < len(tup.Elems)-1; i++ {
								tf := tupleField(i)
								c.If(
									jen.Id("c").Op(":=").Qual("cmp", "Compare").Call(
										jen.Id("v").Dot(fn).Dot(tf),
										jen.Id("o").Dot(fn).Dot(tf)),
									jen.Id("c").Op("!=").Lit(0),
								).Block(jen.Return(jen.Id("c")))
							}
							tf := tupleField(len(tup.Elems) - 1)
							c.Return(jen.Qual("cmp", "Compare").Call(
								jen.Id("v").Dot(fn).Dot(tf),
								jen.Id("o").Dot(fn).Dot(tf)))
						})
						continue
					}
					sw.Case(jen.Id(tagConstName(u, v.Ident))).Block(
						jen.Return(jen.Qual("cmp", "Compare").Call(
							jen.Id("v").Dot(fn), jen.Id("o").Dot(fn))))
				}
			})
			s.Return(jen.Lit(0))
		})
}
