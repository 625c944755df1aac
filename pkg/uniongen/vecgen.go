package uniongen

import (
	"github.com/dave/jennifer/jen"

	"uniongen/pkg/unionspec"
)

// genWrapper emits one slice wrapper around the union: the struct, the
// core sequence operations, the conversion-accepting operations, the
// capability-gated families, and the per-variant helpers. Gated families
// follow the wrapper's own capability set.
func (g *Generator) genWrapper(f *jen.File, w *unionspec.VecWrapper) error {
	u := g.u

	mp, err := MergeParams(u.Params, w.Params)
	if err != nil {
		return err
	}

	uType := func() *jen.Statement { return instantiate(jen.Id(u.Name), u.Params) }
	wType := func() *jen.Statement { return instantiate(jen.Id(w.Name), mp) }
	inner := func() *jen.Statement { return jen.Id("w").Dot(w.VecField) }
	method := func(ptr bool) *jen.Statement {
		r := jen.Id("w")
		if ptr {
			r = r.Op("*")
		}
		return f.Func().Params(r.Add(wType()))
	}
	ctor := func(v unionspec.Variant) *jen.Statement {
		return instantiate(jen.Id(ctorName(u, v.Ident)), u.Params)
	}
	zeroU := jen.Var().Id("zero").Add(uType())

	g.genWrapperStruct(f, w, mp)

	// Core sequence operations.
	method(false).Id("Len").Params().Int().Block(
		jen.Return(jen.Len(inner())))
	method(false).Id("Cap").Params().Int().Block(
		jen.Return(jen.Cap(inner())))
	method(false).Id("IsEmpty").Params().Bool().Block(
		jen.Return(jen.Len(inner()).Op("==").Lit(0)))
	method(true).Id("Clear").Params().Block(
		inner().Op("=").Add(inner()).Index(jen.Op(":").Lit(0)))
	method(true).Id("Truncate").Params(jen.Id("n").Int()).Block(
		jen.If(jen.Id("n").Op("<").Len(inner())).Block(
			inner().Op("=").Add(inner()).Index(jen.Op(":").Id("n"))))
	method(false).Id("Get").Params(jen.Id("i").Int()).Add(uType()).Block(
		jen.Return(inner().Index(jen.Id("i"))))
	method(true).Id("Set").Params(jen.Id("i").Int(), jen.Id("v").Add(uType())).Block(
		inner().Index(jen.Id("i")).Op("=").Id("v"))
	method(true).Id("Swap").Params(jen.Id("i").Int(), jen.Id("j").Int()).Block(
		jen.List(inner().Index(jen.Id("i")), inner().Index(jen.Id("j"))).Op("=").
			List(inner().Index(jen.Id("j")), inner().Index(jen.Id("i"))))
	method(true).Id("Reverse").Params().Block(
		jen.Qual("slices", "Reverse").Call(inner()))
	method(true).Id("Remove").Params(jen.Id("i").Int()).Add(uType()).Block(
		jen.Id("v").Op(":=").Add(inner()).Index(jen.Id("i")),
		inner().Op("=").Qual("slices", "Delete").
			Call(inner(), jen.Id("i"), jen.Id("i").Op("+").Lit(1)),
		jen.Return(jen.Id("v")))
	method(true).Id("SwapRemove").Params(jen.Id("i").Int()).Add(uType()).Block(
		jen.Id("v").Op(":=").Add(inner()).Index(jen.Id("i")),
		jen.Id("last").Op(":=").Len(inner()).Op("-").Lit(1),
		inner().Index(jen.Id("i")).Op("=").Add(inner()).Index(jen.Id("last")),
		inner().Op("=").Add(inner()).Index(jen.Op(":").Id("last")),
		jen.Return(jen.Id("v")))
	method(true).Id("Pop").Params().Params(uType(), jen.Bool()).Block(
		zeroU.Clone(),
		jen.If(jen.Len(inner()).Op("==").Lit(0)).Block(
			jen.Return(jen.Id("zero"), jen.False())),
		jen.Id("last").Op(":=").Len(inner()).Op("-").Lit(1),
		jen.Id("v").Op(":=").Add(inner()).Index(jen.Id("last")),
		inner().Op("=").Add(inner()).Index(jen.Op(":").Id("last")),
		jen.Return(jen.Id("v"), jen.True()))
	method(false).Id("First").Params().Params(uType(), jen.Bool()).Block(
		zeroU.Clone(),
		jen.If(jen.Len(inner()).Op("==").Lit(0)).Block(
			jen.Return(jen.Id("zero"), jen.False())),
		jen.Return(inner().Index(jen.Lit(0)), jen.True()))
	method(false).Id("Last").Params().Params(uType(), jen.Bool()).Block(
		zeroU.Clone(),
		jen.If(jen.Len(inner()).Op("==").Lit(0)).Block(
			jen.Return(jen.Id("zero"), jen.False())),
		jen.Return(inner().Index(jen.Len(inner()).Op("-").Lit(1)), jen.True()))
	method(true).Id("Append").Params(jen.Id("vs").Op("...").Add(uType())).Block(
		inner().Op("=").Append(inner(), jen.Id("vs").Op("...")))
	method(true).Id("Retain").Params(jen.Id("keep").Func().Params(uType()).Bool()).Block(
		inner().Op("=").Qual("slices", "DeleteFunc").Call(inner(),
			jen.Func().Params(jen.Id("v").Add(uType())).Bool().Block(
				jen.Return(jen.Op("!").Id("keep").Call(jen.Id("v"))))))
	method(false).Id("Range").Params(jen.Id("fn").Func().Params(jen.Int(), uType()).Bool()).Block(
		jen.For(jen.List(jen.Id("i"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Op("!").Id("fn").Call(jen.Id("i"), jen.Id("v"))).Block(
				jen.Return())))
	method(false).Id("AsSlice").Params().Index().Add(uType()).Block(
		jen.Return(inner()))

	// Conversion-accepting operations.
	method(true).Id("Push").Params(jen.Id("v").Add(uType())).Block(
		inner().Op("=").Append(inner(), jen.Id("v")))
	for _, v := range u.Variants {
		v := v
		method(true).Id("Push" + v.Ident).Params(jen.Id("v").Add(g.payloadType(v))).Block(
			inner().Op("=").Append(inner(), ctor(v).Call(jen.Id("v"))))
	}
	method(true).Id("Insert").Params(jen.Id("i").Int(), jen.Id("v").Add(uType())).Block(
		inner().Op("=").Qual("slices", "Insert").Call(inner(), jen.Id("i"), jen.Id("v")))

	if w.Derives.Eq {
		method(true).Id("Dedup").Params().Block(
			inner().Op("=").Qual("slices", "CompactFunc").
				Call(inner(), jen.Parens(uType()).Dot("Equal")))
		method(false).Id("Contains").Params(jen.Id("v").Add(uType())).Bool().Block(
			jen.Return(jen.Qual("slices", "ContainsFunc").
				Call(inner(), jen.Id("v").Dot("Equal"))))
		method(false).Id("IndexOf").Params(jen.Id("v").Add(uType())).Int().Block(
			jen.Return(jen.Qual("slices", "IndexFunc").
				Call(inner(), jen.Id("v").Dot("Equal"))))
	}

	if w.Derives.Ord {
		method(true).Id("Sort").Params().Block(
			jen.Qual("slices", "SortFunc").Call(inner(), jen.Parens(uType()).Dot("Compare")))
		method(true).Id("SortStable").Params().Block(
			jen.Qual("slices", "SortStableFunc").Call(inner(), jen.Parens(uType()).Dot("Compare")))
		method(false).Id("IsSorted").Params().Bool().Block(
			jen.Return(jen.Qual("slices", "IsSortedFunc").
				Call(inner(), jen.Parens(uType()).Dot("Compare"))))
		method(false).Id("BinarySearch").Params(jen.Id("v").Add(uType())).
			Params(jen.Int(), jen.Bool()).Block(
			jen.Return(jen.Qual("slices", "BinarySearchFunc").
				Call(inner(), jen.Id("v"), jen.Parens(uType()).Dot("Compare"))))
		method(false).Id("Min").Params().Params(uType(), jen.Bool()).Block(
			zeroU.Clone(),
			jen.If(jen.Len(inner()).Op("==").Lit(0)).Block(
				jen.Return(jen.Id("zero"), jen.False())),
			jen.Return(jen.Qual("slices", "MinFunc").
				Call(inner(), jen.Parens(uType()).Dot("Compare")), jen.True()))
		method(false).Id("Max").Params().Params(uType(), jen.Bool()).Block(
			zeroU.Clone(),
			jen.If(jen.Len(inner()).Op("==").Lit(0)).Block(
				jen.Return(jen.Id("zero"), jen.False())),
			jen.Return(jen.Qual("slices", "MaxFunc").
				Call(inner(), jen.Parens(uType()).Dot("Compare")), jen.True()))
	}

	if w.Derives.Default {
		f.Line().Commentf("New%s returns an empty wrapper.", w.Name)
		declare(f.Func().Id("New"+w.Name), mp).Params().Add(wType()).Block(
			jen.Return(wType().Values()))
		declare(f.Func().Id("New"+w.Name+"WithCapacity"), mp).
			Params(jen.Id("n").Int()).Add(wType()).Block(
			jen.Return(wType().Values(jen.Dict{
				jen.Id(w.VecField): jen.Make(jen.Index().Add(uType()), jen.Lit(0), jen.Id("n")),
			})))
		method(true).Id("SplitOff").Params(jen.Id("i").Int()).Add(wType()).Block(
			jen.Id("tail").Op(":=").Qual("slices", "Clone").
				Call(inner().Index(jen.Id("i").Op(":"))),
			inner().Op("=").Add(inner()).Index(jen.Op(":").Id("i")),
			jen.Return(wType().Values(jen.Dict{jen.Id(w.VecField): jen.Id("tail")})))
		declare(f.Func().Id(w.Name+"FromSlice"), mp).
			Params(jen.Id("vs").Index().Add(uType())).Add(wType()).Block(
			jen.Return(wType().Values(jen.Dict{
				jen.Id(w.VecField): jen.Qual("slices", "Clone").Call(jen.Id("vs")),
			})))
	}

	if w.Derives.Clone {
		method(false).Id("ToSlice").Params().Index().Add(uType()).Block(
			jen.Return(jen.Qual("slices", "Clone").Call(inner())))
		method(true).Id("ExtendFromSlice").Params(jen.Id("vs").Index().Add(uType())).Block(
			inner().Op("=").Append(inner(), jen.Id("vs").Op("...")))
		method(true).Id("Fill").Params(jen.Id("v").Add(uType())).Block(
			jen.For(jen.Id("i").Op(":=").Range().Add(inner())).Block(
				inner().Index(jen.Id("i")).Op("=").Id("v")))
		method(true).Id("Resize").Params(jen.Id("n").Int(), jen.Id("v").Add(uType())).Block(
			jen.For(jen.Len(inner()).Op("<").Id("n")).Block(
				inner().Op("=").Append(inner(), jen.Id("v"))),
			jen.If(jen.Len(inner()).Op(">").Id("n")).Block(
				inner().Op("=").Add(inner()).Index(jen.Op(":").Id("n"))))
	}

	if w.Derives.Copy {
		method(true).Id("CopyFromSlice").Params(jen.Id("vs").Index().Add(uType())).Block(
			inner().Op("=").Append(inner().Index(jen.Op(":").Lit(0)), jen.Id("vs").Op("...")))
		method(true).Id("CopyWithin").
			Params(jen.Id("dst").Int(), jen.Id("src").Int(), jen.Id("n").Int()).Block(
			jen.Copy(
				inner().Index(jen.Id("dst").Op(":").Id("dst").Op("+").Id("n")),
				inner().Index(jen.Id("src").Op(":").Id("src").Op("+").Id("n"))))
	}

	for _, v := range u.Variants {
		g.genVariantFamily(f, w, mp, v)
	}

	if !u.Generic() && w.Derives.Default && w.Derives.Clone {
		g.genLiteralHelpers(f, w, mp)
	}
	return nil
}

func (g *Generator) genWrapperStruct(f *jen.File, w *unionspec.VecWrapper, mp []unionspec.Param) {
	u := g.u

	for _, a := range w.Attrs {
		f.Commentf("uniongen:%s", a.Raw)
	}
	f.Line().Commentf("%s wraps a sequence of %s values.", w.Name, u.Name)
	declare(f.Type().Id(w.Name), mp).StructFunc(func(s *jen.Group) {
		for _, fd := range w.ExtraFields {
			s.Id(fd.Name).Id(fd.Type)
		}
		s.Id(w.VecField).Index().Add(instantiate(jen.Id(u.Name), u.Params))
	})
}

// genVariantFamily emits the per-variant sequence helpers. Ref accessors
// are skipped for pointer payloads.
func (g *Generator) genVariantFamily(f *jen.File, w *unionspec.VecWrapper, mp []unionspec.Param, v unionspec.Variant) {
	u := g.u
	_, ptrPayload := v.Type.(*unionspec.Pointer)

	pType := func() jen.Code { return g.payloadType(v) }
	wType := func() *jen.Statement { return instantiate(jen.Id(w.Name), mp) }
	inner := func() *jen.Statement { return jen.Id("w").Dot(w.VecField) }
	method := func(ptr bool) *jen.Statement {
		r := jen.Id("w")
		if ptr {
			r = r.Op("*")
		}
		return f.Func().Params(r.Add(wType()))
	}
	tag := tagConstName(u, v.Ident)
	payload := fieldName(v.Ident)

	f.Line().Commentf("%s helpers over the wrapped sequence.", v.Ident)

	method(false).Id("First"+v.Ident).Params().Params(pType(), jen.Bool()).Block(
		jen.Var().Id("zero").Add(pType()),
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("==").Id(tag)).Block(
				jen.Return(jen.Id("v").Dot(payload), jen.True()))),
		jen.Return(jen.Id("zero"), jen.False()))

	method(false).Id("Last"+v.Ident).Params().Params(pType(), jen.Bool()).Block(
		jen.Var().Id("zero").Add(pType()),
		jen.For(jen.Id("i").Op(":=").Len(inner()).Op("-").Lit(1),
			jen.Id("i").Op(">=").Lit(0), jen.Id("i").Op("--")).Block(
			jen.If(inner().Index(jen.Id("i")).Dot("tag").Op("==").Id(tag)).Block(
				jen.Return(inner().Index(jen.Id("i")).Dot(payload), jen.True()))),
		jen.Return(jen.Id("zero"), jen.False()))

	if !ptrPayload {
		method(true).Id("First"+v.Ident+"Ref").Params().Op("*").Add(pType()).Block(
			jen.For(jen.Id("i").Op(":=").Range().Add(inner())).Block(
				jen.If(inner().Index(jen.Id("i")).Dot("tag").Op("==").Id(tag)).Block(
					jen.Return(jen.Op("&").Add(inner()).Index(jen.Id("i")).Dot(payload)))),
			jen.Return(jen.Nil()))
		method(true).Id("Last"+v.Ident+"Ref").Params().Op("*").Add(pType()).Block(
			jen.For(jen.Id("i").Op(":=").Len(inner()).Op("-").Lit(1),
				jen.Id("i").Op(">=").Lit(0), jen.Id("i").Op("--")).Block(
				jen.If(inner().Index(jen.Id("i")).Dot("tag").Op("==").Id(tag)).Block(
					jen.Return(jen.Op("&").Add(inner()).Index(jen.Id("i")).Dot(payload)))),
			jen.Return(jen.Nil()))
	}

	method(false).Id("Iter"+v.Ident).Params().Index().Add(pType()).Block(
		jen.Var().Id("out").Index().Add(pType()),
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("==").Id(tag)).Block(
				jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("v").Dot(payload)))),
		jen.Return(jen.Id("out")))

	if !ptrPayload {
		method(true).Id("Iter"+v.Ident+"Ref").Params().Index().Op("*").Add(pType()).Block(
			jen.Var().Id("out").Index().Op("*").Add(pType()),
			jen.For(jen.Id("i").Op(":=").Range().Add(inner())).Block(
				jen.If(inner().Index(jen.Id("i")).Dot("tag").Op("==").Id(tag)).Block(
					jen.Id("out").Op("=").Append(jen.Id("out"),
						jen.Op("&").Add(inner()).Index(jen.Id("i")).Dot(payload)))),
			jen.Return(jen.Id("out")))
	}

	method(false).Id("Range"+v.Ident).
		Params(jen.Id("fn").Func().Params(jen.Int(), pType()).Bool()).Block(
		jen.For(jen.List(jen.Id("i"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("!=").Id(tag)).Block(jen.Continue()),
			jen.If(jen.Op("!").Id("fn").Call(jen.Id("i"), jen.Id("v").Dot(payload))).Block(
				jen.Return())))

	method(false).Id("Count"+v.Ident).Params().Int().Block(
		jen.Id("n").Op(":=").Lit(0),
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("==").Id(tag)).Block(
				jen.Id("n").Op("++"))),
		jen.Return(jen.Id("n")))

	method(false).Id("All"+v.Ident).Params().Bool().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("!=").Id(tag)).Block(
				jen.Return(jen.False()))),
		jen.Return(jen.True()))

	method(false).Id("Any"+v.Ident).Params().Bool().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(inner())).Block(
			jen.If(jen.Id("v").Dot("tag").Op("==").Id(tag)).Block(
				jen.Return(jen.True()))),
		jen.Return(jen.False()))
}

// genLiteralHelpers emits the list-form and repeat-form constructors
// accepting any held payload type.
func (g *Generator) genLiteralHelpers(f *jen.File, w *unionspec.VecWrapper, mp []unionspec.Param) {
	u := g.u

	fresh := FreshParam("V", mp)
	wType := func() *jen.Statement { return instantiate(jen.Id(w.Name), mp) }
	params := append(paramDecls(mp), jen.Id(fresh).Id(likeName(u)))

	f.Line().Commentf("%sOf builds a wrapper from any mix of held payload values.", w.Name)
	f.Func().Id(w.Name+"Of").Types(params...).
		Params(jen.Id("vs").Op("...").Id(fresh)).Add(wType()).Block(
		jen.Id("w").Op(":=").Add(instantiate(jen.Id("New"+w.Name), mp)).Call(),
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id("vs")).Block(
			jen.Id("w").Dot("Push").Call(jen.Id(bridgeName(u)).Call(jen.Id("v")))),
		jen.Return(jen.Id("w")))

	f.Commentf("%sRepeat builds a wrapper holding n copies of one value.", w.Name)
	f.Func().Id(w.Name+"Repeat").Types(params...).
		Params(jen.Id("v").Id(fresh), jen.Id("n").Int()).Add(wType()).Block(
		jen.Id("w").Op(":=").Add(instantiate(jen.Id("New"+w.Name+"WithCapacity"), mp)).Call(jen.Id("n")),
		jen.Id("u").Op(":=").Id(bridgeName(u)).Call(jen.Id("v")),
		jen.For(jen.Id("i").Op(":=").Lit(0), jen.Id("i").Op("<").Id("n"), jen.Id("i").Op("++")).Block(
			jen.Id("w").Dot("Push").Call(jen.Id("u"))),
		jen.Return(jen.Id("w")))
}
