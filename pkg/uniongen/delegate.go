package uniongen

import (
	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"uniongen/pkg/unionspec"
)

// genImplBlock emits the user-declared methods of an impl block. Items
// with bodies pass through as written; bodiless signatures become
// tag-switch dispatchers that forward to the held payload.
func (g *Generator) genImplBlock(f *jen.File, block unionspec.ImplBlock) error {
	for _, it := range block.Items {
		g.genPassItem(f, it)
	}
	for _, sig := range block.Methods {
		if !sig.HasRecv {
			g.log.Warn("skipping signature without a receiver, nothing to dispatch on",
				zap.String("method", sig.Name),
				zap.String("pos", sig.Pos.String()))
			continue
		}
		g.genDispatch(f, sig)
	}
	return nil
}

func (g *Generator) recvCode(sig unionspec.MethodSig) jen.Code {
	s := jen.Id(sig.RecvName)
	if sig.PointerRecv {
		s = s.Op("*")
	}
	return s.Add(g.selfType())
}

func argDecls(sig unionspec.MethodSig) []jen.Code {
	decls := make([]jen.Code, len(sig.Params))
	for i, a := range sig.Params {
		decls[i] = jen.Id(a.Name).Id(a.Type)
	}
	return decls
}

func argNames(sig unionspec.MethodSig) []jen.Code {
	names := make([]jen.Code, len(sig.Params))
	for i, a := range sig.Params {
		names[i] = jen.Id(a.Name)
	}
	return names
}

// genPassItem re-emits a bodied item with the union as receiver type.
func (g *Generator) genPassItem(f *jen.File, it unionspec.PassItem) {
	fn := f.Line().Func()
	if it.Sig.HasRecv {
		fn.Params(g.recvCode(it.Sig))
	}
	fn.Id(it.Sig.Name).Params(argDecls(it.Sig)...)
	if it.Sig.Results != "" {
		fn.Id(it.Sig.Results)
	}
	if it.Body == "" {
		fn.Block()
		return
	}
	fn.Block(jen.Id(it.Body))
}

// genDispatch synthesizes the forwarding body for one signature. The
// last variant doubles as the default case so every path terminates.
func (g *Generator) genDispatch(f *jen.File, sig unionspec.MethodSig) {
	u := g.u

	call := func(v unionspec.Variant) jen.Code {
		c := jen.Id(sig.RecvName).Dot(fieldName(v.Ident)).Dot(sig.Name).Call(argNames(sig)...)
		if sig.Results != "" {
			return jen.Return(c)
		}
		return c
	}

	f.Line().Commentf("%s forwards to the held payload.", sig.Name)
	fn := f.Func().Params(g.recvCode(sig)).Id(sig.Name).Params(argDecls(sig)...)
	if sig.Results != "" {
		fn.Id(sig.Results)
	}
	fn.Block(
		jen.Switch(jen.Id(sig.RecvName).Dot("tag")).BlockFunc(func(s *jen.Group) {
			for _, v := range u.Variants[:len(u.Variants)-1] {
				s.Case(jen.Id(tagConstName(u, v.Ident))).Block(call(v))
			}
			s.Default().Block(call(u.Variants[len(u.Variants)-1]))
		}),
	)
}

// genTraits emits each interface block plus a satisfaction assertion.
// Generic unions get no assertion, there is no single type to assert on.
func (g *Generator) genTraits(f *jen.File) error {
	u := g.u
	for _, tb := range u.Traits {
		f.Line().Commentf("%s implementation for %s.", tb.Path, u.Name)
		if err := g.genImplBlock(f, tb.Block); err != nil {
			return err
		}
		if !u.Generic() {
			f.Var().Id("_").Add(g.pathCode(tb.Path)).Op("=").
				Parens(jen.Op("*").Id(u.Name)).Call(jen.Nil())
		}
	}
	return nil
}
