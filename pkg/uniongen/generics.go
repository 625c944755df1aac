package uniongen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/thorn-jmh/errorst"

	"uniongen/pkg/unionspec"
)

// MergeParams joins the union's type parameters with a wrapper's own.
// A name declared on both sides must carry the same constraint; the
// merged list keeps union parameters first.
func MergeParams(union, wrapper []unionspec.Param) ([]unionspec.Param, error) {
	merged := append([]unionspec.Param{}, union...)
	for _, wp := range wrapper {
		dup := false
		for _, up := range union {
			if up.Name != wp.Name {
				continue
			}
			if up.Constraint != wp.Constraint {
				return nil, errorst.Wrap(ErrParamConflict,
					"%s is declared as %q on the union and %q on the wrapper",
					wp.Name, up.Constraint, wp.Constraint)
			}
			dup = true
		}
		if !dup {
			merged = append(merged, wp)
		}
	}
	return merged, nil
}

// FreshParam returns a parameter name based on prefix that collides with
// nothing in scope, appending a growing counter until it is free.
func FreshParam(prefix string, inScope []unionspec.Param) string {
	name := prefix
	for n := 0; ; n++ {
		if n > 0 {
			name = fmt.Sprintf("%s%d", prefix, n)
		}
		taken := false
		for _, p := range inScope {
			if p.Name == name {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
	}
}

// paramDecls renders a parameter list for a declaration site.
func paramDecls(params []unionspec.Param) []jen.Code {
	decls := make([]jen.Code, len(params))
	for i, p := range params {
		decls[i] = jen.Id(p.Name).Id(p.Constraint)
	}
	return decls
}

// paramArgs renders the same list for an instantiation site.
func paramArgs(params []unionspec.Param) []jen.Code {
	args := make([]jen.Code, len(params))
	for i, p := range params {
		args[i] = jen.Id(p.Name)
	}
	return args
}

// instantiate appends [args] when the parameter list is non-empty.
func instantiate(s *jen.Statement, params []unionspec.Param) *jen.Statement {
	if len(params) == 0 {
		return s
	}
	return s.Index(jen.List(paramArgs(params)...))
}

// declare appends [name constraint, ...] when the list is non-empty.
func declare(s *jen.Statement, params []unionspec.Param) *jen.Statement {
	if len(params) == 0 {
		return s
	}
	return s.Types(paramDecls(params)...)
}
