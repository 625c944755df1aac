package unionspec

import (
	"strings"
	"unicode"

	"github.com/thorn-jmh/errorst"
)

type NameStyle interface {
	Format(name string) string
}

type NameStyleFunc func(name string) string

func (f NameStyleFunc) Format(name string) string {
	return f(name)
}

// TitleStyle upper-cases the first letter, leaving the rest alone.
var TitleStyle NameStyleFunc = func(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// LowerStyle lower-cases the first letter, leaving the rest alone.
var LowerStyle NameStyleFunc = func(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// SnakeStyle inserts an underscore before every internal uppercase letter
// and lower-cases the result. An acronym run is split letter by letter
// ("HTTPResponse" -> "h_t_t_p_response"); generated method names depend
// on this byte for byte, so keep it that way.
var SnakeStyle NameStyleFunc = func(name string) string {
	var b strings.Builder
	for i, c := range name {
		if unicode.IsUpper(c) {
			if i > 0 {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}

// DeriveIdent maps a type expression to its display identifier.
//
// Rules, in order of shape:
//   - named type: title-case every path segment, then append the derived
//     identifier of each generic argument ("pkg.List[int]" -> "PkgListInt")
//   - pointer: referent identifier plus "Ref"
//   - array: element identifier plus "Array" plus the title-cased length
//     tokens ("[4]int32" -> "Int32Array4")
//   - slice: element identifier plus "Slice"
//   - tuple: every member must itself derive; concatenation plus "Tuple"
//
// Any other shape is rejected; the caller must supply an explicit name
// via the parenthesized override form.
func DeriveIdent(ty TypeExpr) (string, error) {
	switch t := ty.(type) {
	case *Named:
		var b strings.Builder
		for _, seg := range t.Segments {
			b.WriteString(TitleStyle(seg))
		}
		for _, arg := range t.Args {
			id, err := DeriveIdent(arg)
			if err != nil {
				return "", err
			}
			b.WriteString(id)
		}
		return b.String(), nil
	case *Pointer:
		id, err := DeriveIdent(t.Elem)
		if err != nil {
			return "", err
		}
		return id + "Ref", nil
	case *Array:
		id, err := DeriveIdent(t.Elem)
		if err != nil {
			return "", err
		}
		return id + "Array" + titleTokens(t.Len), nil
	case *Slice:
		id, err := DeriveIdent(t.Elem)
		if err != nil {
			return "", err
		}
		return id + "Slice", nil
	case *Tuple:
		var b strings.Builder
		for _, e := range t.Elems {
			id, err := DeriveIdent(e)
			if err != nil {
				return "", errorst.Wrap(ErrUnsupportedType, "tuple member %s", e)
			}
			b.WriteString(id)
		}
		b.WriteString("Tuple")
		return b.String(), nil
	default:
		return "", errorst.Wrap(ErrUnsupportedType, "cannot derive a name for %s", ty)
	}
}

// titleTokens turns an arbitrary length expression into an identifier
// fragment: split on whitespace, drop anything that is not a letter or a
// digit, title-case each token ("n * 2" -> "N2", "4" -> "4").
func titleTokens(expr string) string {
	var b strings.Builder
	for _, word := range strings.Fields(expr) {
		var token strings.Builder
		for _, c := range word {
			if unicode.IsLetter(c) || unicode.IsDigit(c) {
				token.WriteRune(c)
			}
		}
		b.WriteString(TitleStyle(token.String()))
	}
	return b.String()
}
