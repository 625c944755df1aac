package uniongen

import (
	"unicode"

	"uniongen/pkg/unionspec"
)

// Naming scheme of the generated declarations. Everything hangs off the
// union's name so several unions can share a package.

func lowerCamel(name string) string {
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fieldName is the payload field for a variant. The V suffix keeps
// lower-cased idents like "int32" from colliding with their type.
func fieldName(ident string) string {
	return lowerCamel(ident) + "V"
}

func tagTypeName(u *unionspec.Union) string {
	return u.Name + "Tag"
}

func tagConstName(u *unionspec.Union, ident string) string {
	return u.Name + "Tag" + ident
}

func ctorName(u *unionspec.Union, ident string) string {
	return u.Name + "From" + ident
}

func likeName(u *unionspec.Union) string {
	return u.Name + "Like"
}

func bridgeName(u *unionspec.Union) string {
	return "To" + u.Name
}

// OutFileName is the generated file's name for a union definition.
func OutFileName(u *unionspec.Union) string {
	return unionspec.SnakeStyle(u.Name) + "_union.go"
}
