package unionspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Union {
	t.Helper()
	u, err := Parse("test.union", src)
	require.NoError(t, err)
	return u
}

func TestParseBasicUnion(t *testing.T) {
	u := mustParse(t, `
		enum Value {
			int32,
			*string,
			(int32, string),
		}
	`)

	assert.Equal(t, "Value", u.Name)
	require.Len(t, u.Variants, 3)
	assert.Equal(t, "Int32", u.Variants[0].Ident)
	assert.Equal(t, "StringRef", u.Variants[1].Ident)
	assert.Equal(t, "Int32StringTuple", u.Variants[2].Ident)
	assert.False(t, u.Generic())
	assert.Empty(t, u.Wrappers)
	assert.True(t, u.Features.None())
}

func TestParseOverrideName(t *testing.T) {
	u := mustParse(t, `
		enum Payload {
			Blob(map[string]any),
			int32,
		}
	`)
	require.Len(t, u.Variants, 2)
	assert.Equal(t, "Blob", u.Variants[0].Ident)
	assert.Equal(t, "map[string]any", u.Variants[0].Type.String())
}

func TestParseUnderivableNeedsOverride(t *testing.T) {
	_, err := Parse("test.union", `enum P { map[string]int }`)
	assert.ErrorContains(t, err, "unsupported type")
}

func TestParseDuplicateType(t *testing.T) {
	_, err := Parse("test.union", `enum P { int32, int32 }`)
	assert.ErrorContains(t, err, "duplicate variant")
}

func TestParseDuplicateIdent(t *testing.T) {
	// []byte derives ByteSlice, which the override then collides with.
	_, err := Parse("test.union", `enum P { []byte, ByteSlice(string) }`)
	assert.ErrorContains(t, err, "duplicate variant")
}

func TestParseEmptyEnum(t *testing.T) {
	_, err := Parse("test.union", `enum P { }`)
	assert.ErrorContains(t, err, "wraps no types")
}

func TestParseInto(t *testing.T) {
	u := mustParse(t, `
		enum Num {
			int64,
			#[into(int64)]
			int32,
		}
	`)
	require.Len(t, u.Variants, 2)
	require.Len(t, u.Variants[1].Into, 1)
	assert.Equal(t, "int64", u.Variants[1].Into[0].String())
}

func TestParseDerives(t *testing.T) {
	u := mustParse(t, `
		#[derive(Eq, Ord, Default, Clone)]
		enum Num { int32, int64 }
	`)
	assert.True(t, u.Derives.Eq)
	assert.True(t, u.Derives.Ord)
	assert.True(t, u.Derives.Default)
	assert.True(t, u.Derives.Clone)
	assert.False(t, u.Derives.Copy)
	assert.Empty(t, u.Attrs)
}

func TestParseUnknownAnnotationsPassThrough(t *testing.T) {
	u := mustParse(t, `
		#[derive(Eq, Serialize)]
		#[deprecated]
		enum Num { int32 }
	`)
	assert.True(t, u.Derives.Eq)
	require.Len(t, u.Attrs, 2)
	assert.Equal(t, "derive", u.Attrs[0].Name)
	assert.Equal(t, "deprecated", u.Attrs[1].Name)
}

func TestParseModulePathAndImports(t *testing.T) {
	u := mustParse(t, `
		#[module_path = "github.com/acme/shapes"]
		#[import("github.com/acme/geo")]
		enum Shape { geo.Point, int32 }
	`)
	assert.Equal(t, "github.com/acme/shapes", u.ModulePath)
	assert.Equal(t, "github.com/acme/geo", u.Imports["geo"])
}

func TestParseFeatureList(t *testing.T) {
	u := mustParse(t, `
		enum V { int32 }
		impl try_into, is_as;
		impl introspection;
	`)
	assert.True(t, u.Features.TryInto)
	assert.True(t, u.Features.IsAs)
	assert.True(t, u.Features.Introspection)
}

func TestParseUnknownFeature(t *testing.T) {
	_, err := Parse("test.union", `
		enum V { int32 }
		impl try_into, frobnicate;
	`)
	assert.ErrorContains(t, err, "unknown feature")
}

func TestParseTraitBlock(t *testing.T) {
	u := mustParse(t, `
		enum V { int32, int64 }
		impl fmt.Stringer {
			func (v) String() string;
		}
	`)
	require.Len(t, u.Traits, 1)
	tb := u.Traits[0]
	assert.Equal(t, "fmt.Stringer", tb.Path)
	require.Len(t, tb.Block.Methods, 1)
	sig := tb.Block.Methods[0]
	assert.Equal(t, "String", sig.Name)
	assert.True(t, sig.HasRecv)
	assert.Equal(t, "v", sig.RecvName)
	assert.Equal(t, "string", sig.Results)
}

func TestParseImplBlock(t *testing.T) {
	u := mustParse(t, `
		enum V { int32, int64 }
		impl {
			func (*v) Scale(factor float64) error;
			func (v) Describe() string {
				return "a value"
			}
			func Orphan() int;
		}
	`)

	require.Len(t, u.Impl.Methods, 2)
	scale := u.Impl.Methods[0]
	assert.True(t, scale.PointerRecv)
	require.Len(t, scale.Params, 1)
	assert.Equal(t, "factor", scale.Params[0].Name)
	assert.Equal(t, "float64", scale.Params[0].Type)
	assert.Equal(t, "error", scale.Results)

	orphan := u.Impl.Methods[1]
	assert.False(t, orphan.HasRecv)

	require.Len(t, u.Impl.Items, 1)
	assert.Equal(t, "Describe", u.Impl.Items[0].Sig.Name)
	assert.Contains(t, u.Impl.Items[0].Body, `return "a value"`)
}

func TestParseGenericParams(t *testing.T) {
	u := mustParse(t, `
		enum Box[T any, K comparable] {
			T,
			Pairs(map[K]T),
		}
	`)
	require.Len(t, u.Params, 2)
	assert.Equal(t, Param{Name: "T", Constraint: "any"}, u.Params[0])
	assert.Equal(t, Param{Name: "K", Constraint: "comparable"}, u.Params[1])
	assert.True(t, u.Generic())
}

func TestParseSharedConstraint(t *testing.T) {
	u := mustParse(t, `enum Pair[T, U any] { T, Second(U) }`)
	require.Len(t, u.Params, 2)
	assert.Equal(t, "any", u.Params[0].Constraint)
	assert.Equal(t, "any", u.Params[1].Constraint)
}

func TestParseStandardWrapper(t *testing.T) {
	u := mustParse(t, `
		enum Shape { int32, int64 }
		vec;
	`)
	require.Len(t, u.Wrappers, 1)
	w := u.Wrappers[0]
	assert.Equal(t, "ShapeVec", w.Name)
	assert.Equal(t, "inner", w.VecField)
	assert.False(t, w.Custom)
	// Always default-constructible, even without union derives.
	assert.True(t, w.Derives.Default)
	assert.False(t, w.Derives.Eq)
}

func TestParseNamedWrapper(t *testing.T) {
	u := mustParse(t, `
		enum Shape { int32 }
		vec Shapes;
	`)
	require.Len(t, u.Wrappers, 1)
	assert.Equal(t, "Shapes", u.Wrappers[0].Name)
}

func TestParseCustomWrapper(t *testing.T) {
	u := mustParse(t, `
		enum Shape { int32, int64 }
		#[vec(items)]
		#[derive(Eq, Serialize)]
		struct Canvas {
			name string;
			width int;
		}
	`)
	require.Len(t, u.Wrappers, 1)
	w := u.Wrappers[0]
	assert.True(t, w.Custom)
	// The wrapper's own derive list gates its operations; unknown
	// entries stay as pass-through annotations.
	assert.True(t, w.Derives.Eq)
	assert.False(t, w.Derives.Default)
	require.Len(t, w.Attrs, 1)
	assert.Equal(t, "derive", w.Attrs[0].Name)
	assert.Equal(t, "Canvas", w.Name)
	assert.Equal(t, "items", w.VecField)
	require.Len(t, w.ExtraFields, 2)
	assert.Equal(t, Field{Name: "name", Type: "string"}, w.ExtraFields[0])
	assert.Equal(t, Field{Name: "width", Type: "int"}, w.ExtraFields[1])
}

func TestParseCustomWrapperNeedsVec(t *testing.T) {
	_, err := Parse("test.union", `
		enum Shape { int32 }
		#[frozen]
		struct Canvas { name string; }
	`)
	assert.ErrorContains(t, err, "#[vec]")
}

func TestParseWrapperFieldCollision(t *testing.T) {
	_, err := Parse("test.union", `
		enum Shape { int32 }
		#[vec(items)]
		struct Canvas { items string; }
	`)
	assert.ErrorContains(t, err, "collides")
}

func TestParseMultipleWrappers(t *testing.T) {
	u := mustParse(t, `
		enum Shape { int32 }
		vec;
		vec Other;
		#[vec(items)]
		struct Canvas { name string; }
	`)
	require.Len(t, u.Wrappers, 3)
	assert.Equal(t, "ShapeVec", u.Wrappers[0].Name)
	assert.Equal(t, "Other", u.Wrappers[1].Name)
	assert.Equal(t, "Canvas", u.Wrappers[2].Name)
}

func TestParseVariantAttrsPassThrough(t *testing.T) {
	u := mustParse(t, `
		enum V {
			#[deprecated("use int64")]
			int32,
			int64,
		}
	`)
	require.Len(t, u.Variants[0].Attrs, 1)
	assert.Equal(t, "deprecated", u.Variants[0].Attrs[0].Name)
}
