package uniongen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uniongen/pkg/unionspec"
)

func parseOK(t *testing.T, src string) *unionspec.Union {
	t.Helper()
	u, err := unionspec.Parse("test.union", src)
	require.NoError(t, err)
	return u
}

func render(t *testing.T, src string) string {
	t.Helper()
	out, err := New(parseOK(t, src), nil).Render("shapes")
	require.NoError(t, err)
	return out
}

func TestGenerateTagAndStruct(t *testing.T) {
	out := render(t, `
		enum Value {
			int32,
			*string,
			(int32, string),
		}
	`)

	assert.Contains(t, out, "Code generated by uniongen. DO NOT EDIT.")
	assert.Contains(t, out, "package shapes")
	assert.Contains(t, out, "type ValueTag uint8")
	assert.Contains(t, out, "ValueTagInt32 ValueTag = iota")
	assert.Contains(t, out, "ValueTagStringRef")
	assert.Contains(t, out, "ValueTagInt32StringTuple")
	assert.Contains(t, out, "type Value struct")
	assert.Regexp(t, `tag\s+ValueTag`, out)
	assert.Regexp(t, `int32V\s+int32`, out)
	assert.Regexp(t, `stringRefV\s+\*string`, out)

	// Tuples get a named payload struct since Go has none.
	assert.Contains(t, out, "type Int32StringTuple struct")
	assert.Contains(t, out, "F0 int32")
	assert.Contains(t, out, "F1 string")
}

func TestGenerateConstructorsAndBridge(t *testing.T) {
	out := render(t, `
		enum Value {
			int32,
			*string,
		}
	`)

	assert.Contains(t, out, "func ValueFromInt32(v int32) Value")
	assert.Contains(t, out, "func ValueFromStringRef(v *string) Value")
	assert.Regexp(t, `tag:\s+ValueTagInt32`, out)

	assert.Contains(t, out, "type ValueLike interface")
	assert.Contains(t, out, "int32 | *string")
	assert.Contains(t, out, "func ToValue[V ValueLike](v V) Value")
	assert.Contains(t, out, "switch x := any(v).(type)")
	assert.Contains(t, out, "return ValueFromInt32(x)")
}

func TestGenerateTryInto(t *testing.T) {
	out := render(t, `
		enum Num {
			int64,
			#[into(int64)]
			int32,
			*string,
		}
		impl try_into;
	`)

	assert.Contains(t, out, "func (v Num) TryIntoInt64() (int64, error)")
	// The declared conversion succeeds instead of failing.
	assert.Contains(t, out, "return int64(v.int32V), nil")
	assert.Contains(t, out, `errors.New("no conversion from '*string' to 'int64'")`)
	assert.Contains(t, out, "var zero int64")

	// Without #[into], the reverse direction still fails.
	assert.Contains(t, out, `errors.New("no conversion from 'int64' to 'int32'")`)
}

func TestGenerateIntrospection(t *testing.T) {
	out := render(t, `
		enum Value {
			int32,
			*string,
			(int32, string),
		}
		impl introspection;
	`)

	assert.Contains(t, out, "const ValueVariantCount = 3")
	assert.Contains(t, out, "func ValueTypes() []string")
	assert.Contains(t, out, `"int32", "*string", "(int32, string)"`)
	assert.Contains(t, out, "func (v Value) TypeName() string")
	assert.Contains(t, out, `return "(int32, string)"`)
}

func TestGenerateAccessors(t *testing.T) {
	out := render(t, `
		enum Value {
			int64,
			#[into(int64)]
			int32,
			*string,
		}
		impl is_as;
	`)

	assert.Contains(t, out, "func (v Value) IsInt32() bool")
	assert.Contains(t, out, "func (v Value) TryAsInt64() (int64, bool)")
	assert.Contains(t, out, "return int64(v.int32V), true")
	assert.Contains(t, out, "func (v *Value) TryAsInt64Ref() *int64")

	// Pointer payloads are already references.
	assert.Contains(t, out, "func (v Value) TryAsStringRef() (*string, bool)")
	assert.NotContains(t, out, "TryAsStringRefRef")
}

func TestGenerateFeaturesAreGated(t *testing.T) {
	out := render(t, `enum Value { int32, int64 }`)

	assert.NotContains(t, out, "TryInto")
	assert.NotContains(t, out, "VariantCount")
	assert.NotContains(t, out, "TypeName")
	assert.NotContains(t, out, "IsInt32")
}

func TestGenerateDerivedComparisons(t *testing.T) {
	out := render(t, `
		#[derive(Eq, Ord)]
		enum Value {
			int32,
			(int32, string),
		}
	`)

	assert.Contains(t, out, "func (v Value) Equal(o Value) bool")
	assert.Contains(t, out, "return v.int32V == o.int32V")
	assert.Contains(t, out, "func (v Value) Compare(o Value) int")
	assert.Contains(t, out, "cmp.Compare(v.tag, o.tag)")
	// Tuple payloads compare field by field.
	assert.Contains(t, out, "v.int32StringTupleV.F0")
	assert.Contains(t, out, "v.int32StringTupleV.F1")
}

func TestGenerateGenericUnion(t *testing.T) {
	out := render(t, `
		enum Box[T any] {
			T,
			List([]T),
		}
	`)

	assert.Contains(t, out, "type Box[T any] struct")
	assert.Contains(t, out, "func BoxFromT[T any](v T) Box[T]")
	assert.Contains(t, out, "func BoxFromList[T any](v []T) Box[T]")

	// No constraint union for generic unions.
	assert.NotContains(t, out, "BoxLike")
	assert.NotContains(t, out, "func ToBox")
}

func TestGenerateAnnotationComments(t *testing.T) {
	out := render(t, `
		#[serde(rename_all = "camelCase")]
		enum Value {
			#[deprecated("use int64")]
			int32,
			int64,
		}
	`)

	assert.Contains(t, out, `uniongen:serde(rename_all = "camelCase")`)
	assert.Contains(t, out, `uniongen:deprecated("use int64")`)
}

func TestGenerateModulePathImports(t *testing.T) {
	u, err := unionspec.Parse("test.union", `
		#[module_path = "github.com/acme/shapes"]
		#[import("github.com/acme/geo")]
		enum Shape {
			geo.Point,
			int32,
		}
	`)
	require.NoError(t, err)
	out, err := New(u, nil).Render("shapes")
	require.NoError(t, err)

	assert.Contains(t, out, `"github.com/acme/geo"`)
	assert.Regexp(t, `geoPointV\s+geo\.Point`, out)
	assert.Contains(t, out, "func ShapeFromGeoPoint(v geo.Point) Shape")
}

func TestSaveWritesFile(t *testing.T) {
	u := parseOK(t, `enum Value { int32, int64 }`)
	dir := t.TempDir()
	require.NoError(t, New(u, zap.NewNop()).Save(dir, "shapes"))

	b, err := os.ReadFile(filepath.Join(dir, "value_union.go"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "package shapes")
	assert.Contains(t, string(b), "type Value struct")
}

func TestOutFileName(t *testing.T) {
	assert.Equal(t, "value_union.go",
		OutFileName(&unionspec.Union{Name: "Value"}))
	assert.Equal(t, "h_t_t_p_response_union.go",
		OutFileName(&unionspec.Union{Name: "HTTPResponse"}))
}

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "int32", lowerCamel("Int32"))
	assert.Equal(t, "stringRef", lowerCamel("StringRef"))
	assert.Equal(t, "int32V", fieldName("Int32"))
}
