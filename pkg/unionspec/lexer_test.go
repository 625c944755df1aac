package unionspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexKindsAndPositions(t *testing.T) {
	toks, err := Lex("def.union", "enum Foo { // payload list\n  int32,\n}")
	require.NoError(t, err)

	var texts []string
	for _, tok := range toks {
		if tok.Kind != TokenEOF {
			texts = append(texts, tok.Text)
		}
	}
	assert.Equal(t, []string{"enum", "Foo", "{", "int32", ",", "}"}, texts)

	assert.Equal(t, TokenIdent, toks[0].Kind)
	assert.Equal(t, "def.union:1:1", toks[0].Pos.String())
	// int32 sits on line 2 behind two spaces.
	assert.Equal(t, "def.union:2:3", toks[3].Pos.String())
}

func TestLexStrings(t *testing.T) {
	toks, err := Lex("", `#[module_path = "github.com/acme/shapes"]`)
	require.NoError(t, err)
	require.Equal(t, TokenString, toks[4].Kind)
	assert.Equal(t, "github.com/acme/shapes", Unquote(toks[4].Text))

	_, err = Lex("", `"never closed`)
	assert.ErrorContains(t, err, "unterminated string")
}

func TestLexRejectsStrayBytes(t *testing.T) {
	_, err := Lex("", "enum Foo { $ }")
	assert.ErrorContains(t, err, "unexpected character")
}

func TestLexOffsets(t *testing.T) {
	src := "vec Shapes;"
	toks, err := Lex("", src)
	require.NoError(t, err)
	assert.Equal(t, "Shapes", src[toks[1].Off:toks[1].End()])
}
