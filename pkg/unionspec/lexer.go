package unionspec

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/thorn-jmh/errorst"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenPunct
)

// Pos locates a token inside a definition file for diagnostics.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
	Off  int // byte offset of Text in the source
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Off + len(t.Text)
}

// Lex splits a definition file into tokens. Line comments (`//`) are
// discarded; every other byte must belong to an identifier, a number, a
// double-quoted string, or a single-rune punctuation token.
func Lex(file, src string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			col = 1
			i++
		case c == ' ' || c == '\t' || c == '\r':
			col++
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case isIdentStart(rune(c)):
			start := i
			for i < len(src) && isIdentPart(rune(src[i])) {
				i++
			}
			tokens = append(tokens, Token{
				Kind: TokenIdent,
				Text: src[start:i],
				Pos:  Pos{File: file, Line: line, Col: col},
				Off:  start,
			})
			col += i - start
		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && isIdentPart(rune(src[i])) {
				i++
			}
			tokens = append(tokens, Token{
				Kind: TokenNumber,
				Text: src[start:i],
				Pos:  Pos{File: file, Line: line, Col: col},
				Off:  start,
			})
			col += i - start
		case c == '"':
			start := i
			i++
			for i < len(src) && src[i] != '"' {
				if src[i] == '\n' {
					return nil, errorst.Wrap(ErrWrongSyntax,
						"%s:%d:%d: unterminated string", file, line, col)
				}
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(src) {
				return nil, errorst.Wrap(ErrWrongSyntax,
					"%s:%d:%d: unterminated string", file, line, col)
			}
			i++
			tokens = append(tokens, Token{
				Kind: TokenString,
				Text: src[start:i],
				Pos:  Pos{File: file, Line: line, Col: col},
				Off:  start,
			})
			col += i - start
		case strings.ContainsRune("#[](){},;*.=|&<>-+/%!:", rune(c)):
			tokens = append(tokens, Token{
				Kind: TokenPunct,
				Text: string(c),
				Pos:  Pos{File: file, Line: line, Col: col},
				Off:  i,
			})
			i++
			col++
		default:
			return nil, errorst.Wrap(ErrWrongSyntax,
				"%s:%d:%d: unexpected character %q", file, line, col, c)
		}
	}
	tokens = append(tokens, Token{
		Kind: TokenEOF,
		Pos:  Pos{File: file, Line: line, Col: col},
		Off:  len(src),
	})
	return tokens, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Unquote strips the quotes from a string token and resolves the two
// escapes the mini-language supports.
func Unquote(text string) string {
	s := strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
