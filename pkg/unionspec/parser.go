package unionspec

import (
	"path"
	"strings"

	"github.com/thorn-jmh/errorst"
)

// Parse reads a complete union definition: annotations, the enum itself,
// and any trailing impl blocks and wrapper declarations.
func Parse(file, src string) (*Union, error) {
	toks, err := Lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	return p.parseFile()
}

// ParseTypeString parses a single type expression, as found inside an
// `#[into(...)]` annotation argument.
func ParseTypeString(s string) (TypeExpr, error) {
	toks, err := Lex("", s)
	if err != nil {
		return nil, err
	}
	p := &parser{src: s, toks: toks}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != TokenEOF {
		return nil, p.errf(p.cur(), "trailing tokens after type %q", ty.String())
	}
	return ty, nil
}

type parser struct {
	src  string
	toks []Token
	i    int
}

func (p *parser) cur() Token  { return p.toks[p.i] }
func (p *parser) peek() Token { return p.toks[min(p.i+1, len(p.toks)-1)] }

func (p *parser) next() Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	return p.cur().Kind == TokenPunct && p.cur().Text == s
}

func (p *parser) isIdent(s string) bool {
	return p.cur().Kind == TokenIdent && p.cur().Text == s
}

func (p *parser) errf(tok Token, format string, args ...interface{}) error {
	return errorst.Wrap(ErrWrongSyntax, "%s: "+format, append([]interface{}{tok.Pos}, args...)...)
}

func (p *parser) expectPunct(s string) (Token, error) {
	if !p.isPunct(s) {
		return Token{}, p.errf(p.cur(), "expected %q, got %q", s, p.cur().Text)
	}
	return p.next(), nil
}

func (p *parser) expectIdent() (Token, error) {
	if p.cur().Kind != TokenIdent {
		return Token{}, p.errf(p.cur(), "expected identifier, got %q", p.cur().Text)
	}
	return p.next(), nil
}

// raw returns the trimmed source text between two byte offsets.
func (p *parser) raw(start, end int) string {
	if start > end {
		return ""
	}
	return strings.TrimSpace(p.src[start:end])
}

func (p *parser) parseFile() (*Union, error) {
	u := &Union{Imports: map[string]string{}}

	attrs, err := p.annotations()
	if err != nil {
		return nil, err
	}
	if err := p.applyUnionAttrs(u, attrs); err != nil {
		return nil, err
	}

	if p.isIdent("pub") {
		p.next()
	}
	if !p.isIdent("enum") {
		return nil, p.errf(p.cur(), "expected \"enum\", got %q", p.cur().Text)
	}
	p.next()

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u.Name = name.Text

	if p.isPunct("[") {
		u.Params, err = p.parseParams()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if err := p.parseVariants(u); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}

	for p.cur().Kind != TokenEOF {
		if err := p.parseItem(u); err != nil {
			return nil, err
		}
	}
	if len(u.Variants) == 0 {
		return nil, errorst.Wrap(ErrWrongSyntax, "enum %s wraps no types", u.Name)
	}
	return u, nil
}

// annotations parses a run of `#[...]` markers.
func (p *parser) annotations() ([]Annotation, error) {
	var attrs []Annotation
	for p.isPunct("#") {
		hash := p.next()
		open, err := p.expectPunct("[")
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		a := Annotation{Name: name.Text, Pos: hash.Pos}
		if p.isPunct("(") {
			p.next()
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			a.Args = args
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		} else if p.isPunct("=") {
			p.next()
			if p.cur().Kind != TokenString {
				return nil, p.errf(p.cur(), "expected string after \"=\" in #[%s]", a.Name)
			}
			a.Value = Unquote(p.next().Text)
		}
		close, err := p.expectPunct("]")
		if err != nil {
			return nil, err
		}
		a.Raw = p.raw(open.End(), close.Off)
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// argList captures comma-separated annotation arguments as raw text,
// respecting nested brackets.
func (p *parser) argList() ([]string, error) {
	var args []string
	start := p.cur().Off
	depth := 0
	for {
		t := p.cur()
		if t.Kind == TokenEOF {
			return nil, p.errf(t, "unterminated annotation argument list")
		}
		if t.Kind == TokenPunct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case "]", "}":
				depth--
			case ")":
				if depth == 0 {
					if arg := p.raw(start, t.Off); arg != "" {
						args = append(args, arg)
					}
					return args, nil
				}
				depth--
			case ",":
				if depth == 0 {
					args = append(args, p.raw(start, t.Off))
					p.next()
					start = p.cur().Off
					continue
				}
			}
		}
		p.next()
	}
}

func (p *parser) applyUnionAttrs(u *Union, attrs []Annotation) error {
	for _, a := range attrs {
		switch a.Name {
		case "derive":
			keep := false
			for _, d := range a.Args {
				if !u.Derives.Set(d) {
					keep = true
				}
			}
			if keep {
				u.Attrs = append(u.Attrs, a)
			}
		case "module_path":
			v := a.Value
			if v == "" && len(a.Args) == 1 {
				v = Unquote(a.Args[0])
			}
			if v == "" {
				return errorst.Wrap(ErrWrongSyntax, "%s: #[module_path] needs a string value", a.Pos)
			}
			u.ModulePath = v
		case "import":
			switch len(a.Args) {
			case 1:
				ip := Unquote(a.Args[0])
				u.Imports[path.Base(ip)] = ip
			case 2:
				u.Imports[a.Args[0]] = Unquote(a.Args[1])
			default:
				return errorst.Wrap(ErrWrongSyntax, "%s: #[import] takes a path or alias, path", a.Pos)
			}
		default:
			u.Attrs = append(u.Attrs, a)
		}
	}
	return nil
}

// parseParams parses a bracketed type-parameter list. A constraint may be
// shared across names, as in [T, U any].
func (p *parser) parseParams() ([]Param, error) {
	if _, err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var params []Param
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		start := p.cur().Off
		depth := 0
	scan:
		for {
			t := p.cur()
			if t.Kind == TokenEOF {
				return nil, p.errf(t, "unterminated type parameter list")
			}
			if t.Kind == TokenPunct {
				switch t.Text {
				case "(", "{":
					depth++
				case ")", "}":
					depth--
				case "[":
					depth++
				case "]":
					if depth == 0 {
						break scan
					}
					depth--
				case ",":
					if depth == 0 {
						break scan
					}
				}
			}
			p.next()
		}
		params = append(params, Param{Name: name.Text, Constraint: p.raw(start, p.cur().Off)})
		if p.isPunct(",") {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	for i := len(params) - 2; i >= 0; i-- {
		if params[i].Constraint == "" {
			params[i].Constraint = params[i+1].Constraint
		}
	}
	for _, pa := range params {
		if pa.Constraint == "" {
			return nil, errorst.Wrap(ErrWrongSyntax, "type parameter %s has no constraint", pa.Name)
		}
	}
	return params, nil
}

func (p *parser) parseVariants(u *Union) error {
	for !p.isPunct("}") {
		attrs, err := p.annotations()
		if err != nil {
			return err
		}
		var into []TypeExpr
		var pass []Annotation
		for _, a := range attrs {
			if a.Name != "into" {
				pass = append(pass, a)
				continue
			}
			for _, arg := range a.Args {
				ty, err := ParseTypeString(arg)
				if err != nil {
					return errorst.Wrap(err, "%s: bad #[into] target %q", a.Pos, arg)
				}
				into = append(into, ty)
			}
		}

		at := p.cur()
		ident := ""
		var ty TypeExpr
		if at.Kind == TokenIdent && p.peek().Kind == TokenPunct && p.peek().Text == "(" &&
			!isTypeKeyword(at.Text) {
			// Ident(Type) names the variant explicitly.
			ident = p.next().Text
			p.next()
			ty, err = p.parseType()
			if err != nil {
				return err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return err
			}
		} else {
			ty, err = p.parseType()
			if err != nil {
				return err
			}
		}
		if err := u.AddVariant(pass, into, ident, ty); err != nil {
			return errorst.Wrap(err, "%s: variant rejected", at.Pos)
		}
		if p.isPunct(",") {
			p.next()
			continue
		}
		break
	}
	return nil
}

func isTypeKeyword(s string) bool {
	return s == "map" || s == "chan" || s == "func"
}

func (p *parser) parseType() (TypeExpr, error) {
	t := p.cur()
	switch {
	case t.Kind == TokenPunct && t.Text == "*":
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Pointer{Elem: elem}, nil

	case t.Kind == TokenPunct && t.Text == "[":
		p.next()
		if p.isPunct("]") {
			p.next()
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			return &Slice{Elem: elem}, nil
		}
		start := p.cur().Off
		depth := 0
		for {
			lt := p.cur()
			if lt.Kind == TokenEOF {
				return nil, p.errf(lt, "unterminated array length")
			}
			if lt.Kind == TokenPunct {
				switch lt.Text {
				case "[", "(":
					depth++
				case ")":
					depth--
				case "]":
					if depth == 0 {
						goto lenDone
					}
					depth--
				}
			}
			p.next()
		}
	lenDone:
		length := p.raw(start, p.cur().Off)
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Array{Len: length, Elem: elem}, nil

	case t.Kind == TokenPunct && t.Text == "(":
		p.next()
		var elems []TypeExpr
		for {
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			if p.isPunct(",") {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &Tuple{Elems: elems}, nil

	case t.Kind == TokenIdent && t.Text == "map":
		p.next()
		if _, err := p.expectPunct("["); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Map{Key: key, Value: val}, nil

	case t.Kind == TokenIdent && t.Text == "chan":
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Chan{Elem: elem}, nil

	case t.Kind == TokenIdent && t.Text == "func":
		return nil, errorst.Wrap(ErrUnsupportedType, "%s: function types cannot be wrapped", t.Pos)

	case t.Kind == TokenIdent:
		segs := []string{p.next().Text}
		for p.isPunct(".") {
			p.next()
			seg, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg.Text)
		}
		n := &Named{Segments: segs}
		if p.isPunct("[") {
			p.next()
			for {
				arg, err := p.parseType()
				if err != nil {
					return nil, err
				}
				n.Args = append(n.Args, arg)
				if p.isPunct(",") {
					p.next()
					continue
				}
				break
			}
			if _, err := p.expectPunct("]"); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
	return nil, p.errf(t, "expected a type, got %q", t.Text)
}

// parseItem parses one trailing item after the enum body: an impl block,
// a standard wrapper, or an annotated custom wrapper struct.
func (p *parser) parseItem(u *Union) error {
	attrs, err := p.annotations()
	if err != nil {
		return err
	}
	if len(attrs) > 0 {
		if p.isIdent("pub") {
			p.next()
		}
		if !p.isIdent("struct") {
			return p.errf(p.cur(), "annotations here must precede a wrapper struct")
		}
		return p.parseCustomWrapper(u, attrs)
	}

	switch {
	case p.isIdent("impl"):
		return p.parseImpl(u)
	case p.isIdent("vec"):
		return p.parseStandardWrapper(u)
	case p.isIdent("pub"):
		p.next()
		if p.isIdent("struct") {
			return p.parseCustomWrapper(u, nil)
		}
		return p.errf(p.cur(), "expected \"struct\" after \"pub\"")
	case p.isIdent("struct"):
		return p.parseCustomWrapper(u, nil)
	}
	return p.errf(p.cur(), "unexpected %q after enum body", p.cur().Text)
}

func (p *parser) parseImpl(u *Union) error {
	p.next()
	if p.isPunct("{") {
		block, err := p.parseImplBlock()
		if err != nil {
			return err
		}
		u.Impl.Items = append(u.Impl.Items, block.Items...)
		u.Impl.Methods = append(u.Impl.Methods, block.Methods...)
		return nil
	}

	first, err := p.expectIdent()
	if err != nil {
		return err
	}
	if _, ok := featureKeywords[first.Text]; ok && !p.isPunct(".") {
		var feats Features
		featureKeywords[first.Text](&feats)
		for p.isPunct(",") {
			p.next()
			kw, err := p.expectIdent()
			if err != nil {
				return err
			}
			set, ok := featureKeywords[kw.Text]
			if !ok {
				return p.errf(kw, "unknown feature %q", kw.Text)
			}
			set(&feats)
		}
		if _, err := p.expectPunct(";"); err != nil {
			return err
		}
		u.Features.Merge(feats)
		return nil
	}

	// Anything else names an interface the union must satisfy.
	segs := []string{first.Text}
	for p.isPunct(".") {
		p.next()
		seg, err := p.expectIdent()
		if err != nil {
			return err
		}
		segs = append(segs, seg.Text)
	}
	block, err := p.parseImplBlock()
	if err != nil {
		return err
	}
	u.Traits = append(u.Traits, TraitBlock{Path: strings.Join(segs, "."), Block: block})
	return nil
}

func (p *parser) parseImplBlock() (ImplBlock, error) {
	var block ImplBlock
	if _, err := p.expectPunct("{"); err != nil {
		return block, err
	}
	for !p.isPunct("}") {
		if p.cur().Kind == TokenEOF {
			return block, p.errf(p.cur(), "unterminated impl block")
		}
		if !p.isIdent("func") {
			return block, p.errf(p.cur(), "expected \"func\", got %q", p.cur().Text)
		}
		p.next()
		sig, err := p.parseSig()
		if err != nil {
			return block, err
		}
		switch {
		case p.isPunct(";"):
			p.next()
			block.Methods = append(block.Methods, sig)
		case p.isPunct("{"):
			body, err := p.rawBody()
			if err != nil {
				return block, err
			}
			block.Items = append(block.Items, PassItem{Sig: sig, Body: body})
		default:
			return block, p.errf(p.cur(), "expected \";\" or a body after signature")
		}
	}
	p.next()
	return block, nil
}

func (p *parser) parseSig() (MethodSig, error) {
	var sig MethodSig
	sig.Pos = p.cur().Pos

	if p.isPunct("(") {
		p.next()
		if p.isPunct("*") {
			sig.PointerRecv = true
			p.next()
		}
		recv, err := p.expectIdent()
		if err != nil {
			return sig, err
		}
		sig.HasRecv = true
		sig.RecvName = recv.Text
		if _, err := p.expectPunct(")"); err != nil {
			return sig, err
		}
	}

	name, err := p.expectIdent()
	if err != nil {
		return sig, err
	}
	sig.Name = name.Text

	if _, err := p.expectPunct("("); err != nil {
		return sig, err
	}
	for !p.isPunct(")") {
		argName, err := p.expectIdent()
		if err != nil {
			return sig, err
		}
		start := p.cur().Off
		depth := 0
	scan:
		for {
			t := p.cur()
			if t.Kind == TokenEOF {
				return sig, p.errf(t, "unterminated parameter list")
			}
			if t.Kind == TokenPunct {
				switch t.Text {
				case "(", "[", "{":
					depth++
				case "]", "}":
					depth--
				case ")":
					if depth == 0 {
						break scan
					}
					depth--
				case ",":
					if depth == 0 {
						break scan
					}
				}
			}
			p.next()
		}
		ty := p.raw(start, p.cur().Off)
		if ty == "" {
			return sig, p.errf(p.cur(), "parameter %s has no type", argName.Text)
		}
		sig.Params = append(sig.Params, Arg{Name: argName.Text, Type: ty})
		if p.isPunct(",") {
			p.next()
		}
	}
	p.next()

	start := p.cur().Off
	depth := 0
	for {
		t := p.cur()
		if t.Kind == TokenEOF {
			return sig, p.errf(t, "signature for %s never ends", sig.Name)
		}
		if t.Kind == TokenPunct {
			switch t.Text {
			case "(", "[":
				depth++
			case ")", "]":
				depth--
			case "{", ";":
				if depth == 0 {
					sig.Results = p.raw(start, t.Off)
					return sig, nil
				}
			}
		}
		p.next()
	}
}

// rawBody captures the source text between a balanced pair of braces.
// The opening brace is the current token.
func (p *parser) rawBody() (string, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return "", err
	}
	depth := 1
	for {
		t := p.cur()
		if t.Kind == TokenEOF {
			return "", p.errf(open, "unterminated body")
		}
		if t.Kind == TokenPunct {
			switch t.Text {
			case "{":
				depth++
			case "}":
				depth--
				if depth == 0 {
					p.next()
					return p.raw(open.End(), t.Off), nil
				}
			}
		}
		p.next()
	}
}

func (p *parser) parseStandardWrapper(u *Union) error {
	p.next()
	name := u.Name + "Vec"
	if p.cur().Kind == TokenIdent {
		name = p.next().Text
	}
	if p.isPunct(";") {
		p.next()
	}
	// The standard form inherits the union's capabilities and is always
	// default-constructible.
	d := u.Derives
	d.Default = true
	u.Wrappers = append(u.Wrappers, VecWrapper{Name: name, VecField: "inner", Derives: d})
	return nil
}

func (p *parser) parseCustomWrapper(u *Union, attrs []Annotation) error {
	kw := p.next() // struct

	w := VecWrapper{Custom: true, VecField: "innerVec"}
	vecSeen := false
	for _, a := range attrs {
		switch a.Name {
		case "vec":
			vecSeen = true
			if len(a.Args) == 1 {
				w.VecField = a.Args[0]
			} else if len(a.Args) > 1 {
				return errorst.Wrap(ErrBadWrapper, "%s: #[vec] takes at most one field name", a.Pos)
			}
		case "derive":
			keep := false
			for _, d := range a.Args {
				if !w.Derives.Set(d) {
					keep = true
				}
			}
			if keep {
				w.Attrs = append(w.Attrs, a)
			}
		default:
			w.Attrs = append(w.Attrs, a)
		}
	}
	if !vecSeen {
		return errorst.Wrap(ErrBadWrapper, "%s: wrapper struct needs a #[vec] annotation", kw.Pos)
	}

	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	w.Name = name.Text

	if p.isPunct("[") {
		w.Params, err = p.parseParams()
		if err != nil {
			return err
		}
	}

	if _, err := p.expectPunct("{"); err != nil {
		return err
	}
	for !p.isPunct("}") {
		if p.cur().Kind == TokenEOF {
			return p.errf(p.cur(), "unterminated wrapper struct")
		}
		fname, err := p.expectIdent()
		if err != nil {
			return err
		}
		start := p.cur().Off
		depth := 0
	scan:
		for {
			t := p.cur()
			if t.Kind == TokenEOF {
				return p.errf(t, "unterminated wrapper field")
			}
			if t.Kind == TokenPunct {
				switch t.Text {
				case "(", "[", "{":
					depth++
				case ")", "]":
					depth--
				case "}":
					if depth == 0 {
						break scan
					}
					depth--
				case ";":
					if depth == 0 {
						break scan
					}
				}
			}
			p.next()
		}
		ty := p.raw(start, p.cur().Off)
		if ty == "" {
			return errorst.Wrap(ErrBadWrapper,
				"%s: wrapper fields must be named, %q has no type", fname.Pos, fname.Text)
		}
		if fname.Text == w.VecField {
			return errorst.Wrap(ErrBadWrapper,
				"%s: field %q collides with the sequence field", fname.Pos, fname.Text)
		}
		w.ExtraFields = append(w.ExtraFields, Field{Name: fname.Text, Type: ty})
		if p.isPunct(";") {
			p.next()
		}
	}
	p.next()
	if p.isPunct(";") {
		p.next()
	}
	u.Wrappers = append(u.Wrappers, w)
	return nil
}
