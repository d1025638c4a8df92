package curly

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("syntax error")

// ParseError describes a syntax error at a source position.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", path, e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// posError is a parse error before it is placed in a file.
type posError struct {
	offset int
	msg    string
}

func (e *posError) Error() string { return e.msg }

//nolint:gochecknoglobals // Read-only operator table
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

//nolint:gochecknoglobals // Read-only keyword table
var keywords = map[string]bool{
	"func":   true,
	"var":    true,
	"return": true,
	"if":     true,
	"else":   true,
}

// Parse parses a complete source file into a sealed tree.
func Parse(path string, content []byte) (*syntax.Tree, error) {
	tree := syntax.NewTree(path, content, Grammar)
	p, err := newParser(tree)
	if err != nil {
		return nil, err
	}

	root, err := p.file()
	if err != nil {
		return nil, p.wrap(err)
	}
	if err := tree.Seal(root); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseFragment parses a declaration, a statement or an expression and
// returns it as a detached node ready to be inserted by a rewrite session.
func ParseFragment(src string) (*syntax.Node, error) {
	content := []byte(src)
	tree := syntax.NewTree("", content, Grammar)
	p, err := newParser(tree)
	if err != nil {
		return nil, err
	}

	var n *syntax.Node
	switch first := p.peek(); {
	case first.kind == tokIdent && (first.text == "func" || !keywords[first.text] && p.isDecl()):
		n, err = p.decl()
	case strings.HasSuffix(strings.TrimSpace(src), ";") || strings.HasSuffix(strings.TrimSpace(src), "}"):
		n, err = p.stmt()
	default:
		n, err = p.expr()
	}
	if err != nil {
		return nil, p.wrap(err)
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.wrap(p.errorf(tok, "unexpected %s after fragment", describe(tok)))
	}
	return syntax.Detach(n), nil
}

type parser struct {
	tree *syntax.Tree
	toks []token
	pos  int
}

func newParser(tree *syntax.Tree) (*parser, error) {
	toks, comments, err := tokenize(tree.Content)
	if err != nil {
		return nil, (&parser{tree: tree}).wrap(err)
	}
	for _, c := range comments {
		tree.AddComment(c)
	}
	return &parser{tree: tree, toks: toks}, nil
}

func (p *parser) wrap(err error) error {
	var pe *posError
	if !errors.As(err, &pe) {
		return err
	}
	line, col := p.tree.LineAt(pe.offset)
	return &ParseError{Path: p.tree.Path, Line: line, Column: col, Msg: pe.msg}
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &posError{offset: tok.start, msg: fmt.Sprintf(format, args...)}
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return tok.kind.String()
	}
	return strconv.Quote(tok.text)
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// is reports whether the next token is the punctuation or keyword text.
func (p *parser) is(text string) bool {
	tok := p.peek()
	return (tok.kind == tokPunct || tok.kind == tokIdent) && tok.text == text
}

func (p *parser) expect(text string) (token, error) {
	if !p.is(text) {
		tok := p.peek()
		return token{}, p.errorf(tok, "expected %q, found %s", text, describe(tok))
	}
	return p.next(), nil
}

func (p *parser) ident() (token, error) {
	tok := p.peek()
	if tok.kind != tokIdent || keywords[tok.text] {
		return token{}, p.errorf(tok, "expected identifier, found %s", describe(tok))
	}
	return p.next(), nil
}

// isDecl reports whether a run of identifiers followed by "func" starts here.
func (p *parser) isDecl() bool {
	for i := p.pos; i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.kind != tokIdent {
			return false
		}
		if tok.text == "func" {
			return true
		}
		if keywords[tok.text] {
			return false
		}
	}
	return false
}

func (p *parser) file() (*syntax.Node, error) {
	var decls []*syntax.Node
	for p.peek().kind != tokEOF {
		d, err := p.decl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	all := syntax.Range{Start: 0, End: len(p.tree.Content)}
	return p.tree.NewNode(KindFile, all).
		SetList(FileDecls, decls...).
		SetSpan(FileDecls, all), nil
}

func (p *parser) decl() (*syntax.Node, error) {
	var mods []token
	for tok := p.peek(); tok.kind == tokIdent && !keywords[tok.text]; tok = p.peek() {
		mods = append(mods, p.next())
	}
	fn, err := p.expect("func")
	if err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	lparen, err := p.expect("(")
	if err != nil {
		return nil, err
	}

	var params []*syntax.Node
	for !p.is(")") {
		if len(params) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
		id, err := p.ident()
		if err != nil {
			return nil, err
		}
		params = append(params, p.tree.NewNode(KindParam, id.rng()).
			SetAttr(ParamName, id.text).
			SetSpan(ParamName, id.rng()))
	}
	rparen := p.next()

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	start := fn.start
	modText := ""
	modSpan := syntax.Range{Start: fn.start, End: fn.start}
	if len(mods) > 0 {
		start = mods[0].start
		texts := make([]string, len(mods))
		for i, m := range mods {
			texts[i] = m.text
		}
		modText = strings.Join(texts, " ")
		modSpan = syntax.Range{Start: mods[0].start, End: mods[len(mods)-1].end}
	}

	return p.tree.NewNode(KindFunc, syntax.Range{Start: start, End: body.Range().End}).
		SetAttr(FuncModifiers, modText).
		SetSpan(FuncModifiers, modSpan).
		SetAttr(FuncName, name.text).
		SetSpan(FuncName, name.rng()).
		SetList(FuncParams, params...).
		SetSpan(FuncParams, syntax.Range{Start: lparen.end, End: rparen.start}).
		SetNode(FuncBody, body), nil
}

func (p *parser) block() (*syntax.Node, error) {
	lbrace, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	var stmts []*syntax.Node
	for !p.is("}") {
		if p.peek().kind == tokEOF {
			return nil, p.errorf(p.peek(), "unterminated block")
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	rbrace := p.next()

	return p.tree.NewNode(KindBlock, syntax.Range{Start: lbrace.start, End: rbrace.end}).
		SetList(BlockStmts, stmts...).
		SetSpan(BlockStmts, syntax.Range{Start: lbrace.end, End: rbrace.start}), nil
}

func (p *parser) stmt() (*syntax.Node, error) {
	switch {
	case p.is("{"):
		return p.block()
	case p.is("var"):
		return p.varStmt()
	case p.is("return"):
		return p.returnStmt()
	case p.is("if"):
		return p.ifStmt()
	}

	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}
	return p.tree.NewNode(KindExprStmt, syntax.Range{Start: x.Range().Start, End: semi.end}).
		SetNode(ExprStmtX, x), nil
}

func (p *parser) varStmt() (*syntax.Node, error) {
	kw := p.next()
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	var value *syntax.Node
	if p.is("=") {
		p.next()
		if value, err = p.expr(); err != nil {
			return nil, err
		}
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	n := p.tree.NewNode(KindVar, syntax.Range{Start: kw.start, End: semi.end}).
		SetAttr(VarName, name.text).
		SetSpan(VarName, name.rng())
	if value != nil {
		return n.SetNode(VarValue, value), nil
	}
	return n.SetSpan(VarValue, syntax.Range{Start: name.end, End: name.end}), nil
}

func (p *parser) returnStmt() (*syntax.Node, error) {
	kw := p.next()

	var result *syntax.Node
	if !p.is(";") {
		var err error
		if result, err = p.expr(); err != nil {
			return nil, err
		}
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	n := p.tree.NewNode(KindReturn, syntax.Range{Start: kw.start, End: semi.end})
	if result != nil {
		return n.SetNode(ReturnResult, result), nil
	}
	return n.SetSpan(ReturnResult, syntax.Range{Start: kw.end, End: kw.end}), nil
}

func (p *parser) ifStmt() (*syntax.Node, error) {
	kw := p.next()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}

	var els *syntax.Node
	if p.is("else") {
		p.next()
		if p.is("if") {
			els, err = p.ifStmt()
		} else {
			els, err = p.block()
		}
		if err != nil {
			return nil, err
		}
	}

	end := then.Range().End
	if els != nil {
		end = els.Range().End
	}
	n := p.tree.NewNode(KindIf, syntax.Range{Start: kw.start, End: end}).
		SetNode(IfCond, cond).
		SetNode(IfThen, then)
	if els != nil {
		return n.SetNode(IfElse, els), nil
	}
	return n.SetSpan(IfElse, syntax.Range{Start: end, End: end}), nil
}

func (p *parser) expr() (*syntax.Node, error) {
	return p.binary(1)
}

func (p *parser) binary(minPrec int) (*syntax.Node, error) {
	x, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec, ok := precedence[op.text]
		if op.kind != tokPunct || !ok || prec < minPrec {
			return x, nil
		}
		p.next()
		y, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		x = p.tree.NewNode(KindBinary, syntax.Range{Start: x.Range().Start, End: y.Range().End}).
			SetNode(BinaryX, x).
			SetAttr(BinaryOp, op.text).
			SetSpan(BinaryOp, op.rng()).
			SetNode(BinaryY, y)
	}
}

func (p *parser) postfix() (*syntax.Node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("("):
			if x, err = p.call(x); err != nil {
				return nil, err
			}
		case p.is("++") || p.is("--"):
			op := p.next()
			x = p.tree.NewNode(KindPostfix, syntax.Range{Start: x.Range().Start, End: op.end}).
				SetNode(PostfixX, x).
				SetAttr(PostfixOp, op.text).
				SetSpan(PostfixOp, op.rng())
		default:
			return x, nil
		}
	}
}

func (p *parser) call(fun *syntax.Node) (*syntax.Node, error) {
	lparen := p.next()
	var args []*syntax.Node
	for !p.is(")") {
		if len(args) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	rparen := p.next()

	return p.tree.NewNode(KindCall, syntax.Range{Start: fun.Range().Start, End: rparen.end}).
		SetNode(CallFun, fun).
		SetList(CallArgs, args...).
		SetSpan(CallArgs, syntax.Range{Start: lparen.end, End: rparen.start}), nil
}

func (p *parser) primary() (*syntax.Node, error) {
	tok := p.peek()
	switch {
	case tok.kind == tokIdent && !keywords[tok.text]:
		p.next()
		return p.tree.NewNode(KindIdent, tok.rng()).
			SetAttr(IdentName, tok.text).
			SetSpan(IdentName, tok.rng()), nil

	case tok.kind == tokNumber:
		p.next()
		return p.tree.NewNode(KindNumber, tok.rng()).
			SetAttr(NumberValue, tok.text).
			SetSpan(NumberValue, tok.rng()), nil

	case tok.kind == tokString:
		p.next()
		value, err := strconv.Unquote(tok.text)
		if err != nil {
			return nil, p.errorf(tok, "invalid string literal %s", tok.text)
		}
		return p.tree.NewNode(KindString, tok.rng()).
			SetAttr(StringValue, value).
			SetSpan(StringValue, tok.rng()), nil

	case p.is("("):
		lparen := p.next()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		rparen, err := p.expect(")")
		if err != nil {
			return nil, err
		}
		return p.tree.NewNode(KindParen, syntax.Range{Start: lparen.start, End: rparen.end}).
			SetNode(ParenX, x), nil
	}
	return nil, p.errorf(tok, "expected expression, found %s", describe(tok))
}
