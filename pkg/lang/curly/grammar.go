// Package curly binds a small brace language to the rewrite engine: a
// hand-written lexer and recursive-descent parser producing syntax trees,
// and a formatter rendering new nodes in canonical layout.
//
//	public static func add(a, b) {
//	    // comments are trivia
//	    var sum = a + b;
//	    if (sum > 10) {
//	        log("big");
//	    } else {
//	        sum++;
//	    }
//	    return sum;
//	}
package curly

import "github.com/yaklabco/astrewrite/pkg/syntax"

// Node kinds.
const (
	KindFile syntax.Kind = iota
	KindFunc
	KindParam
	KindBlock
	KindExprStmt
	KindVar
	KindReturn
	KindIf
	KindCall
	KindIdent
	KindNumber
	KindString
	KindBinary
	KindPostfix
	KindParen
)

// File properties.
const (
	FileDecls syntax.PropertyID = iota
)

// Func properties.
const (
	FuncModifiers syntax.PropertyID = iota
	FuncName
	FuncParams
	FuncBody
)

// Param properties.
const (
	ParamName syntax.PropertyID = iota
)

// Block properties.
const (
	BlockStmts syntax.PropertyID = iota
)

// ExprStmt properties.
const (
	ExprStmtX syntax.PropertyID = iota
)

// Var properties.
const (
	VarName syntax.PropertyID = iota
	VarValue
)

// Return properties.
const (
	ReturnResult syntax.PropertyID = iota
)

// If properties.
const (
	IfCond syntax.PropertyID = iota
	IfThen
	IfElse
)

// Call properties.
const (
	CallFun syntax.PropertyID = iota
	CallArgs
)

// Ident, Number and String properties.
const (
	IdentName   syntax.PropertyID = 0
	NumberValue syntax.PropertyID = 0
	StringValue syntax.PropertyID = 0
)

// Binary properties.
const (
	BinaryX syntax.PropertyID = iota
	BinaryOp
	BinaryY
)

// Postfix properties.
const (
	PostfixX syntax.PropertyID = iota
	PostfixOp
)

// Paren properties.
const (
	ParenX syntax.PropertyID = iota
)

func node(name string) syntax.PropSpec { return syntax.PropSpec{Name: name, Type: syntax.PropNode} }
func list(name string) syntax.PropSpec { return syntax.PropSpec{Name: name, Type: syntax.PropList} }
func attr(name string) syntax.PropSpec { return syntax.PropSpec{Name: name, Type: syntax.PropAttr} }

// Grammar is the node table of the language.
//
//nolint:gochecknoglobals // Read-only grammar table shared by parser and formatter
var Grammar = &syntax.Grammar{
	Name: "curly",
	Kinds: []syntax.KindSpec{
		KindFile:     {Name: "file", Props: []syntax.PropSpec{list("decls")}},
		KindFunc:     {Name: "func", Props: []syntax.PropSpec{attr("modifiers"), attr("name"), list("params"), node("body")}},
		KindParam:    {Name: "param", Props: []syntax.PropSpec{attr("name")}},
		KindBlock:    {Name: "block", Props: []syntax.PropSpec{list("stmts")}},
		KindExprStmt: {Name: "expr_stmt", Props: []syntax.PropSpec{node("x")}},
		KindVar:      {Name: "var", Props: []syntax.PropSpec{attr("name"), node("value")}},
		KindReturn:   {Name: "return", Props: []syntax.PropSpec{node("result")}},
		KindIf:       {Name: "if", Props: []syntax.PropSpec{node("cond"), node("then"), node("else")}},
		KindCall:     {Name: "call", Props: []syntax.PropSpec{node("fun"), list("args")}},
		KindIdent:    {Name: "ident", Props: []syntax.PropSpec{attr("name")}},
		KindNumber:   {Name: "number", Props: []syntax.PropSpec{attr("value")}},
		KindString:   {Name: "string", Props: []syntax.PropSpec{attr("value")}},
		KindBinary:   {Name: "binary", Props: []syntax.PropSpec{node("x"), attr("op"), node("y")}},
		KindPostfix:  {Name: "postfix", Props: []syntax.PropSpec{node("x"), attr("op")}},
		KindParen:    {Name: "paren", Props: []syntax.PropSpec{node("x")}},
	},
}

// Ident returns a detached identifier.
func Ident(name string) *syntax.Node {
	return syntax.New(Grammar, KindIdent).SetAttr(IdentName, name)
}

// Number returns a detached number literal. The value is its source text.
func Number(text string) *syntax.Node {
	return syntax.New(Grammar, KindNumber).SetAttr(NumberValue, text)
}

// String returns a detached string literal holding value.
func String(value string) *syntax.Node {
	return syntax.New(Grammar, KindString).SetAttr(StringValue, value)
}

// Call returns a detached call of the function named fun.
func Call(fun string, args ...*syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindCall).SetNode(CallFun, Ident(fun)).SetList(CallArgs, args...)
}

// Stmt wraps an expression into a statement.
func Stmt(x *syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindExprStmt).SetNode(ExprStmtX, x)
}

// Block returns a detached block holding stmts.
func Block(stmts ...*syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindBlock).SetList(BlockStmts, stmts...)
}

// Var returns a detached variable declaration. value may be nil.
func Var(name string, value *syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindVar).SetAttr(VarName, name).SetNode(VarValue, value)
}

// Return returns a detached return statement. result may be nil.
func Return(result *syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindReturn).SetNode(ReturnResult, result)
}

// If returns a detached if statement. els may be nil.
func If(cond, then, els *syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindIf).SetNode(IfCond, cond).SetNode(IfThen, then).SetNode(IfElse, els)
}

// Binary returns a detached binary expression.
func Binary(x *syntax.Node, op string, y *syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindBinary).SetNode(BinaryX, x).SetAttr(BinaryOp, op).SetNode(BinaryY, y)
}

// Func returns a detached function declaration.
func Func(modifiers, name string, params []string, body *syntax.Node) *syntax.Node {
	ps := make([]*syntax.Node, len(params))
	for i, p := range params {
		ps[i] = syntax.New(Grammar, KindParam).SetAttr(ParamName, p)
	}
	return syntax.New(Grammar, KindFunc).
		SetAttr(FuncModifiers, modifiers).
		SetAttr(FuncName, name).
		SetList(FuncParams, ps...).
		SetNode(FuncBody, body)
}
