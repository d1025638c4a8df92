package curly

import (
	"fmt"
	"strconv"

	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// Formatter renders curly nodes in canonical layout.
type Formatter struct{}

var _ format.Formatter = Formatter{}

// NewFormatter returns the curly formatter.
func NewFormatter() Formatter { return Formatter{} }

// Format implements format.Formatter.
func (f Formatter) Format(p *format.Printer, n *syntax.Node) error {
	switch n.Kind() {
	case KindFile:
		p.List(n, FileDecls)
		if len(n.List(FileDecls)) > 0 {
			p.Newline()
		}

	case KindFunc:
		if mods, _ := n.Attr(FuncModifiers).(string); mods != "" {
			p.Attr(n, FuncModifiers)
			p.Write(" ")
		}
		p.Write("func ")
		p.Attr(n, FuncName)
		p.Write("(")
		p.List(n, FuncParams)
		p.Write(")")
		if p.Options().BraceStyle == format.BraceNextLine {
			p.Newline()
		} else {
			p.Write(" ")
		}
		p.Node(n.Child(FuncBody))

	case KindParam:
		p.Attr(n, ParamName)

	case KindBlock:
		p.Write("{")
		if len(n.List(BlockStmts)) > 0 {
			p.Indent()
			p.Newline()
			p.List(n, BlockStmts)
			p.Dedent()
			p.Newline()
		}
		p.Write("}")

	case KindExprStmt:
		p.Node(n.Child(ExprStmtX))
		p.Write(";")

	case KindVar:
		p.Write("var ")
		p.Attr(n, VarName)
		p.Optional(n, VarValue)
		p.Write(";")

	case KindReturn:
		p.Write("return")
		p.Optional(n, ReturnResult)
		p.Write(";")

	case KindIf:
		p.Write("if (")
		p.Node(n.Child(IfCond))
		p.Write(") ")
		p.Node(n.Child(IfThen))
		p.Optional(n, IfElse)

	case KindCall:
		p.Node(n.Child(CallFun))
		p.Write("(")
		p.List(n, CallArgs)
		p.Write(")")

	case KindIdent:
		p.Attr(n, IdentName)

	case KindNumber:
		p.Attr(n, NumberValue)

	case KindString:
		p.Attr(n, StringValue)

	case KindBinary:
		p.Node(n.Child(BinaryX))
		p.Write(" ")
		p.Attr(n, BinaryOp)
		p.Write(" ")
		p.Node(n.Child(BinaryY))

	case KindPostfix:
		p.Node(n.Child(PostfixX))
		p.Attr(n, PostfixOp)

	case KindParen:
		p.Write("(")
		p.Node(n.Child(ParenX))
		p.Write(")")

	default:
		return fmt.Errorf("unknown node kind %d", n.Kind())
	}
	return p.Err()
}

// FormatAttr implements format.Formatter.
func (f Formatter) FormatAttr(n *syntax.Node, prop syntax.PropertyID, value any) (string, error) {
	if n.Kind() == KindString && prop == StringValue {
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("string value must be a string, got %T", value)
		}
		return strconv.Quote(s), nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case int, int64, float64:
		if n.Kind() == KindNumber {
			return fmt.Sprint(v), nil
		}
	}
	return "", fmt.Errorf("%s.%s: unsupported value %T", n.KindName(), n.PropName(prop), value)
}

// ListStyle implements format.Formatter.
func (f Formatter) ListStyle(kind syntax.Kind, prop syntax.PropertyID) format.ListStyle {
	switch {
	case kind == KindFile && prop == FileDecls:
		return format.ListStyle{Multiline: true, Breaks: 2}
	case kind == KindBlock && prop == BlockStmts:
		return format.ListStyle{Multiline: true, Breaks: 1, Indented: true, Wrap: true}
	default:
		return format.ListStyle{Separator: ", "}
	}
}

// Affix implements format.Formatter.
func (f Formatter) Affix(kind syntax.Kind, prop syntax.PropertyID) format.Affix {
	switch {
	case kind == KindVar && prop == VarValue:
		return format.Affix{Prefix: " = "}
	case kind == KindReturn && prop == ReturnResult:
		return format.Affix{Prefix: " "}
	case kind == KindIf && prop == IfElse:
		return format.Affix{Prefix: " else "}
	case kind == KindFunc && prop == FuncModifiers:
		return format.Affix{Suffix: " "}
	default:
		return format.Affix{}
	}
}
