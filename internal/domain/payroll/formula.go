package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFunc is a named function callable from catalog formulas. Table
// functions dispatch into the tax table module; they receive already
// evaluated numeric arguments.
type TableFunc func(args []decimal.Decimal) (decimal.Decimal, error)

// FuncRegistry maps formula function names to their implementations.
// MIN and MAX are built into the evaluator and need no registration.
type FuncRegistry map[string]TableFunc

// Formula is a parsed, reusable expression tree. Formulas are compiled
// once per catalog load and shared by every evaluation in a batch; they
// are read-only after compilation.
type Formula struct {
	src  string
	root exprNode
}

// Source returns the original formula text
func (f *Formula) Source() string {
	return f.src
}

// Variables returns the set of variable names the formula references
func (f *Formula) Variables() map[string]struct{} {
	vars := map[string]struct{}{}
	f.root.collect(func(name string, isFunc bool) {
		if !isFunc {
			vars[name] = struct{}{}
		}
	})
	return vars
}

// Functions returns the set of function names the formula calls
func (f *Formula) Functions() map[string]struct{} {
	funcs := map[string]struct{}{}
	f.root.collect(func(name string, isFunc bool) {
		if isFunc {
			funcs[name] = struct{}{}
		}
	})
	return funcs
}

// References reports whether the formula reads the given variable
func (f *Formula) References(name string) bool {
	_, ok := f.Variables()[name]
	return ok
}

// Eval evaluates the formula against the variable context and function
// registry. The context is never mutated. The raw result is returned
// without rounding.
func (f *Formula) Eval(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error) {
	return f.root.eval(ctx, funcs)
}

// EvalMoney evaluates the formula and rounds the result to the currency's
// minor unit using round-half-up. Rounding is applied exactly once, at the
// end, so sub-expression rounding error never compounds.
func (f *Formula) EvalMoney(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error) {
	raw, err := f.root.eval(ctx, funcs)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Round(2), nil
}

// CompileFormula parses a formula string into a reusable expression tree.
// Grammar: decimal literals, named variables, + - * / with the usual
// precedence, parentheses, unary minus, and function calls (MIN/MAX plus
// registered table functions).
func CompileFormula(src string) (*Formula, error) {
	p := &formulaParser{lexer: newFormulaLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, NewInvalidFormulaError(
			fmt.Sprintf("unexpected %q at position %d in formula %q", p.tok.text, p.tok.pos, src))
	}
	return &Formula{src: src, root: root}, nil
}

// --- expression tree ---

type exprNode interface {
	eval(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error)
	collect(fn func(name string, isFunc bool))
}

type numberNode struct {
	value decimal.Decimal
}

func (n numberNode) eval(*Context, FuncRegistry) (decimal.Decimal, error) {
	return n.value, nil
}

func (n numberNode) collect(func(string, bool)) {}

type variableNode struct {
	name string
}

func (n variableNode) eval(ctx *Context, _ FuncRegistry) (decimal.Decimal, error) {
	v, ok := ctx.Get(n.name)
	if !ok {
		return decimal.Zero, NewUnknownVariableError(n.name)
	}
	return v, nil
}

func (n variableNode) collect(fn func(string, bool)) {
	fn(n.name, false)
}

type unaryNode struct {
	operand exprNode
}

func (n unaryNode) eval(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error) {
	v, err := n.operand.eval(ctx, funcs)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

func (n unaryNode) collect(fn func(string, bool)) {
	n.operand.collect(fn)
}

type binaryNode struct {
	op          byte // '+', '-', '*', '/'
	left, right exprNode
}

func (n binaryNode) eval(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error) {
	l, err := n.left.eval(ctx, funcs)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.right.eval(ctx, funcs)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		if r.IsZero() {
			return decimal.Zero, NewDivisionByZeroError()
		}
		return l.Div(r), nil
	}
	return decimal.Zero, NewInvalidFormulaError(fmt.Sprintf("unknown operator %q", n.op))
}

func (n binaryNode) collect(fn func(string, bool)) {
	n.left.collect(fn)
	n.right.collect(fn)
}

type callNode struct {
	name string
	args []exprNode
}

func (n callNode) eval(ctx *Context, funcs FuncRegistry) (decimal.Decimal, error) {
	args := make([]decimal.Decimal, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(ctx, funcs)
		if err != nil {
			return decimal.Zero, err
		}
		args[i] = v
	}

	switch n.name {
	case "MIN":
		return foldExtreme(args, func(a, b decimal.Decimal) bool { return b.LessThan(a) })
	case "MAX":
		return foldExtreme(args, func(a, b decimal.Decimal) bool { return b.GreaterThan(a) })
	}

	fn, ok := funcs[n.name]
	if !ok {
		return decimal.Zero, NewInvalidFormulaError(
			fmt.Sprintf("call to unregistered function %q", n.name))
	}
	return fn(args)
}

func (n callNode) collect(fn func(string, bool)) {
	fn(n.name, true)
	for _, arg := range n.args {
		arg.collect(fn)
	}
}

// foldExtreme reduces MIN/MAX over two or more arguments
func foldExtreme(args []decimal.Decimal, better func(a, b decimal.Decimal) bool) (decimal.Decimal, error) {
	if len(args) < 2 {
		return decimal.Zero, NewInvalidFormulaError("MIN/MAX require at least two arguments")
	}
	best := args[0]
	for _, v := range args[1:] {
		if better(best, v) {
			best = v
		}
	}
	return best, nil
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOperator // + - * /
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type formulaLexer struct {
	src string
	pos int
}

func newFormulaLexer(src string) *formulaLexer {
	return &formulaLexer{src: src}
}

func (l *formulaLexer) lex() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case c == '+' || c == '-' || c == '*' || c == '/':
		l.pos++
		return token{kind: tokOperator, text: string(c), pos: start}, nil
	case isDigit(c):
		sawDot := false
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || (l.src[l.pos] == '.' && !sawDot)) {
			if l.src[l.pos] == '.' {
				sawDot = true
			}
			l.pos++
		}
		text := l.src[start:l.pos]
		if strings.HasSuffix(text, ".") {
			return token{}, NewInvalidFormulaError(
				fmt.Sprintf("malformed number %q at position %d", text, start))
		}
		return token{kind: tokNumber, text: text, pos: start}, nil
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	}

	return token{}, NewInvalidFormulaError(
		fmt.Sprintf("unexpected character %q at position %d", c, start))
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// --- parser ---

type formulaParser struct {
	lexer *formulaLexer
	tok   token
}

func (p *formulaParser) next() error {
	tok, err := p.lexer.lex()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// parseExpr handles + and -
func (p *formulaParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOperator && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseTerm handles * and /
func (p *formulaParser) parseTerm() (exprNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOperator && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseFactor handles literals, variables, calls, parentheses and unary minus
func (p *formulaParser) parseFactor() (exprNode, error) {
	switch {
	case p.tok.kind == tokOperator && p.tok.text == "-":
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unaryNode{operand: operand}, nil

	case p.tok.kind == tokNumber:
		value, err := decimal.NewFromString(p.tok.text)
		if err != nil {
			return nil, NewInvalidFormulaError(
				fmt.Sprintf("invalid number %q at position %d", p.tok.text, p.tok.pos))
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return numberNode{value: value}, nil

	case p.tok.kind == tokIdent:
		name := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokLParen {
			return variableNode{name: name}, nil
		}
		return p.parseCall(name)

	case p.tok.kind == tokLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, NewInvalidFormulaError(
				fmt.Sprintf("missing closing parenthesis at position %d", p.tok.pos))
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, NewInvalidFormulaError(
		fmt.Sprintf("unexpected %q at position %d", p.tok.text, p.tok.pos))
}

// parseCall parses the argument list of a function invocation
func (p *formulaParser) parseCall(name string) (exprNode, error) {
	// consume '('
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []exprNode
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.kind != tokRParen {
		return nil, NewInvalidFormulaError(
			fmt.Sprintf("missing closing parenthesis in call to %s at position %d", name, p.tok.pos))
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, NewInvalidFormulaError(
			fmt.Sprintf("function %s called without arguments", name))
	}
	return callNode{name: name, args: args}, nil
}
