// Package parser is a recursive-descent parser turning lexer tokens into
// ast.Statement values. It implements the parser adapter contract spec.md
// section 6 assumes of an external grammar: TokenizerError, ParserError
// and RecursionLimitExceeded, each surfaced verbatim with its category
// prefix.
package parser

import (
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/badwolf-labs/jsonql/ast"
	"github.com/badwolf-labs/jsonql/lexer"
)

// Error kinds, one per entry of the parser adapter contract.
var (
	ErrTokenizer              = goerrors.NewKind("TokenizerError: %s")
	ErrParser                 = goerrors.NewKind("ParserError: %s")
	ErrRecursionLimitExceeded = goerrors.NewKind("RecursionLimitExceeded")
)

// maxExprDepth bounds expression nesting so a pathological input (deeply
// parenthesized or chained operators) fails predictably instead of
// overflowing the Go call stack.
const maxExprDepth = 200

// Parse tokenizes and parses source into an ordered list of statements.
// Statements follow one another with only whitespace between them; there
// is no separator token, and a ';' is rejected by the lexer.
func Parse(source string) ([]ast.Statement, error) {
	tokens, err := collectTokens(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	var stmts []ast.Statement
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.peekType() == lexer.ItemDot {
			// defensive: dotted identifiers never appear at statement
			// boundary, so a stray dot here is a malformed separator.
			break
		}
	}
	return stmts, nil
}

func collectTokens(source string) ([]lexer.Token, error) {
	var tokens []lexer.Token
	for tok := range lexer.New(source, 0) {
		if tok.Type == lexer.ItemError {
			return nil, ErrTokenizer.New(tok.ErrorMessage)
		}
		tokens = append(tokens, tok)
		if tok.Type == lexer.ItemEOF {
			break
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
	depth  int
}

func (p *parser) atEOF() bool {
	return p.peekType() == lexer.ItemEOF
}

func (p *parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.ItemEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekType() lexer.TokenType { return p.peek().Type }

func (p *parser) next() lexer.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	t := p.peek()
	if t.Type != tt {
		return t, ErrParser.New("expected " + tt.String() + " but found " + t.Type.String() + " " + describeToken(t))
	}
	return p.next(), nil
}

func describeToken(t lexer.Token) string {
	if t.Text == "" {
		return ""
	}
	return "(" + t.Text + ")"
}

func (p *parser) enterExpr() error {
	p.depth++
	if p.depth > maxExprDepth {
		return ErrRecursionLimitExceeded.New()
	}
	return nil
}

func (p *parser) leaveExpr() { p.depth-- }

// parseStatement dispatches on the leading keyword.
func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.peekType() {
	case lexer.ItemSelect:
		return p.parseSelect()
	case lexer.ItemForeach:
		return p.parseForeach()
	default:
		t := p.peek()
		return nil, ErrParser.New("expected SELECT or FOREACH but found " + t.Type.String() + " " + describeToken(t))
	}
}

func (p *parser) parseSelect() (ast.Statement, error) {
	if _, err := p.expect(lexer.ItemSelect); err != nil {
		return nil, err
	}
	items, err := p.parseSelectItemList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ItemFrom); err != nil {
		return nil, err
	}
	table, err := p.parseTable()
	if err != nil {
		return nil, err
	}
	stmt := &ast.SelectStatement{Projection: items, From: table}
	if p.peekType() == lexer.ItemWhere {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *parser) parseForeach() (ast.Statement, error) {
	if _, err := p.expect(lexer.ItemForeach); err != nil {
		return nil, err
	}
	source, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ItemAs); err != nil {
		return nil, err
	}
	alias, err := p.parseAliasName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ItemReturn); err != nil {
		return nil, err
	}
	items, err := p.parseSelectItemList()
	if err != nil {
		return nil, err
	}
	stmt := &ast.ForeachStatement{Source: source, LoopAlias: alias, Return: items}
	if p.peekType() == lexer.ItemWhen {
		p.next()
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.When = when
	}
	if _, err := p.expect(lexer.ItemFrom); err != nil {
		return nil, err
	}
	table, err := p.parseTable()
	if err != nil {
		return nil, err
	}
	stmt.From = table
	if p.peekType() == lexer.ItemWhere {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *parser) parseAliasName() (string, error) {
	switch p.peekType() {
	case lexer.ItemQuotedIdent, lexer.ItemString:
		return p.next().Text, nil
	case lexer.ItemIdentifier:
		return p.next().Text, nil
	default:
		t := p.peek()
		return "", ErrParser.New("expected alias name but found " + t.Type.String() + " " + describeToken(t))
	}
}

func (p *parser) parseSelectItemList() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.peekType() != lexer.ItemComma {
			break
		}
		p.next()
	}
	return items, nil
}

func (p *parser) parseSelectItem() (ast.SelectItem, error) {
	if p.peekType() == lexer.ItemStar {
		p.next()
		return ast.SelectItem{Expr: &ast.StarExpr{}}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return ast.SelectItem{}, err
	}
	item := ast.SelectItem{Expr: expr}
	if p.peekType() == lexer.ItemAs {
		p.next()
		alias, err := p.parseAliasName()
		if err != nil {
			return ast.SelectItem{}, err
		}
		item.Alias = alias
		item.HasAlias = true
	}
	return item, nil
}

func (p *parser) parseTable() (ast.TableExpr, error) {
	switch p.peekType() {
	case lexer.ItemString, lexer.ItemQuotedIdent:
		return ast.TableExpr{Name: p.next().Text}, nil
	case lexer.ItemIdentifier:
		return ast.TableExpr{Name: p.next().Text}, nil
	default:
		t := p.peek()
		return ast.TableExpr{}, ErrParser.New("expected table name but found " + t.Type.String() + " " + describeToken(t))
	}
}

// parseExpr is the lowest-precedence entry: comparisons.
func (p *parser) parseExpr() (ast.Expr, error) {
	if err := p.enterExpr(); err != nil {
		return nil, err
	}
	defer p.leaveExpr()
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.ItemEq:  ast.BinaryEq,
	lexer.ItemLt:  ast.BinaryLt,
	lexer.ItemLte: ast.BinaryLte,
	lexer.ItemGt:  ast.BinaryGt,
	lexer.ItemGte: ast.BinaryGte,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.peekType()]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

var additiveOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.ItemPlus:  ast.BinaryAdd,
	lexer.ItemMinus: ast.BinarySub,
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := additiveOps[p.peekType()]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

var multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.ItemStar:  ast.BinaryMul,
	lexer.ItemSlash: ast.BinaryDiv,
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.peekType()]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if err := p.enterExpr(); err != nil {
		return nil, err
	}
	defer p.leaveExpr()

	switch p.peekType() {
	case lexer.ItemPlus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.UnaryPlus, X: x}, nil
	case lexer.ItemMinus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.UnaryMinus, X: x}, nil
	case lexer.ItemBang:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.UnaryNot, X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	switch p.peekType() {
	case lexer.ItemNumber:
		return &ast.NumberLit{Text: p.next().Text}, nil
	case lexer.ItemString:
		return &ast.StringLit{Value: p.next().Text}, nil
	case lexer.ItemIdentifier:
		return p.parseIdentifierChain()
	case lexer.ItemLParen:
		p.next()
		if err := p.enterExpr(); err != nil {
			return nil, err
		}
		inner, err := p.parseComparison()
		p.leaveExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ItemRParen); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{X: inner}, nil
	case lexer.ItemStar:
		p.next()
		return &ast.StarExpr{}, nil
	default:
		t := p.peek()
		return nil, ErrParser.New("expected expression but found " + t.Type.String() + " " + describeToken(t))
	}
}

func (p *parser) parseIdentifierChain() (ast.Expr, error) {
	first, err := p.expect(lexer.ItemIdentifier)
	if err != nil {
		return nil, err
	}
	parts := []string{first.Text}
	for p.peekType() == lexer.ItemDot {
		p.next()
		part, err := p.expect(lexer.ItemIdentifier)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part.Text)
	}
	if len(parts) == 1 {
		return &ast.Identifier{Name: parts[0]}, nil
	}
	return &ast.CompoundIdentifier{Parts: parts}, nil
}
