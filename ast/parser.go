// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package ast

import (
	"fmt"
	"strconv"
)

// Parser is a hand-rolled recursive-descent parser with one token of
// lookahead, producing the AST described in ast.go/type.go. It is the
// upstream collaborator the code generator treats as already having run;
// it has no relationship to the back-end's correctness invariants.
type Parser struct {
	lexer *Lexer

	token  TokenKind
	lexeme string

	hasNext   bool
	nextToken TokenKind
	nextLex   string
}

// ParseError reports a syntax error encountered while parsing.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func syntaxErrorf(format string, args ...interface{}) {
	panic(&ParseError{Message: fmt.Sprintf(format, args...)})
}

func NewParser(source string) *Parser {
	p := &Parser{lexer: NewLexer(source)}
	p.consume()
	return p
}

func (p *Parser) consume() {
	if p.hasNext {
		p.token, p.lexeme = p.nextToken, p.nextLex
		p.hasNext = false
		return
	}
	p.token, p.lexeme = p.lexer.NextToken()
}

func (p *Parser) peekNext() TokenKind {
	if !p.hasNext {
		p.nextToken, p.nextLex = p.lexer.NextToken()
		p.hasNext = true
	}
	return p.nextToken
}

func (p *Parser) expect(kind TokenKind) {
	if p.token != kind {
		syntaxErrorf("expected %v, got %v (%q)", kind, p.token, p.lexeme)
	}
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.token == kind {
		p.consume()
		return true
	}
	return false
}

// ParseProgram parses a complete program: a sequence of program units,
// each either a function definition or a statement.
func ParseProgram(source string) (program *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()
	p := NewParser(source)
	units := make([]ProgramUnit, 0)
	for p.token != TK_EOF {
		units = append(units, p.parseProgramUnit())
	}
	return &Program{Units: units}, nil
}

func (p *Parser) looksLikeFuncDef() bool {
	return (p.token == KW_TYPE_INT || p.token == KW_TYPE_VOID) &&
		p.peekNext() == TK_IDENT
}

func (p *Parser) parseProgramUnit() ProgramUnit {
	if p.looksLikeFuncDef() {
		// Disambiguate "int f(...)" (a function) from "int x;" (a
		// top-level VarDef) by looking past the identifier for '('.
		retType := p.parseDataType()
		name := p.lexeme
		p.expect(TK_IDENT)
		p.consume()
		if p.token == TK_LPAREN {
			return p.parseFuncDefRest(retType, name)
		}
		// Not a function: "int x;" style top-level variable definition.
		stmt := &VarDefStmt{Type: retType, Name: name}
		p.expect(TK_SEMICOLON)
		p.consume()
		return stmt
	}
	return p.parseStatement()
}

func (p *Parser) parseFuncDefRest(retType DataType, name string) *FuncDef {
	p.expect(TK_LPAREN)
	p.consume()
	params := make([]Param, 0)
	for p.token != TK_RPAREN {
		if len(params) > 0 {
			p.expect(TK_COMMA)
			p.consume()
		}
		pt := p.parseDataType()
		pname := p.lexeme
		p.expect(TK_IDENT)
		p.consume()
		params = append(params, Param{Type: pt, Name: pname})
	}
	p.expect(TK_RPAREN)
	p.consume()
	body := p.parseBlockStmt()
	return &FuncDef{ReturnType: retType, Name: name, Params: params, Body: body}
}

func (p *Parser) parseDataType() DataType {
	var base DataType
	switch p.token {
	case KW_TYPE_INT:
		base = TInt
	case KW_TYPE_VOID:
		base = TVoid
	default:
		syntaxErrorf("expected a type, got %v (%q)", p.token, p.lexeme)
	}
	p.consume()
	depth := uint32(0)
	for p.accept(TK_TIMES) {
		depth++
	}
	return NewPointer(depth, base)
}

func (p *Parser) isTypeStart() bool {
	return p.token == KW_TYPE_INT || p.token == KW_TYPE_VOID
}

func (p *Parser) parseStatement() Statement {
	switch p.token {
	case KW_RETURN:
		return p.parseReturnStmt()
	case KW_IF:
		return p.parseIfStmt()
	case KW_WHILE:
		return p.parseWhileStmt()
	case KW_FOR:
		return p.parseForStmt()
	case KW_BREAK:
		p.consume()
		p.expect(TK_SEMICOLON)
		p.consume()
		return &BreakStmt{}
	case TK_LBRACE:
		return p.parseBlockStmt()
	default:
		if p.isTypeStart() {
			return p.parseVarDefStmt()
		}
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseVarDefStmt() Statement {
	t := p.parseDataType()
	name := p.lexeme
	p.expect(TK_IDENT)
	p.consume()
	p.expect(TK_SEMICOLON)
	p.consume()
	return &VarDefStmt{Type: t, Name: name}
}

func (p *Parser) parseBlockStmt() *BlockStmt {
	p.expect(TK_LBRACE)
	p.consume()
	stmts := make([]Statement, 0)
	for p.token != TK_RBRACE {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(TK_RBRACE)
	p.consume()
	return &BlockStmt{Stmts: stmts}
}

func (p *Parser) parseReturnStmt() Statement {
	p.expect(KW_RETURN)
	p.consume()
	x := p.parseExpr()
	p.expect(TK_SEMICOLON)
	p.consume()
	return &ReturnStmt{X: x}
}

func (p *Parser) parseIfStmt() Statement {
	p.expect(KW_IF)
	p.consume()
	p.expect(TK_LPAREN)
	p.consume()
	cond := p.parseExpr()
	p.expect(TK_RPAREN)
	p.consume()
	then := p.parseStatement()
	var els Statement
	if p.accept(KW_ELSE) {
		els = p.parseStatement()
	}
	return &IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() Statement {
	p.expect(KW_WHILE)
	p.consume()
	p.expect(TK_LPAREN)
	p.consume()
	cond := p.parseExpr()
	p.expect(TK_RPAREN)
	p.consume()
	body := p.parseStatement()
	return &WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() Statement {
	p.expect(KW_FOR)
	p.consume()
	p.expect(TK_LPAREN)
	p.consume()

	var init Statement
	if p.token != TK_SEMICOLON {
		init = p.parseSimpleStmtNoSemi()
	}
	p.expect(TK_SEMICOLON)
	p.consume()

	var cond Expr
	if p.token != TK_SEMICOLON {
		cond = p.parseExpr()
	}
	p.expect(TK_SEMICOLON)
	p.consume()

	var post Statement
	if p.token != TK_RPAREN {
		post = p.parseSimpleStmtNoSemi()
	}
	p.expect(TK_RPAREN)
	p.consume()

	body := p.parseStatement()
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body}
}

// parseSimpleStmtNoSemi parses an assignment or bare expression without
// consuming a trailing ';' -- used for for-loop init/post clauses.
func (p *Parser) parseSimpleStmtNoSemi() Statement {
	if p.token == TK_IDENT && p.peekNext() == TK_ASSIGN {
		name := p.lexeme
		p.consume()
		p.consume()
		x := p.parseExpr()
		return &AssignStmt{Name: name, X: x}
	}
	if p.token == TK_TIMES {
		return p.parseAssignPointerStmt()
	}
	return &ExprStmt{X: p.parseExpr()}
}

func (p *Parser) parseAssignPointerStmt() Statement {
	depth := uint32(0)
	for p.accept(TK_TIMES) {
		depth++
	}
	name := p.lexeme
	p.expect(TK_IDENT)
	p.consume()
	p.expect(TK_ASSIGN)
	p.consume()
	x := p.parseExpr()
	return &AssignPointerStmt{Depth: depth, Name: name, X: x}
}

func (p *Parser) parseSimpleStmt() Statement {
	stmt := p.parseSimpleStmtNoSemi()
	p.expect(TK_SEMICOLON)
	p.consume()
	return stmt
}

// -----------------------------------------------------------------------------
// Expressions, precedence-climbing per spec grammar:
// comparison < additive < multiplicative < unary < atom

func (p *Parser) parseExpr() Expr {
	lhs := p.parseArithExpr()
	switch p.token {
	case TK_EQ:
		p.consume()
		return &ExprEqual{cmpExpr{L: lhs, R: p.parseArithExpr()}}
	case TK_NE:
		p.consume()
		return &ExprNotEqual{cmpExpr{L: lhs, R: p.parseArithExpr()}}
	case TK_LT:
		p.consume()
		return &ExprLess{cmpExpr{L: lhs, R: p.parseArithExpr()}}
	case TK_LE:
		p.consume()
		return &ExprLessOrEqual{cmpExpr{L: lhs, R: p.parseArithExpr()}}
	case TK_GT:
		p.consume()
		rhs := p.parseArithExpr()
		return &ExprLess{cmpExpr{L: rhs, R: lhs}}
	case TK_GE:
		p.consume()
		rhs := p.parseArithExpr()
		return &ExprLessOrEqual{cmpExpr{L: rhs, R: lhs}}
	default:
		return &ExprArith{X: lhs}
	}
}

func (p *Parser) parseArithExpr() ArithExpr {
	lhs := ArithExpr(&ArithFactor{X: p.parseFactor()})
	for p.token == TK_PLUS || p.token == TK_MINUS {
		op := p.token
		p.consume()
		rhs := p.parseFactor()
		if op == TK_PLUS {
			lhs = &ArithAdd{L: lhs, R: rhs}
		} else {
			lhs = &ArithSub{L: lhs, R: rhs}
		}
	}
	return lhs
}

func (p *Parser) parseFactor() Factor {
	lhs := Factor(&FactorUnary{X: p.parseUnary()})
	for p.token == TK_TIMES || p.token == TK_DIV {
		op := p.token
		p.consume()
		rhs := p.parseUnary()
		if op == TK_TIMES {
			lhs = &FactorMul{L: lhs, R: rhs}
		} else {
			lhs = &FactorDiv{L: lhs, R: rhs}
		}
	}
	return lhs
}

func (p *Parser) parseUnary() Unary {
	switch p.token {
	case TK_MINUS:
		p.consume()
		return &UnaryNeg{X: p.parseAtom()}
	case TK_PLUS:
		p.consume()
		return &UnaryAtom{X: p.parseAtom()}
	case TK_TIMES:
		p.consume()
		return &UnaryDeref{X: p.parseAtom()}
	default:
		return &UnaryAtom{X: p.parseAtom()}
	}
}

func (p *Parser) parseAtom() Atom {
	switch p.token {
	case LIT_INT:
		v, err := strconv.ParseInt(p.lexeme, 10, 32)
		if err != nil {
			syntaxErrorf("invalid integer literal %q", p.lexeme)
		}
		p.consume()
		return &AtomNumber{Value: int32(v)}
	case TK_LPAREN:
		p.consume()
		x := p.parseExpr()
		p.expect(TK_RPAREN)
		p.consume()
		return &AtomExpr{X: x}
	case TK_AMP:
		p.consume()
		name := p.lexeme
		p.expect(TK_IDENT)
		p.consume()
		return &AtomAddressOf{Name: name}
	case TK_IDENT:
		name := p.lexeme
		p.consume()
		if p.token == TK_LPAREN {
			p.consume()
			args := make([]Expr, 0)
			for p.token != TK_RPAREN {
				if len(args) > 0 {
					p.expect(TK_COMMA)
					p.consume()
				}
				args = append(args, p.parseExpr())
			}
			p.expect(TK_RPAREN)
			p.consume()
			if len(args) > 6 {
				syntaxErrorf("function call %q takes at most 6 arguments, got %d", name, len(args))
			}
			return &AtomFuncCall{Name: name, Args: args}
		}
		return &AtomVariable{Name: name}
	default:
		syntaxErrorf("unexpected token %v (%q) in expression", p.token, p.lexeme)
		return nil
	}
}
