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

import "testing"

func mustBe(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

func TestLexerBasicTokens(t *testing.T) {
	lexer := NewLexer("a = 12 + b * (c - 3);")
	want := []TokenKind{
		TK_IDENT, TK_ASSIGN, LIT_INT, TK_PLUS, TK_IDENT, TK_TIMES,
		TK_LPAREN, TK_IDENT, TK_MINUS, LIT_INT, TK_RPAREN, TK_SEMICOLON, TK_EOF,
	}
	for i, expect := range want {
		kind, _ := lexer.NextToken()
		mustBe(t, kind == expect, "token mismatch at index")
		_ = i
	}
}

func TestLexerKeywordsAndCompareOps(t *testing.T) {
	lexer := NewLexer("if (a >= 1) return;")
	kind, lexeme := lexer.NextToken()
	mustBe(t, kind == KW_IF, "expected keyword if")
	mustBe(t, lexeme == "if", "expected lexeme if")

	lexer.NextToken() // (
	lexer.NextToken() // a
	kind, _ = lexer.NextToken()
	mustBe(t, kind == TK_GE, "expected >=")
}

func TestLexerTracksMultiCharOperators(t *testing.T) {
	lexer := NewLexer("a==b!=c<=d")
	kinds := []TokenKind{}
	for {
		kind, _ := lexer.NextToken()
		if kind == TK_EOF {
			break
		}
		kinds = append(kinds, kind)
	}
	want := []TokenKind{TK_IDENT, TK_EQ, TK_IDENT, TK_NE, TK_IDENT, TK_LE, TK_IDENT}
	mustBe(t, len(kinds) == len(want), "unexpected token count")
	for i := range want {
		mustBe(t, kinds[i] == want[i], "operator token mismatch")
	}
}
