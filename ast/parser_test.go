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

func TestParseSimpleArithStatement(t *testing.T) {
	prog, err := ParseProgram("1+2;")
	mustBe(t, err == nil, "expected no parse error")
	mustBe(t, len(prog.Units) == 1, "expected one program unit")

	stmt, ok := prog.Units[0].(*ExprStmt)
	mustBe(t, ok, "expected ExprStmt")
	arith, ok := stmt.X.(*ExprArith)
	mustBe(t, ok, "expected ExprArith")
	add, ok := arith.X.(*ArithAdd)
	mustBe(t, ok, "expected ArithAdd")

	left, ok := add.L.(*ArithFactor)
	mustBe(t, ok, "expected ArithFactor on the left")
	leftNum, ok := left.X.(*FactorUnary).X.(*UnaryAtom).X.(*AtomNumber)
	mustBe(t, ok, "expected AtomNumber 1")
	mustBe(t, leftNum.Value == 1, "expected left operand 1")

	rightNum, ok := add.R.(*FactorUnary).X.(*UnaryAtom).X.(*AtomNumber)
	mustBe(t, ok, "expected AtomNumber 2")
	mustBe(t, rightNum.Value == 2, "expected right operand 2")
}

func TestParseAssignAndVarDef(t *testing.T) {
	prog, err := ParseProgram("int a; a = 5; b = a + 2;")
	mustBe(t, err == nil, "expected no parse error")
	mustBe(t, len(prog.Units) == 3, "expected three program units")

	_, ok := prog.Units[0].(*VarDefStmt)
	mustBe(t, ok, "expected VarDefStmt")

	assign, ok := prog.Units[1].(*AssignStmt)
	mustBe(t, ok, "expected AssignStmt")
	mustBe(t, assign.Name == "a", "expected assignment to a")
}

func TestParsePointerDeclAndDeref(t *testing.T) {
	prog, err := ParseProgram("int *p; p = &x; *p = 99;")
	mustBe(t, err == nil, "expected no parse error")

	def, ok := prog.Units[0].(*VarDefStmt)
	mustBe(t, ok, "expected VarDefStmt")
	ptr, ok := def.Type.(*Pointer)
	mustBe(t, ok, "expected pointer type")
	mustBe(t, ptr.Depth == 1, "expected pointer depth 1")

	assignPtr, ok := prog.Units[2].(*AssignPointerStmt)
	mustBe(t, ok, "expected AssignPointerStmt")
	mustBe(t, assignPtr.Depth == 1, "expected deref depth 1")
	mustBe(t, assignPtr.Name == "p", "expected assignment through p")
}

func TestParseIfWhileForAndBreak(t *testing.T) {
	prog, err := ParseProgram(`
		if (a < 3) b = 1; else b = 2;
		while (a < 3) a = a + 1;
		for (i = 0; i < 10; i = i + 1) { if (i == 5) break; }
	`)
	mustBe(t, err == nil, "expected no parse error")
	mustBe(t, len(prog.Units) == 3, "expected three program units")

	ifStmt, ok := prog.Units[0].(*IfStmt)
	mustBe(t, ok, "expected IfStmt")
	mustBe(t, ifStmt.Else != nil, "expected else branch")

	_, ok = prog.Units[1].(*WhileStmt)
	mustBe(t, ok, "expected WhileStmt")

	forStmt, ok := prog.Units[2].(*ForStmt)
	mustBe(t, ok, "expected ForStmt")
	mustBe(t, forStmt.Init != nil, "expected for-init")
	mustBe(t, forStmt.Cond != nil, "expected for-cond")
	mustBe(t, forStmt.Post != nil, "expected for-post")
}

func TestParseFuncDefAndCall(t *testing.T) {
	prog, err := ParseProgram("int add(int a, int b) { return a + b; } add(1, 2);")
	mustBe(t, err == nil, "expected no parse error")
	mustBe(t, len(prog.Units) == 2, "expected two program units")

	fn, ok := prog.Units[0].(*FuncDef)
	mustBe(t, ok, "expected FuncDef")
	mustBe(t, fn.Name == "add", "expected function named add")
	mustBe(t, len(fn.Params) == 2, "expected two parameters")

	stmt, ok := prog.Units[1].(*ExprStmt)
	mustBe(t, ok, "expected trailing call statement")
	arith := stmt.X.(*ExprArith).X.(*ArithFactor).X.(*FactorUnary).X.(*UnaryAtom).X
	call, ok := arith.(*AtomFuncCall)
	mustBe(t, ok, "expected AtomFuncCall")
	mustBe(t, len(call.Args) == 2, "expected two call arguments")
}

func TestParseRejectsTooManyCallArguments(t *testing.T) {
	_, err := ParseProgram("f(1,2,3,4,5,6,7);")
	mustBe(t, err != nil, "expected a parse error for >6 arguments")
}

func TestParseComparisonOperators(t *testing.T) {
	prog, err := ParseProgram("a > b; a >= b; a == b; a != b;")
	mustBe(t, err == nil, "expected no parse error")
	mustBe(t, len(prog.Units) == 4, "expected four statements")

	// `a > b` is parsed by swapping operands into Less(b, a).
	gt := prog.Units[0].(*ExprStmt).X.(*ExprLess)
	lhs := gt.L.(*ArithFactor).X.(*FactorUnary).X.(*UnaryAtom).X.(*AtomVariable)
	mustBe(t, lhs.Name == "b", "expected > to desugar into Less with swapped operands")
}
