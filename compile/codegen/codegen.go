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

// Package codegen walks a parsed program and emits Intel-syntax x86-64
// assembly on a stack-machine discipline: every Expr, ArithExpr, Factor,
// Unary, Atom, and Statement (other than Return, Break, and For; see
// genFor) pushes exactly one 64-bit value before returning. Grounded on the recursive per-node
// lowering shape of the teacher's lower_x86.go (upstream falcon repo),
// adapted from an SSA-lowering pass to a direct AST walk since this
// generator has no SSA form and no register allocator.
package codegen

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"nanoc/ast"
)

// PointeeSize is the fixed size, in bytes, assumed for every pointer's
// base type. Correct only for Int and pointer-of-pointer bases; a more
// complete implementation would compute sizeof(base) (spec §9).
const PointeeSize = 8

// UndefinedVariableError and TypeMismatchError mirror compile's error
// taxonomy (spec §7) without codegen importing compile, which would
// create an import cycle; compile.Compile translates these back into its
// own UndefinedVariable/TypeMismatch types at the package boundary.
type UndefinedVariableError struct{ Name string }

func (e *UndefinedVariableError) Error() string { return fmt.Sprintf("Undefined variable: %s", e.Name) }

type TypeMismatchError struct{ Reason string }

func (e *TypeMismatchError) Error() string { return fmt.Sprintf("Type mismatch: %s", e.Reason) }

// Generator holds the buffers and environment threaded through a single
// compilation. The function-definition buffer accumulates separately
// from the main body so that main's sub-rsp instruction, which depends
// on the final top-level variable count, can be emitted only after the
// whole main body is known (spec §4.2, "Top-level program emission").
type Generator struct {
	meta     *MetaInfo
	mainBody *Buffer
	funcDefs *Buffer
}

func NewGenerator() *Generator {
	return &Generator{
		meta:     NewMetaInfo(),
		mainBody: NewBuffer(),
		funcDefs: NewBuffer(),
	}
}

// Generate lowers an entire program and returns the final assembly text,
// header included.
func (g *Generator) Generate(prog *ast.Program) (string, error) {
	for _, unit := range prog.Units {
		if err := g.genProgramUnit(unit); err != nil {
			return "", err
		}
	}

	out := NewBuffer()
	out.LabelDef("main")
	out.Push(Reg(RBP))
	out.Mov(Reg(RBP), Reg(RSP))
	out.Sub(Reg(RSP), Imm(8*int64(g.meta.GetNumberOfVariables())))
	out.Append(g.mainBody)
	out.Mov(Reg(RSP), Reg(RBP))
	out.Pop(RBP)
	out.Ret()
	out.Append(g.funcDefs)

	return Header + out.String(), nil
}

func (g *Generator) genProgramUnit(u ast.ProgramUnit) error {
	switch v := u.(type) {
	case *ast.FuncDef:
		return g.genFuncDef(v)
	case ast.Statement:
		if err := g.genStatement(g.mainBody, v); err != nil {
			return err
		}
		g.mainBody.Pop(RAX)
		return nil
	default:
		return errors.Errorf("unknown program unit %T", u)
	}
}

// genFuncDef lowers a function definition into a standalone buffer,
// appended to the program's function-def section, per spec §4.2.
func (g *Generator) genFuncDef(f *ast.FuncDef) error {
	g.meta.PushScope()
	g.meta.RegisterVariables(f.Params)

	buf := NewBuffer()
	buf.LabelDef(f.Name)
	buf.Push(Reg(RBP))
	buf.Mov(Reg(RBP), Reg(RSP))
	buf.Sub(Reg(RSP), Imm(8*int64(len(f.Params))))

	// [rbp-(i+1)*8] <- arg register i, for each parameter slot.
	for i := range f.Params {
		g.movToSlot(buf, uint32(i), ArgRegs[i])
	}

	if err := g.genStatement(buf, f.Body); err != nil {
		return err
	}
	buf.Pop(RAX)
	buf.Mov(Reg(RSP), Reg(RBP))
	buf.Pop(RBP)
	buf.Ret()

	g.meta.PopScope()
	g.funcDefs.Append(buf)
	return nil
}

// movToSlot stores src into the frame slot for variable id i:
// mov rax,rbp ; sub rax,(i+1)*8 ; mov [rax],src.
func (g *Generator) movToSlot(buf *Buffer, id uint32, src Register) {
	buf.Mov(Reg(RAX), Reg(RBP))
	buf.Sub(Reg(RAX), Imm(int64(id+1)*8))
	buf.Mov(Indirect(RAX), Reg(src))
}

// loadSlotAddress leaves the slot address for variable id in rax:
// mov rax,rbp ; sub rax,(id+1)*8.
func loadSlotAddress(buf *Buffer, id uint32) {
	buf.Mov(Reg(RAX), Reg(RBP))
	buf.Sub(Reg(RAX), Imm(int64(id+1)*8))
}

func (g *Generator) genStatement(buf *Buffer, s ast.Statement) error {
	switch v := s.(type) {
	case *ast.ExprStmt:
		return g.genExpr(buf, v.X)
	case *ast.AssignStmt:
		return g.genAssign(buf, v.Name, v.X)
	case *ast.AssignPointerStmt:
		return g.genAssignPointer(buf, v.Depth, v.Name, v.X)
	case *ast.ReturnStmt:
		if err := g.genExpr(buf, v.X); err != nil {
			return err
		}
		buf.Pop(RAX)
		buf.Mov(Reg(RSP), Reg(RBP))
		buf.Pop(RBP)
		buf.Ret()
		return nil
	case *ast.IfStmt:
		return g.genIf(buf, v)
	case *ast.BlockStmt:
		return g.genBlock(buf, v)
	case *ast.WhileStmt:
		return g.genWhile(buf, v)
	case *ast.ForStmt:
		return g.genFor(buf, v)
	case *ast.BreakStmt:
		buf.Jmp(g.meta.GetLabelForBreak())
		return nil
	case *ast.VarDefStmt:
		g.meta.RegisterVariable(v.Name, v.Type)
		buf.Push(Imm(0))
		return nil
	default:
		return errors.Errorf("unknown statement %T", s)
	}
}

func (g *Generator) genBlock(buf *Buffer, b *ast.BlockStmt) error {
	for i, stmt := range b.Stmts {
		if err := g.genStatement(buf, stmt); err != nil {
			return err
		}
		if i != len(b.Stmts)-1 {
			buf.Pop(RAX)
		}
	}
	if len(b.Stmts) == 0 {
		buf.Push(Imm(0))
	}
	return nil
}

func (g *Generator) genIf(buf *Buffer, s *ast.IfStmt) error {
	if err := g.genExpr(buf, s.Cond); err != nil {
		return err
	}
	buf.Pop(RAX)
	buf.Cmp(Reg(RAX), Imm(0))

	if s.Else != nil {
		elseLabel := g.meta.GetNewLabel()
		endLabel := g.meta.GetNewLabel()
		buf.Je(elseLabel)
		if err := g.genStatement(buf, s.Then); err != nil {
			return err
		}
		buf.Jmp(endLabel)
		buf.LabelDef(elseLabel)
		if err := g.genStatement(buf, s.Else); err != nil {
			return err
		}
		buf.LabelDef(endLabel)
	} else {
		endLabel := g.meta.GetNewLabel()
		buf.Je(endLabel)
		if err := g.genStatement(buf, s.Then); err != nil {
			return err
		}
		buf.Pop(RAX)
		buf.LabelDef(endLabel)
	}
	buf.Push(Imm(0))
	return nil
}

func (g *Generator) genWhile(buf *Buffer, s *ast.WhileStmt) error {
	start := g.meta.GetNewLabel()
	end := g.meta.GetNewLabel()
	g.meta.PushLabelForBreak(end)

	buf.LabelDef(start)
	if err := g.genExpr(buf, s.Cond); err != nil {
		return err
	}
	buf.Pop(RAX)
	buf.Cmp(Reg(RAX), Imm(0))
	buf.Je(end)
	if err := g.genStatement(buf, s.Body); err != nil {
		return err
	}
	buf.Pop(RAX)
	buf.Jmp(start)
	buf.LabelDef(end)
	buf.Push(Imm(0))

	g.meta.PopLabelForBreak()
	return nil
}

// genFor does not emit a trailing push 0 — a known inconsistency with
// the "every statement leaves a value" invariant, reproduced faithfully
// rather than fixed (spec §9).
func (g *Generator) genFor(buf *Buffer, s *ast.ForStmt) error {
	if s.Init != nil {
		if err := g.genStatement(buf, s.Init); err != nil {
			return err
		}
		buf.Pop(RAX)
	}

	start := g.meta.GetNewLabel()
	end := g.meta.GetNewLabel()
	g.meta.PushLabelForBreak(end)

	buf.LabelDef(start)
	if s.Cond != nil {
		if err := g.genExpr(buf, s.Cond); err != nil {
			return err
		}
		buf.Pop(RAX)
		buf.Cmp(Reg(RAX), Imm(0))
		buf.Je(end)
	}
	if err := g.genStatement(buf, s.Body); err != nil {
		return err
	}
	buf.Pop(RAX)
	if s.Post != nil {
		if err := g.genStatement(buf, s.Post); err != nil {
			return err
		}
		buf.Pop(RAX)
	}
	buf.Jmp(start)
	buf.LabelDef(end)

	g.meta.PopLabelForBreak()
	return nil
}

func (g *Generator) genAssign(buf *Buffer, name string, rhs ast.Expr) error {
	// Assigning to a name not yet in the current frame defines it as Int.
	info, ok := g.meta.GetVariable(name)
	if !ok {
		info = g.meta.RegisterVariable(name, ast.TInt)
	}
	loadSlotAddress(buf, info.ID)
	buf.Push(Reg(RAX))
	if err := g.genExpr(buf, rhs); err != nil {
		return err
	}
	buf.Pop(RDI)
	buf.Pop(RAX)
	buf.Mov(Indirect(RAX), Reg(RDI))
	buf.Push(Reg(RDI))
	return nil
}

func (g *Generator) genAssignPointer(buf *Buffer, depth uint32, name string, rhs ast.Expr) error {
	info, ok := g.meta.GetVariable(name)
	if !ok {
		return &UndefinedVariableError{Name: name}
	}
	loadSlotAddress(buf, info.ID)
	buf.Push(Reg(RAX))
	if err := g.genExpr(buf, rhs); err != nil {
		return err
	}
	buf.Pop(RDI)
	buf.Pop(RAX)
	for i := uint32(0); i < depth; i++ {
		buf.Mov(Reg(RAX), Indirect(RAX))
	}
	buf.Mov(Indirect(RAX), Reg(RDI))
	buf.Push(Reg(RDI))
	return nil
}

func (g *Generator) genExpr(buf *Buffer, e ast.Expr) error {
	switch v := e.(type) {
	case *ast.ExprArith:
		return g.genArithExpr(buf, v.X)
	case *ast.ExprEqual:
		return g.genComparison(buf, v.L, v.R, buf.Sete)
	case *ast.ExprNotEqual:
		return g.genComparison(buf, v.L, v.R, buf.Setne)
	case *ast.ExprLess:
		return g.genComparison(buf, v.L, v.R, buf.Setl)
	case *ast.ExprLessOrEqual:
		return g.genComparison(buf, v.L, v.R, buf.Setle)
	default:
		return errors.Errorf("unknown expr %T", e)
	}
}

func (g *Generator) genComparison(buf *Buffer, l, r ast.ArithExpr, set func(Operand)) error {
	if err := g.genArithExpr(buf, l); err != nil {
		return err
	}
	if err := g.genArithExpr(buf, r); err != nil {
		return err
	}
	buf.Pop(RDI)
	buf.Pop(RAX)
	buf.Cmp(Reg(RAX), Reg(RDI))
	set(Reg(AL))
	buf.Movzb(Reg(RAX), Reg(AL))
	buf.Push(Reg(RAX))
	return nil
}

func (g *Generator) genArithExpr(buf *Buffer, a ast.ArithExpr) error {
	switch v := a.(type) {
	case *ast.ArithFactor:
		return g.genFactor(buf, v.X)
	case *ast.ArithAdd:
		return g.genAdd(buf, v)
	case *ast.ArithSub:
		if err := g.genArithExpr(buf, v.L); err != nil {
			return err
		}
		if err := g.genFactor(buf, v.R); err != nil {
			return err
		}
		buf.Pop(RDI)
		buf.Pop(RAX)
		buf.Sub(Reg(RAX), Reg(RDI))
		buf.Push(Reg(RAX))
		return nil
	default:
		return errors.Errorf("unknown arith expr %T", a)
	}
}

// genAdd is the sole construct that consults the type inferencer (spec
// §4.2/§9): Int operands add directly, Pointer operands scale the
// right-hand side by the pointee size first.
func (g *Generator) genAdd(buf *Buffer, add *ast.ArithAdd) error {
	if err := g.genArithExpr(buf, add.L); err != nil {
		return err
	}
	if err := g.genFactor(buf, add.R); err != nil {
		return err
	}
	buf.Pop(RDI)
	buf.Pop(RAX)

	lt, err := InferArithExpr(g.meta, add.L)
	if err != nil {
		if ie, ok := err.(*InferError); ok {
			return &TypeMismatchError{Reason: ie.Text}
		}
		return err
	}

	switch {
	case lt.Equal(ast.TInt):
		buf.Add(Reg(RAX), Reg(RDI))
	case isPointer(lt):
		buf.Imul(Reg(RDI), Imm(PointeeSize))
		buf.Add(Reg(RAX), Reg(RDI))
	default:
		return &TypeMismatchError{Reason: fmt.Sprintf("operand of + is neither Int nor Pointer: %s", lt)}
	}
	buf.Push(Reg(RAX))
	return nil
}

func isPointer(t ast.DataType) bool {
	_, ok := t.(*ast.Pointer)
	return ok
}

func (g *Generator) genFactor(buf *Buffer, f ast.Factor) error {
	switch v := f.(type) {
	case *ast.FactorUnary:
		return g.genUnary(buf, v.X)
	case *ast.FactorMul:
		if err := g.genFactor(buf, v.L); err != nil {
			return err
		}
		if err := g.genUnary(buf, v.R); err != nil {
			return err
		}
		buf.Pop(RDI)
		buf.Pop(RAX)
		buf.Mul(Reg(RDI))
		buf.Push(Reg(RAX))
		return nil
	case *ast.FactorDiv:
		if err := g.genFactor(buf, v.L); err != nil {
			return err
		}
		if err := g.genUnary(buf, v.R); err != nil {
			return err
		}
		buf.Pop(RDI)
		buf.Pop(RAX)
		buf.Cqo()
		buf.Idiv(Reg(RDI))
		buf.Push(Reg(RAX))
		return nil
	default:
		return errors.Errorf("unknown factor %T", f)
	}
}

func (g *Generator) genUnary(buf *Buffer, u ast.Unary) error {
	switch v := u.(type) {
	case *ast.UnaryAtom:
		return g.genAtom(buf, v.X)
	case *ast.UnaryNeg:
		if err := g.genAtom(buf, v.X); err != nil {
			return err
		}
		buf.Pop(RAX)
		buf.Neg(Reg(RAX))
		buf.Push(Reg(RAX))
		return nil
	case *ast.UnaryDeref:
		if err := g.genAtom(buf, v.X); err != nil {
			return err
		}
		buf.Pop(RAX)
		buf.Mov(Reg(RAX), Indirect(RAX))
		buf.Push(Reg(RAX))
		return nil
	default:
		return errors.Errorf("unknown unary %T", u)
	}
}

func (g *Generator) genAtom(buf *Buffer, a ast.Atom) error {
	switch v := a.(type) {
	case *ast.AtomNumber:
		buf.Push(Imm(int64(v.Value)))
		return nil
	case *ast.AtomExpr:
		return g.genExpr(buf, v.X)
	case *ast.AtomVariable:
		info, ok := g.meta.GetVariable(v.Name)
		if !ok {
			return &UndefinedVariableError{Name: v.Name}
		}
		loadSlotAddress(buf, info.ID)
		buf.Push(Indirect(RAX))
		return nil
	case *ast.AtomAddressOf:
		info, ok := g.meta.GetVariable(v.Name)
		if !ok {
			return &UndefinedVariableError{Name: v.Name}
		}
		loadSlotAddress(buf, info.ID)
		buf.Push(Reg(RAX))
		return nil
	case *ast.AtomFuncCall:
		return g.genFuncCall(buf, v)
	default:
		return errors.Errorf("unknown atom %T", a)
	}
}

// genFuncCall evaluates each argument left-to-right onto the stack,
// then pops them into argument registers in reverse order so that the
// first argument lands in rdi, matching spec §4.2's FunctionCall rule.
// lo.Reverse mirrors the upstream pack's use of samber/lo for small
// slice transforms (other_examples' amd64 parameter-tuple handling)
// rather than a hand-rolled reversal loop.
func (g *Generator) genFuncCall(buf *Buffer, call *ast.AtomFuncCall) error {
	if len(call.Args) > MaxCallArgs {
		return errors.Errorf("function call to %s passes %d arguments, at most %d supported", call.Name, len(call.Args), MaxCallArgs)
	}
	for _, arg := range call.Args {
		if err := g.genExpr(buf, arg); err != nil {
			return err
		}
	}
	regsUsed := lo.Reverse(append([]Register{}, ArgRegs[:len(call.Args)]...))
	for _, reg := range regsUsed {
		buf.Pop(reg)
	}
	buf.Call(call.Name)
	buf.Push(Reg(RAX))
	return nil
}
