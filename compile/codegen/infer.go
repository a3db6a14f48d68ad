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
package codegen

import (
	"fmt"

	"nanoc/ast"
)

// InferError is the inferencer's own text-based failure, lifted by the
// code generator into compile.TypeMismatch at the point it's consulted
// (only Add, per spec §4.2/§9).
type InferError struct {
	Text string
}

func (e *InferError) Error() string { return e.Text }

// InferAtom implements the recursive structural rules of spec §4.3
// for Atom. Variable/AddressOf lookups consult only the topmost frame
// of meta, matching the generator's own single-frame lookup discipline.
func InferAtom(meta *MetaInfo, a ast.Atom) (ast.DataType, error) {
	switch v := a.(type) {
	case *ast.AtomNumber:
		return ast.TInt, nil
	case *ast.AtomExpr:
		return InferExpr(meta, v.X)
	case *ast.AtomVariable:
		info, ok := meta.GetVariable(v.Name)
		if !ok {
			return nil, &InferError{Text: fmt.Sprintf("Undefined variable %s", v.Name)}
		}
		return info.Type, nil
	case *ast.AtomAddressOf:
		info, ok := meta.GetVariable(v.Name)
		if !ok {
			return nil, &InferError{Text: fmt.Sprintf("Undefined variable %s", v.Name)}
		}
		return &ast.Pointer{Depth: 1, Base: info.Type}, nil
	case *ast.AtomFuncCall:
		// Every call is assumed to return Int regardless of the callee's
		// declared return type — an intentional simplification (spec §9).
		return ast.TInt, nil
	default:
		return nil, &InferError{Text: "unknown atom in type inference"}
	}
}

func InferUnary(meta *MetaInfo, u ast.Unary) (ast.DataType, error) {
	switch v := u.(type) {
	case *ast.UnaryAtom:
		return InferAtom(meta, v.X)
	case *ast.UnaryNeg:
		t, err := InferAtom(meta, v.X)
		if err != nil {
			return nil, err
		}
		if !t.Equal(ast.TInt) {
			return nil, &InferError{Text: "operand of unary - must be Int"}
		}
		return ast.TInt, nil
	case *ast.UnaryDeref:
		t, err := InferAtom(meta, v.X)
		if err != nil {
			return nil, err
		}
		p, ok := t.(*ast.Pointer)
		if !ok {
			return nil, &InferError{Text: "operand of * must be a pointer"}
		}
		if p.Depth == 1 {
			return p.Base, nil
		}
		return &ast.Pointer{Depth: p.Depth - 1, Base: p.Base}, nil
	default:
		return nil, &InferError{Text: "unknown unary in type inference"}
	}
}

func InferFactor(meta *MetaInfo, f ast.Factor) (ast.DataType, error) {
	switch v := f.(type) {
	case *ast.FactorUnary:
		return InferUnary(meta, v.X)
	case *ast.FactorMul:
		return inferBinary(meta, mustInferFactor(meta, v.L), mustInferUnary(meta, v.R))
	case *ast.FactorDiv:
		return inferBinary(meta, mustInferFactor(meta, v.L), mustInferUnary(meta, v.R))
	default:
		return nil, &InferError{Text: "unknown factor in type inference"}
	}
}

func InferArithExpr(meta *MetaInfo, a ast.ArithExpr) (ast.DataType, error) {
	switch v := a.(type) {
	case *ast.ArithFactor:
		return InferFactor(meta, v.X)
	case *ast.ArithAdd:
		return inferBinary(meta, mustInferArith(meta, v.L), mustInferFactor(meta, v.R))
	case *ast.ArithSub:
		return inferBinary(meta, mustInferArith(meta, v.L), mustInferFactor(meta, v.R))
	default:
		return nil, &InferError{Text: "unknown arith expr in type inference"}
	}
}

func InferExpr(meta *MetaInfo, e ast.Expr) (ast.DataType, error) {
	if arith, ok := e.(*ast.ExprArith); ok {
		return InferArithExpr(meta, arith.X)
	}
	// Equal/NotEqual/Less/LessOrEqual all produce Int per spec §4.3, but
	// still must validate their operands unify.
	l, r, ok := comparisonOperands(e)
	if !ok {
		return nil, &InferError{Text: "unknown expr in type inference"}
	}
	lt, err := InferArithExpr(meta, l)
	if err != nil {
		return nil, err
	}
	rt, err := InferArithExpr(meta, r)
	if err != nil {
		return nil, err
	}
	if !lt.Equal(rt) {
		return nil, &InferError{Text: "comparison operands must have the same type"}
	}
	return ast.TInt, nil
}

func comparisonOperands(e ast.Expr) (ast.ArithExpr, ast.ArithExpr, bool) {
	switch v := e.(type) {
	case *ast.ExprEqual:
		return v.L, v.R, true
	case *ast.ExprNotEqual:
		return v.L, v.R, true
	case *ast.ExprLess:
		return v.L, v.R, true
	case *ast.ExprLessOrEqual:
		return v.L, v.R, true
	default:
		return nil, nil, false
	}
}

// inferBinary implements the shared unification rule for +, -, *, /:
// both sides must be structurally equal; the result is that common type.
func inferBinary(meta *MetaInfo, l result, r result) (ast.DataType, error) {
	if l.err != nil {
		return nil, l.err
	}
	if r.err != nil {
		return nil, r.err
	}
	if !l.t.Equal(r.t) {
		return nil, &InferError{Text: fmt.Sprintf("operand type mismatch: %s vs %s", l.t, r.t)}
	}
	return l.t, nil
}

type result struct {
	t   ast.DataType
	err error
}

func mustInferFactor(meta *MetaInfo, f ast.Factor) result {
	t, err := InferFactor(meta, f)
	return result{t, err}
}

func mustInferUnary(meta *MetaInfo, u ast.Unary) result {
	t, err := InferUnary(meta, u)
	return result{t, err}
}

func mustInferArith(meta *MetaInfo, a ast.ArithExpr) result {
	t, err := InferArithExpr(meta, a)
	return result{t, err}
}
