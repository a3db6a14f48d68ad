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

// Package compile orchestrates parsing and code generation for one
// source program. Grounded on the staged shape of the teacher's
// CompileTheWorld/CompileText (upstream falcon repo compile/compiler.go),
// trimmed to the two stages this spec actually owns: the external
// assembler, linker, and gcc runtime invocation the teacher drives are
// out of scope here (spec §1, "out of scope").
package compile

import (
	"github.com/pkg/errors"

	"nanoc/ast"
	"nanoc/compile/codegen"
)

// Compile parses source and lowers it to Intel-syntax x86-64 assembly
// text. Parse failures are returned as-is (the driver prefixes them with
// "Failed to parse: "); generation failures are translated into the
// package's own UndefinedVariable/TypeMismatch taxonomy.
func Compile(source string) (string, error) {
	program, err := ast.ParseProgram(source)
	if err != nil {
		return "", err
	}

	gen := codegen.NewGenerator()
	asm, err := gen.Generate(program)
	if err != nil {
		return "", translateError(err)
	}
	return asm, nil
}

// translateError lifts codegen's own error types into compile's
// user-visible two-kind taxonomy (spec §7), keeping codegen free of an
// import back on compile.
func translateError(err error) error {
	switch e := err.(type) {
	case *codegen.UndefinedVariableError:
		return &UndefinedVariable{Name: e.Name}
	case *codegen.TypeMismatchError:
		return &TypeMismatch{Reason: e.Reason}
	default:
		return errors.WithStack(err)
	}
}
