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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cmpDataType compares DataType trees by value instead of by pointer
// identity, since Primitive/Pointer are always built fresh by the
// parser.
func cmpDataType(a, b DataType) bool { return a.Equal(b) }

func TestFuncDefParamTypesStructurallyMatch(t *testing.T) {
	prog, err := ParseProgram("int f(int a, int *b) { return a; }")
	mustBe(t, err == nil, "unexpected parse error")

	fn := prog.Units[0].(*FuncDef)
	want := []Param{
		{Type: TInt, Name: "a"},
		{Type: NewPointer(1, TInt), Name: "b"},
	}

	if len(fn.Params) != len(want) {
		t.Fatalf("param count mismatch (-want +got):\n%s", cmp.Diff(len(want), len(fn.Params)))
	}
	for i := range want {
		if want[i].Name != fn.Params[i].Name || !cmpDataType(want[i].Type, fn.Params[i].Type) {
			t.Fatalf("param %d mismatch (-want +got):\n%s", i, cmp.Diff(want[i].Name, fn.Params[i].Name))
		}
	}
}
