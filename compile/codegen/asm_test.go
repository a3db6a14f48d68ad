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
	"strings"
	"testing"
)

func TestPrinterLabelsAreFlushLeft(t *testing.T) {
	buf := NewBuffer()
	buf.LabelDef("main")
	buf.Push(Reg(RBP))
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	mustBe(t, lines[0] == "main:", "label line must be flush-left")
	mustBe(t, strings.HasPrefix(lines[1], "  "), "instruction line must be two-space indented")
}

func TestPrinterCommentFormat(t *testing.T) {
	buf := NewBuffer()
	buf.Comment("prologue")
	mustBe(t, buf.String() == "  // prologue\n", "comment must be two-space indented with // prefix")
}

func TestPrinterOperandRendering(t *testing.T) {
	buf := NewBuffer()
	buf.Mov(Reg(RAX), Indirect(RBP))
	buf.Add(Reg(RAX), Imm(8))
	out := buf.String()
	mustBe(t, strings.Contains(out, "mov rax,[rbp]"), "expected Intel-syntax indirect operand")
	mustBe(t, strings.Contains(out, "add rax,8"), "expected decimal immediate operand")
}

// stackDepth simulates the net effect of an instruction stream on the
// hardware stack used as an operand stack (push/pop/call only; call is
// assumed balanced by its own argument pops, which the generator always
// emits before the call). Used to validate spec §8 properties 4 and 5.
func stackDepth(instrs []Instruction) int {
	depth := 0
	for _, instr := range instrs {
		switch instr.(type) {
		case iPush:
			depth++
		case iPop:
			depth--
		}
	}
	return depth
}

func TestStackDepthHelperTracksPushPop(t *testing.T) {
	buf := NewBuffer()
	buf.Push(Imm(1))
	buf.Push(Imm(2))
	buf.Pop(RDI)
	mustBe(t, stackDepth(buf.Instructions()) == 1, "expected net depth of 1")
}
