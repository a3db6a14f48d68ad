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

// Register is a fixed physical x86-64 register. Unlike the teacher's
// codegen (compile/codegen/arch_x86.go in the upstream repo), which
// models dozens of registers across widths because it runs a linear-scan
// allocator over virtual registers, this generator has no allocator: the
// stack-machine emission convention (spec §4.2) only ever needs the
// fixed set of registers below, so the register table is a handful of
// named values rather than a generated affinity table.
type Register struct {
	Name string
}

func (r Register) String() string { return r.Name }

var (
	RAX = Register{"rax"}
	RBP = Register{"rbp"}
	RSP = Register{"rsp"}
	RDI = Register{"rdi"}
	RSI = Register{"rsi"}
	RDX = Register{"rdx"}
	RCX = Register{"rcx"}
	R8  = Register{"r8"}
	R9  = Register{"r9"}
	AL  = Register{"al"}
)

// ArgRegs is the System V AMD64 integer argument-register order, capped
// at 6 registers per spec §4.2's FunctionCall contract.
var ArgRegs = []Register{RDI, RSI, RDX, RCX, R8, R9}

var MaxCallArgs = len(ArgRegs)
