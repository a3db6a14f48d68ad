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
package compile

import "fmt"

// UndefinedVariable is returned when a Variable, AddressOf, or
// AssignPointer references a name missing from the current frame. A plain
// Assign to a missing name defines it instead.
type UndefinedVariable struct {
	Name string
}

func (e *UndefinedVariable) Error() string {
	return fmt.Sprintf("Undefined variable: %s", e.Name)
}

// TypeMismatch is returned when + sees a non-Int/non-Pointer left
// operand, or the inferencer rejects an operator's operand types.
type TypeMismatch struct {
	Reason string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("Type mismatch: %s", e.Reason)
}
