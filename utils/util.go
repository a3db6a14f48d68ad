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
package utils

import "fmt"

// Assert panics with a formatted message when cond is false. Used for the
// class of internal invariant violations the spec treats as programmer
// bugs rather than user-facing compile errors (an empty scope-stack pop,
// a break with no enclosing loop).
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

func Unimplement() {
	panic("not implemented yet")
}

func ShouldNotReachHere() {
	panic("should not reach here")
}
