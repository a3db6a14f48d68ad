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
package main

import (
	"fmt"
	"os"

	"nanoc/ast"
	"nanoc/compile"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: nanoc <program-source>")
		os.Exit(1)
	}

	source := os.Args[1]

	asm, err := compile.Compile(source)
	if err != nil {
		if _, isParseError := err.(*ast.ParseError); isParseError {
			fmt.Fprintf(os.Stderr, "Failed to parse: %s\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to compile: %s\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(asm)
}
