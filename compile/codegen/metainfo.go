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
	"nanoc/utils"
)

// VarInfo records a variable's slot index within its scope frame and its
// declared type. The slot id is 0-based and doubles as the storage
// offset via [rbp - (id+1)*8].
type VarInfo struct {
	ID   uint32
	Type ast.DataType
}

// scopeFrame is one frame's name -> VarInfo mapping. Slot ids come from
// the frame's size when a name is first inserted, so they follow
// insertion order.
type scopeFrame struct {
	vars map[string]VarInfo
}

func newScopeFrame() *scopeFrame {
	return &scopeFrame{vars: make(map[string]VarInfo)}
}

// MetaInfo is the semantic environment threaded through code generation:
// a stack of scope frames, a monotonic label counter, and a LIFO stack
// of break-target labels. Grounded on the bookkeeping style of the
// teacher's linear-scan allocator state (compile/codegen/lsra.go,
// lsra_interval.go in the upstream repo) adapted from liveness-interval
// tracking to the much simpler single-frame variable table spec §4.1
// calls for.
type MetaInfo struct {
	scopes            []*scopeFrame
	labelCount        uint64
	labelStackForBreak []string
}

// NewMetaInfo returns an environment with a single top-level frame
// already pushed, matching the top-level program's own scope.
func NewMetaInfo() *MetaInfo {
	return &MetaInfo{scopes: []*scopeFrame{newScopeFrame()}}
}

func (m *MetaInfo) PushScope() {
	m.scopes = append(m.scopes, newScopeFrame())
}

func (m *MetaInfo) PopScope() {
	utils.Assert(len(m.scopes) > 0, "pop_scope on empty scope stack")
	m.scopes = m.scopes[:len(m.scopes)-1]
}

func (m *MetaInfo) topFrame() *scopeFrame {
	utils.Assert(len(m.scopes) > 0, "no active scope frame")
	return m.scopes[len(m.scopes)-1]
}

// RegisterVariable assigns slot id = current frame size and inserts name
// into the topmost frame. Re-registering a name already in the frame
// keeps its slot id and overwrites its type.
func (m *MetaInfo) RegisterVariable(name string, t ast.DataType) VarInfo {
	frame := m.topFrame()
	id := uint32(len(frame.vars))
	if old, ok := frame.vars[name]; ok {
		id = old.ID
	}
	info := VarInfo{ID: id, Type: t}
	frame.vars[name] = info
	return info
}

// RegisterVariables batch-registers names in order, yielding slot ids
// 0..n-1, used for function parameters.
func (m *MetaInfo) RegisterVariables(params []ast.Param) {
	for _, p := range params {
		m.RegisterVariable(p.Name, p.Type)
	}
}

// GetVariable looks up name in the topmost frame only — nested blocks do
// not see outer frames, an intentional simplification (spec §9).
func (m *MetaInfo) GetVariable(name string) (VarInfo, bool) {
	info, ok := m.topFrame().vars[name]
	return info, ok
}

func (m *MetaInfo) GetNumberOfVariables() uint32 {
	return uint32(len(m.topFrame().vars))
}

// GetNewLabel returns a fresh, globally unique label of the form
// ".L<n>"; label_count strictly increases on every call.
func (m *MetaInfo) GetNewLabel() string {
	m.labelCount++
	return fmt.Sprintf(".L%d", m.labelCount)
}

func (m *MetaInfo) PushLabelForBreak(label string) {
	m.labelStackForBreak = append(m.labelStackForBreak, label)
}

func (m *MetaInfo) PopLabelForBreak() {
	utils.Assert(len(m.labelStackForBreak) > 0, "pop_label_for_break on empty break stack")
	m.labelStackForBreak = m.labelStackForBreak[:len(m.labelStackForBreak)-1]
}

// GetLabelForBreak returns the innermost enclosing loop's exit label.
// Calling it with no loop on the stack is a programmer bug (break
// outside a loop is undefined in the source, per spec §9), not a
// recoverable compile error.
func (m *MetaInfo) GetLabelForBreak() string {
	utils.Assert(len(m.labelStackForBreak) > 0, "break outside of a loop")
	return m.labelStackForBreak[len(m.labelStackForBreak)-1]
}
