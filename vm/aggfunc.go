// Copyright 2022 Sneller, Inc.
//
//  Licensed under the GNU Affero General Public License, Version 3 (the
//  "License"); you may not use this file except in compliance with the
//  License. You may obtain a copy of the License at
//
//   https://www.gnu.org/licenses/agpl-3.0.en.html
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package vm

import (
	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
)

// AggFuncKind names the reduction an AggFuncDef requests. GroupBuilder is
// never written by a caller — the driver synthesizes one per key-projection
// column ahead of the user-declared functions.
type AggFuncKind uint8

const (
	GroupBuilder AggFuncKind = iota
	CountStar
	Count
	Min
	Max
	Sum
	Avg
)

func (k AggFuncKind) String() string {
	switch k {
	case GroupBuilder:
		return "GROUP_BUILDER"
	case CountStar:
		return "COUNT_STAR"
	case Count:
		return "COUNT"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	default:
		return "UNKNOWN"
	}
}

// AggFuncDef names one column of the driver's output: which reduction to
// apply, which input column feeds it (empty for COUNT_STAR), and what to
// call the resulting output column.
type AggFuncDef struct {
	Kind         AggFuncKind
	InputColumn  string
	OutputColumn string
}

// AggFunc is the per-(function, input-type) state machine the driver drives
// row by row. Every group gets a "slot": an integer assigned in creation
// order, shared across every AggFunc instance for one Driver (the driver
// calls Init on every function in lockstep whenever a new group is seen, so
// function F's internal state at index k always corresponds to the same
// group as every other function's index k).
type AggFunc interface {
	// SetArrayIter binds a freshly constructed iterator for the current
	// batch's input column. Called once per batch, before that batch's
	// rows are processed.
	SetArrayIter(iter ColumnIter) error

	// Init is called exactly once per row that creates a new group,
	// appending a new slot (so slot index == previous call count). rowIdx
	// is used by GROUP_BUILDER's random-access read; ordinary functions
	// advance their own bound iterator instead and ignore it.
	Init(rowIdx int) error

	// Update is called once per row that matches an existing group,
	// advancing this function's iterator and merging the row's value into
	// slot's accumulator. Never called on a GROUP_BUILDER.
	Update(slot int) error

	// InitBatch and UpdateBatch drive the one-group path in place of
	// Init/Update: InitBatch runs once, on the first batch seen; UpdateBatch
	// runs on every batch after that. Never called on a GROUP_BUILDER.
	InitBatch() error
	UpdateBatch() error

	// Reserve pre-sizes the function's internal state and output builder
	// for n groups.
	Reserve(n int)

	// Summarize converts every created slot's final state into one output
	// row, in the order given by order (order[i] is the slot id that
	// should become output row i) — the order every other AggFunc for this
	// Driver is summarized in too, so that row i means the same group
	// across every output column.
	Summarize(order []int) error

	// Result returns the array built by the most recent Summarize call.
	Result() batch.Array

	// DataType is the function's declared output type. Constant for every
	// function except SUM of 64-bit integers, which may promote to
	// Decimal128 after Summarize observes an overflow.
	DataType() coltype.Type
}
