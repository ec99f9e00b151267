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

// GROUP_BUILDER never advances its own cursor: the driver already consumed
// the row to decide whether it started a new group, so every GROUP_BUILDER
// variant reads its value back out by random access at rowIdx instead.
// Update/InitBatch/UpdateBatch exist only to satisfy AggFunc and must never
// be called by construction — the driver never routes a GROUP_BUILDER
// through the existing-group or one-group paths.

// groupBuilderNumericFunc captures the group key's value for a fixed-width
// scalar column.
type groupBuilderNumericFunc[T batch.Numeric] struct {
	iter       *numericIter[T]
	outputType coltype.Type
	hasValue   []bool
	values     []T
	result     *batch.NumericArray[T]
}

func newGroupBuilderNumericFunc[T batch.Numeric](outputType coltype.Type) *groupBuilderNumericFunc[T] {
	return &groupBuilderNumericFunc[T]{outputType: outputType}
}

func (f *groupBuilderNumericFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("group_builder: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *groupBuilderNumericFunc[T]) Init(rowIdx int) error {
	f.hasValue = append(f.hasValue, !f.iter.IsNullAt(rowIdx))
	f.values = append(f.values, f.iter.GetValue(rowIdx))
	return nil
}

func (f *groupBuilderNumericFunc[T]) Update(slot int) error {
	return errInternalInvariant("group_builder: Update called, but a key column never merges into an existing group")
}

func (f *groupBuilderNumericFunc[T]) InitBatch() error {
	return errInternalInvariant("group_builder: InitBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderNumericFunc[T]) UpdateBatch() error {
	return errInternalInvariant("group_builder: UpdateBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderNumericFunc[T]) Reserve(n int) {
	if cap(f.values) < n {
		growV := make([]T, len(f.values), n)
		copy(growV, f.values)
		f.values = growV
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *groupBuilderNumericFunc[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[T](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.values[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *groupBuilderNumericFunc[T]) Result() batch.Array     { return f.result }
func (f *groupBuilderNumericFunc[T]) DataType() coltype.Type { return f.outputType }

// groupBuilderBoolFunc captures the group key's value for a bool column.
type groupBuilderBoolFunc struct {
	iter     *boolIter
	hasValue []bool
	values   []bool
	result   *batch.BoolArray
}

func newGroupBuilderBoolFunc() *groupBuilderBoolFunc { return &groupBuilderBoolFunc{} }

func (f *groupBuilderBoolFunc) SetArrayIter(iter ColumnIter) error {
	bi, ok := iter.(*boolIter)
	if !ok {
		return errInternalInvariant("group_builder: iterator/type mismatch")
	}
	f.iter = bi
	return nil
}

func (f *groupBuilderBoolFunc) Init(rowIdx int) error {
	f.hasValue = append(f.hasValue, !f.iter.IsNullAt(rowIdx))
	f.values = append(f.values, f.iter.GetValue(rowIdx))
	return nil
}

func (f *groupBuilderBoolFunc) Update(slot int) error {
	return errInternalInvariant("group_builder: Update called, but a key column never merges into an existing group")
}

func (f *groupBuilderBoolFunc) InitBatch() error {
	return errInternalInvariant("group_builder: InitBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderBoolFunc) UpdateBatch() error {
	return errInternalInvariant("group_builder: UpdateBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderBoolFunc) Reserve(n int) {}

func (f *groupBuilderBoolFunc) Summarize(order []int) error {
	b := batch.NewBoolBuilder(len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.values[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *groupBuilderBoolFunc) Result() batch.Array { return f.result }

func (f *groupBuilderBoolFunc) DataType() coltype.Type { return coltype.Bool }

// groupBuilderStringFunc captures the group key's value for a utf8/
// large_utf8 column.
type groupBuilderStringFunc struct {
	iter     *stringIter
	outType  coltype.Type
	hasValue []bool
	values   []string
	result   *batch.StringArray
}

func newGroupBuilderStringFunc(outType coltype.Type) *groupBuilderStringFunc {
	return &groupBuilderStringFunc{outType: outType}
}

func (f *groupBuilderStringFunc) SetArrayIter(iter ColumnIter) error {
	si, ok := iter.(*stringIter)
	if !ok {
		return errInternalInvariant("group_builder: iterator/type mismatch")
	}
	f.iter = si
	return nil
}

func (f *groupBuilderStringFunc) Init(rowIdx int) error {
	f.hasValue = append(f.hasValue, !f.iter.IsNullAt(rowIdx))
	f.values = append(f.values, f.iter.GetValue(rowIdx))
	return nil
}

func (f *groupBuilderStringFunc) Update(slot int) error {
	return errInternalInvariant("group_builder: Update called, but a key column never merges into an existing group")
}

func (f *groupBuilderStringFunc) InitBatch() error {
	return errInternalInvariant("group_builder: InitBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderStringFunc) UpdateBatch() error {
	return errInternalInvariant("group_builder: UpdateBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderStringFunc) Reserve(n int) {}

func (f *groupBuilderStringFunc) Summarize(order []int) error {
	b := batch.NewStringBuilder(len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.values[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *groupBuilderStringFunc) Result() batch.Array { return f.result }

func (f *groupBuilderStringFunc) DataType() coltype.Type { return f.outType }

// groupBuilderBytesFunc captures the group key's value for a binary/
// fixed_size_binary/decimal128/decimal256 column.
type groupBuilderBytesFunc struct {
	iter     *bytesIter
	outType  coltype.Type
	hasValue []bool
	values   [][]byte
	result   *batch.BytesArray
}

func newGroupBuilderBytesFunc(outType coltype.Type) *groupBuilderBytesFunc {
	return &groupBuilderBytesFunc{outType: outType}
}

func (f *groupBuilderBytesFunc) SetArrayIter(iter ColumnIter) error {
	bi, ok := iter.(*bytesIter)
	if !ok {
		return errInternalInvariant("group_builder: iterator/type mismatch")
	}
	f.iter = bi
	return nil
}

func (f *groupBuilderBytesFunc) Init(rowIdx int) error {
	f.hasValue = append(f.hasValue, !f.iter.IsNullAt(rowIdx))
	f.values = append(f.values, f.iter.GetValue(rowIdx))
	return nil
}

func (f *groupBuilderBytesFunc) Update(slot int) error {
	return errInternalInvariant("group_builder: Update called, but a key column never merges into an existing group")
}

func (f *groupBuilderBytesFunc) InitBatch() error {
	return errInternalInvariant("group_builder: InitBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderBytesFunc) UpdateBatch() error {
	return errInternalInvariant("group_builder: UpdateBatch called, but key columns only exist under the hash-table path")
}

func (f *groupBuilderBytesFunc) Reserve(n int) {}

func (f *groupBuilderBytesFunc) Summarize(order []int) error {
	b := batch.NewBytesBuilder(len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.values[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *groupBuilderBytesFunc) Result() batch.Array { return f.result }

func (f *groupBuilderBytesFunc) DataType() coltype.Type { return f.outType }
