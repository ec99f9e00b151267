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
	"bytes"

	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
)

// minMaxFunc implements MIN/MAX over any fixed-width scalar column. NaN
// ordering is left to Go's native </>: a NaN on either side of a comparison
// is never considered strictly less or greater, so once a NaN value is
// captured as the running best it is never replaced, and a later NaN never
// replaces a non-NaN running best either — first-seen wins from that point.
// This is an accepted, documented gotcha, not a bug.
type minMaxFunc[T batch.Numeric] struct {
	iter       *numericIter[T]
	isMax      bool
	outputType coltype.Type
	hasValue   []bool
	values     []T
	result     *batch.NumericArray[T]
}

func newMinMaxFunc[T batch.Numeric](isMax bool, outputType coltype.Type) *minMaxFunc[T] {
	return &minMaxFunc[T]{isMax: isMax, outputType: outputType}
}

func (f *minMaxFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("minmax: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *minMaxFunc[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	f.values = append(f.values, v)
	return nil
}

func (f *minMaxFunc[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.values[slot] = v
		return nil
	}
	if f.better(v, f.values[slot]) {
		f.values[slot] = v
	}
	return nil
}

// better reports whether candidate should replace current: v < current for
// MIN, v > current for MAX.
func (f *minMaxFunc[T]) better(v, current T) bool {
	if f.isMax {
		return v > current
	}
	return v < current
}

func (f *minMaxFunc[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.values = append(f.values, 0)
	}
	return f.drainBatch(0)
}

func (f *minMaxFunc[T]) UpdateBatch() error { return f.drainBatch(0) }

func (f *minMaxFunc[T]) drainBatch(slot int) error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		if !f.hasValue[slot] {
			f.hasValue[slot] = true
			f.values[slot] = v
		} else if f.better(v, f.values[slot]) {
			f.values[slot] = v
		}
	}
	return nil
}

func (f *minMaxFunc[T]) Reserve(n int) {
	if cap(f.values) < n {
		growV := make([]T, len(f.values), n)
		copy(growV, f.values)
		f.values = growV
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *minMaxFunc[T]) Summarize(order []int) error {
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

func (f *minMaxFunc[T]) Result() batch.Array { return f.result }

func (f *minMaxFunc[T]) DataType() coltype.Type { return f.outputType }

// boolMinMaxFunc implements MIN/MAX over a bool column: false < true.
type boolMinMaxFunc struct {
	iter     *boolIter
	isMax    bool
	hasValue []bool
	values   []bool
	result   *batch.BoolArray
}

func newBoolMinMaxFunc(isMax bool) *boolMinMaxFunc { return &boolMinMaxFunc{isMax: isMax} }

func (f *boolMinMaxFunc) SetArrayIter(iter ColumnIter) error {
	bi, ok := iter.(*boolIter)
	if !ok {
		return errInternalInvariant("minmax: iterator/type mismatch")
	}
	f.iter = bi
	return nil
}

func (f *boolMinMaxFunc) better(v, current bool) bool {
	if f.isMax {
		return v && !current
	}
	return !v && current
}

func (f *boolMinMaxFunc) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	f.values = append(f.values, v)
	return nil
}

func (f *boolMinMaxFunc) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.values[slot] = v
	} else if f.better(v, f.values[slot]) {
		f.values[slot] = v
	}
	return nil
}

func (f *boolMinMaxFunc) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.values = append(f.values, false)
	}
	return f.UpdateBatch()
}

func (f *boolMinMaxFunc) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		if !f.hasValue[0] {
			f.hasValue[0] = true
			f.values[0] = v
		} else if f.better(v, f.values[0]) {
			f.values[0] = v
		}
	}
	return nil
}

func (f *boolMinMaxFunc) Reserve(n int) {}

func (f *boolMinMaxFunc) Summarize(order []int) error {
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

func (f *boolMinMaxFunc) Result() batch.Array { return f.result }

func (f *boolMinMaxFunc) DataType() coltype.Type { return coltype.Bool }

// stringMinMaxFunc implements MIN/MAX over string columns: lexicographic on
// the Go string's byte representation.
type stringMinMaxFunc struct {
	iter     *stringIter
	isMax    bool
	outType  coltype.Type
	hasValue []bool
	values   []string
	result   *batch.StringArray
}

func newStringMinMaxFunc(isMax bool, outType coltype.Type) *stringMinMaxFunc {
	return &stringMinMaxFunc{isMax: isMax, outType: outType}
}

func (f *stringMinMaxFunc) SetArrayIter(iter ColumnIter) error {
	si, ok := iter.(*stringIter)
	if !ok {
		return errInternalInvariant("minmax: iterator/type mismatch")
	}
	f.iter = si
	return nil
}

func (f *stringMinMaxFunc) better(v, current string) bool {
	if f.isMax {
		return v > current
	}
	return v < current
}

func (f *stringMinMaxFunc) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	f.values = append(f.values, v)
	return nil
}

func (f *stringMinMaxFunc) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.values[slot] = v
	} else if f.better(v, f.values[slot]) {
		f.values[slot] = v
	}
	return nil
}

func (f *stringMinMaxFunc) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.values = append(f.values, "")
	}
	return f.UpdateBatch()
}

func (f *stringMinMaxFunc) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		if !f.hasValue[0] {
			f.hasValue[0] = true
			f.values[0] = v
		} else if f.better(v, f.values[0]) {
			f.values[0] = v
		}
	}
	return nil
}

func (f *stringMinMaxFunc) Reserve(n int) {}

func (f *stringMinMaxFunc) Summarize(order []int) error {
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

func (f *stringMinMaxFunc) Result() batch.Array { return f.result }

func (f *stringMinMaxFunc) DataType() coltype.Type { return f.outType }

// bytesMinMaxFunc implements MIN/MAX over binary/fixed-size-binary/
// decimal128/decimal256 columns: lexicographic on the raw byte view.
type bytesMinMaxFunc struct {
	iter     *bytesIter
	isMax    bool
	outType  coltype.Type
	hasValue []bool
	values   [][]byte
	result   *batch.BytesArray
}

func newBytesMinMaxFunc(isMax bool, outType coltype.Type) *bytesMinMaxFunc {
	return &bytesMinMaxFunc{isMax: isMax, outType: outType}
}

func (f *bytesMinMaxFunc) SetArrayIter(iter ColumnIter) error {
	bi, ok := iter.(*bytesIter)
	if !ok {
		return errInternalInvariant("minmax: iterator/type mismatch")
	}
	f.iter = bi
	return nil
}

func (f *bytesMinMaxFunc) better(v, current []byte) bool {
	c := bytes.Compare(v, current)
	if f.isMax {
		return c > 0
	}
	return c < 0
}

func (f *bytesMinMaxFunc) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	f.values = append(f.values, v)
	return nil
}

func (f *bytesMinMaxFunc) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.values[slot] = v
	} else if f.better(v, f.values[slot]) {
		f.values[slot] = v
	}
	return nil
}

func (f *bytesMinMaxFunc) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.values = append(f.values, nil)
	}
	return f.UpdateBatch()
}

func (f *bytesMinMaxFunc) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		if !f.hasValue[0] {
			f.hasValue[0] = true
			f.values[0] = v
		} else if f.better(v, f.values[0]) {
			f.values[0] = v
		}
	}
	return nil
}

func (f *bytesMinMaxFunc) Reserve(n int) {}

func (f *bytesMinMaxFunc) Summarize(order []int) error {
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

func (f *bytesMinMaxFunc) Result() batch.Array { return f.result }

func (f *bytesMinMaxFunc) DataType() coltype.Type { return f.outType }
