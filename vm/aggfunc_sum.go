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
	"github.com/colvecdb/aggregate/wide128"
)

// sumIntFunc sums a signed integer column of 32 bits or narrower into an
// int64 accumulator, which can never overflow for that input width.
type sumIntFunc[T batch.Numeric] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []int64
	result   *batch.NumericArray[int64]
}

func newSumIntFunc[T batch.Numeric]() *sumIntFunc[T] { return &sumIntFunc[T]{} }

func (f *sumIntFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumIntFunc[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
	} else {
		f.sums = append(f.sums, toInt64(v))
	}
	return nil
}

func (f *sumIntFunc[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = toInt64(v)
		return nil
	}
	f.sums[slot] += toInt64(v)
	return nil
}

func (f *sumIntFunc[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
	}
	return f.UpdateBatch()
}

func (f *sumIntFunc[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += toInt64(v)
	}
	return nil
}

func (f *sumIntFunc[T]) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]int64, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *sumIntFunc[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[int64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.sums[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *sumIntFunc[T]) Result() batch.Array     { return f.result }
func (f *sumIntFunc[T]) DataType() coltype.Type { return coltype.Int64 }

// sumUintFunc sums an unsigned integer column of 32 bits or narrower into a
// uint64 accumulator.
type sumUintFunc[T batch.Numeric] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []uint64
	result   *batch.NumericArray[uint64]
}

func newSumUintFunc[T batch.Numeric]() *sumUintFunc[T] { return &sumUintFunc[T]{} }

func (f *sumUintFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumUintFunc[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
	} else {
		f.sums = append(f.sums, toUint64(v))
	}
	return nil
}

func (f *sumUintFunc[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = toUint64(v)
		return nil
	}
	f.sums[slot] += toUint64(v)
	return nil
}

func (f *sumUintFunc[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
	}
	return f.UpdateBatch()
}

func (f *sumUintFunc[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += toUint64(v)
	}
	return nil
}

func (f *sumUintFunc[T]) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]uint64, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *sumUintFunc[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[uint64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.sums[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *sumUintFunc[T]) Result() batch.Array     { return f.result }
func (f *sumUintFunc[T]) DataType() coltype.Type { return coltype.Uint64 }

// sumFloatFunc sums a float32/float64 column in a float64 accumulator.
type sumFloatFunc[T batch.Numeric] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []float64
	result   *batch.NumericArray[float64]
}

func newSumFloatFunc[T batch.Numeric]() *sumFloatFunc[T] { return &sumFloatFunc[T]{} }

func (f *sumFloatFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumFloatFunc[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
	} else {
		f.sums = append(f.sums, toFloat64(v))
	}
	return nil
}

func (f *sumFloatFunc[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = toFloat64(v)
		return nil
	}
	f.sums[slot] += toFloat64(v)
	return nil
}

func (f *sumFloatFunc[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
	}
	return f.UpdateBatch()
}

func (f *sumFloatFunc[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += toFloat64(v)
	}
	return nil
}

func (f *sumFloatFunc[T]) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]float64, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *sumFloatFunc[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.sums[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *sumFloatFunc[T]) Result() batch.Array     { return f.result }
func (f *sumFloatFunc[T]) DataType() coltype.Type { return coltype.Float64 }

// sumFloat16Func sums a float16 column in a float64 accumulator, decoding
// each row's raw half-precision bits with float16ToFloat64 before adding —
// the double-promotion the original's SumFunc<HalfFloatType,...> performs.
type sumFloat16Func struct {
	iter     *numericIter[uint16]
	hasValue []bool
	sums     []float64
	result   *batch.NumericArray[float64]
}

func newSumFloat16Func() *sumFloat16Func { return &sumFloat16Func{} }

func (f *sumFloat16Func) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[uint16])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumFloat16Func) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
	} else {
		f.sums = append(f.sums, float16ToFloat64(v))
	}
	return nil
}

func (f *sumFloat16Func) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = float16ToFloat64(v)
		return nil
	}
	f.sums[slot] += float16ToFloat64(v)
	return nil
}

func (f *sumFloat16Func) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
	}
	return f.UpdateBatch()
}

func (f *sumFloat16Func) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += float16ToFloat64(v)
	}
	return nil
}

func (f *sumFloat16Func) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]float64, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *sumFloat16Func) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.sums[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *sumFloat16Func) Result() batch.Array     { return f.result }
func (f *sumFloat16Func) DataType() coltype.Type { return coltype.Float64 }

// sumNativeFunc sums a time32/time64/duration column in its own native
// representation, keeping the original unit-typed output — these quantities
// (not absolute points in time) are meaningful to add.
type sumNativeFunc[T batch.Numeric] struct {
	iter       *numericIter[T]
	outputType coltype.Type
	unit       coltype.TimeUnit
	hasValue   []bool
	sums       []T
	result     *batch.NumericArray[T]
}

func newSumNativeFunc[T batch.Numeric](outputType coltype.Type, unit coltype.TimeUnit) *sumNativeFunc[T] {
	return &sumNativeFunc[T]{outputType: outputType, unit: unit}
}

func (f *sumNativeFunc[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumNativeFunc[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	f.sums = append(f.sums, v)
	return nil
}

func (f *sumNativeFunc[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = v
		return nil
	}
	f.sums[slot] += v
	return nil
}

func (f *sumNativeFunc[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
	}
	return f.UpdateBatch()
}

func (f *sumNativeFunc[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += v
	}
	return nil
}

func (f *sumNativeFunc[T]) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]T, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func (f *sumNativeFunc[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[T](len(order))
	for _, slot := range order {
		if f.hasValue[slot] {
			b.Append(f.sums[slot])
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *sumNativeFunc[T]) Result() batch.Array     { return f.result }
func (f *sumNativeFunc[T]) DataType() coltype.Type { return f.outputType }

// sumWide128Func sums a 64-bit integer column (T is int64 or uint64) into a
// Wide128 accumulator, exactly as big as needed to never overflow from
// int64/uint64 inputs alone (see wide128.Add's own 128-bit overflow check,
// which is a distinct, much-less-reachable failure mode). Summarize decides
// per §4.3 whether the final sums still fit in T: if every group's sum does,
// the output column stays typed as T; otherwise the whole column is
// promoted to decimal128 and every group (not just the overflowing ones) is
// re-rendered as a decimal, since a RecordBatch column has one physical
// type for all its rows.
type sumWide128Func[T int64 | uint64] struct {
	iter       *numericIter[T]
	hasValue   []bool
	sums       []wide128.Wide128
	outputType coltype.Type
	resultInt  *batch.NumericArray[T]
	resultDec  *batch.BytesArray
}

func newSumWide128Func[T int64 | uint64](nativeType coltype.Type) *sumWide128Func[T] {
	return &sumWide128Func[T]{outputType: nativeType}
}

func (f *sumWide128Func[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("sum: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *sumWide128Func[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, wide128.Zero)
	} else {
		f.sums = append(f.sums, wide128.FromInt(v))
	}
	return nil
}

func (f *sumWide128Func[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	if !f.hasValue[slot] {
		f.hasValue[slot] = true
		f.sums[slot] = wide128.FromInt(v)
		return nil
	}
	sum, overflow := wide128.Add(f.sums[slot], wide128.FromInt(v))
	if overflow {
		return errOverflowFatal("sum accumulator exceeded the signed 128-bit range")
	}
	f.sums[slot] = sum
	return nil
}

func (f *sumWide128Func[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, wide128.Zero)
	}
	return f.UpdateBatch()
}

func (f *sumWide128Func[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		if !f.hasValue[0] {
			f.hasValue[0] = true
			f.sums[0] = wide128.FromInt(v)
			continue
		}
		sum, overflow := wide128.Add(f.sums[0], wide128.FromInt(v))
		if overflow {
			return errOverflowFatal("sum accumulator exceeded the signed 128-bit range")
		}
		f.sums[0] = sum
	}
	return nil
}

func (f *sumWide128Func[T]) Reserve(n int) {
	if cap(f.sums) < n {
		growS := make([]wide128.Wide128, len(f.sums), n)
		copy(growS, f.sums)
		f.sums = growS
		growH := make([]bool, len(f.hasValue), n)
		copy(growH, f.hasValue)
		f.hasValue = growH
	}
}

func tryCastWide128Back[T int64 | uint64](w wide128.Wide128) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case int64:
		v, ok := wide128.TryCastI64(w)
		return T(v), ok
	default:
		v, ok := wide128.TryCastUint64(w)
		return T(v), ok
	}
}

func (f *sumWide128Func[T]) Summarize(order []int) error {
	allFit := true
	for _, slot := range order {
		if !f.hasValue[slot] {
			continue
		}
		if _, ok := tryCastWide128Back[T](f.sums[slot]); !ok {
			allFit = false
			break
		}
	}
	if allFit {
		b := batch.NewNumericBuilder[T](len(order))
		for _, slot := range order {
			if !f.hasValue[slot] {
				b.AppendNull()
				continue
			}
			v, _ := tryCastWide128Back[T](f.sums[slot])
			b.Append(v)
		}
		f.resultInt = b.Build()
		f.resultDec = nil
		return nil
	}

	Errorf("sum: promoting output column to decimal128 after overflowing the native accumulator")
	f.outputType = coltype.Decimal128
	b := batch.NewBytesBuilder(len(order))
	for _, slot := range order {
		if !f.hasValue[slot] {
			b.AppendNull()
			continue
		}
		raw := f.sums[slot].To16Bytes()
		b.Append(raw[:])
	}
	f.resultDec = b.Build()
	f.resultInt = nil
	return nil
}

func (f *sumWide128Func[T]) Result() batch.Array {
	if f.resultDec != nil {
		return f.resultDec
	}
	return f.resultInt
}

func (f *sumWide128Func[T]) DataType() coltype.Type { return f.outputType }
