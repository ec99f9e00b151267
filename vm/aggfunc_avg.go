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

// avgF32Func computes AVG over 8/16-bit integer inputs, accumulating in
// float32 as spec'd (the narrow input width means this never loses
// precision that would matter).
type avgF32Func[T batch.Numeric] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []float32
	counts   []uint64
	result   *batch.NumericArray[float32]
}

func newAvgF32Func[T batch.Numeric]() *avgF32Func[T] { return &avgF32Func[T]{} }

func (f *avgF32Func[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("avg: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *avgF32Func[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	} else {
		f.sums = append(f.sums, float32(toFloat64(v)))
		f.counts = append(f.counts, 1)
	}
	return nil
}

func (f *avgF32Func[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	f.hasValue[slot] = true
	f.sums[slot] += float32(toFloat64(v))
	f.counts[slot]++
	return nil
}

func (f *avgF32Func[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	}
	return f.UpdateBatch()
}

func (f *avgF32Func[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += float32(toFloat64(v))
		f.counts[0]++
	}
	return nil
}

func (f *avgF32Func[T]) Reserve(n int) {}

func (f *avgF32Func[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float32](len(order))
	for _, slot := range order {
		if f.hasValue[slot] && f.counts[slot] > 0 {
			b.Append(f.sums[slot] / float32(f.counts[slot]))
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *avgF32Func[T]) Result() batch.Array     { return f.result }
func (f *avgF32Func[T]) DataType() coltype.Type { return coltype.Float32 }

// avgF64Func computes AVG over 32-bit-and-wider non-64-bit-integer inputs
// and all floats, accumulating in float64.
type avgF64Func[T batch.Numeric] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []float64
	counts   []uint64
	result   *batch.NumericArray[float64]
}

func newAvgF64Func[T batch.Numeric]() *avgF64Func[T] { return &avgF64Func[T]{} }

func (f *avgF64Func[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("avg: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *avgF64Func[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	} else {
		f.sums = append(f.sums, toFloat64(v))
		f.counts = append(f.counts, 1)
	}
	return nil
}

func (f *avgF64Func[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	f.hasValue[slot] = true
	f.sums[slot] += toFloat64(v)
	f.counts[slot]++
	return nil
}

func (f *avgF64Func[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	}
	return f.UpdateBatch()
}

func (f *avgF64Func[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += toFloat64(v)
		f.counts[0]++
	}
	return nil
}

func (f *avgF64Func[T]) Reserve(n int) {}

func (f *avgF64Func[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] && f.counts[slot] > 0 {
			b.Append(f.sums[slot] / float64(f.counts[slot]))
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *avgF64Func[T]) Result() batch.Array     { return f.result }
func (f *avgF64Func[T]) DataType() coltype.Type { return coltype.Float64 }

// avgFloat16Func computes AVG over a float16 column, decoding each row's raw
// half-precision bits with float16ToFloat64 before accumulating in float64 —
// the same double-promotion sumFloat16Func performs.
type avgFloat16Func struct {
	iter     *numericIter[uint16]
	hasValue []bool
	sums     []float64
	counts   []uint64
	result   *batch.NumericArray[float64]
}

func newAvgFloat16Func() *avgFloat16Func { return &avgFloat16Func{} }

func (f *avgFloat16Func) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[uint16])
	if !ok {
		return errInternalInvariant("avg: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *avgFloat16Func) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	} else {
		f.sums = append(f.sums, float16ToFloat64(v))
		f.counts = append(f.counts, 1)
	}
	return nil
}

func (f *avgFloat16Func) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	f.hasValue[slot] = true
	f.sums[slot] += float16ToFloat64(v)
	f.counts[slot]++
	return nil
}

func (f *avgFloat16Func) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, 0)
		f.counts = append(f.counts, 0)
	}
	return f.UpdateBatch()
}

func (f *avgFloat16Func) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		f.sums[0] += float16ToFloat64(v)
		f.counts[0]++
	}
	return nil
}

func (f *avgFloat16Func) Reserve(n int) {}

func (f *avgFloat16Func) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float64](len(order))
	for _, slot := range order {
		if f.hasValue[slot] && f.counts[slot] > 0 {
			b.Append(f.sums[slot] / float64(f.counts[slot]))
		} else {
			b.AppendNull()
		}
	}
	f.result = b.Build()
	return nil
}

func (f *avgFloat16Func) Result() batch.Array     { return f.result }
func (f *avgFloat16Func) DataType() coltype.Type { return coltype.Float64 }

// avgWide128Func computes AVG over 64-bit integer inputs. The accumulator
// is exact (Wide128), and the final division recovers precision a naive
// Wide128-to-float64 conversion before dividing would lose: quotient and
// remainder are computed exactly via DivMod, and the remainder is folded in
// as a separate, much smaller float64 division rather than being absorbed
// into the sum before converting.
type avgWide128Func[T int64 | uint64] struct {
	iter     *numericIter[T]
	hasValue []bool
	sums     []wide128.Wide128
	counts   []uint64
	result   *batch.NumericArray[float64]
}

func newAvgWide128Func[T int64 | uint64]() *avgWide128Func[T] { return &avgWide128Func[T]{} }

func (f *avgWide128Func[T]) SetArrayIter(iter ColumnIter) error {
	ni, ok := iter.(*numericIter[T])
	if !ok {
		return errInternalInvariant("avg: iterator/type mismatch")
	}
	f.iter = ni
	return nil
}

func (f *avgWide128Func[T]) Init(rowIdx int) error {
	v, null := f.iter.Next()
	f.hasValue = append(f.hasValue, !null)
	if null {
		f.sums = append(f.sums, wide128.Zero)
		f.counts = append(f.counts, 0)
	} else {
		f.sums = append(f.sums, wide128.FromInt(v))
		f.counts = append(f.counts, 1)
	}
	return nil
}

func (f *avgWide128Func[T]) Update(slot int) error {
	v, null := f.iter.Next()
	if null {
		return nil
	}
	f.hasValue[slot] = true
	sum, overflow := wide128.Add(f.sums[slot], wide128.FromInt(v))
	if overflow {
		return errOverflowFatal("avg accumulator exceeded the signed 128-bit range")
	}
	f.sums[slot] = sum
	f.counts[slot]++
	return nil
}

func (f *avgWide128Func[T]) InitBatch() error {
	if len(f.hasValue) == 0 {
		f.hasValue = append(f.hasValue, false)
		f.sums = append(f.sums, wide128.Zero)
		f.counts = append(f.counts, 0)
	}
	return f.UpdateBatch()
}

func (f *avgWide128Func[T]) UpdateBatch() error {
	for i := 0; i < f.iter.Length(); i++ {
		v, null := f.iter.Next()
		if null {
			continue
		}
		f.hasValue[0] = true
		sum, overflow := wide128.Add(f.sums[0], wide128.FromInt(v))
		if overflow {
			return errOverflowFatal("avg accumulator exceeded the signed 128-bit range")
		}
		f.sums[0] = sum
		f.counts[0]++
	}
	return nil
}

func (f *avgWide128Func[T]) Reserve(n int) {}

func (f *avgWide128Func[T]) Summarize(order []int) error {
	b := batch.NewNumericBuilder[float64](len(order))
	for _, slot := range order {
		if !f.hasValue[slot] || f.counts[slot] == 0 {
			b.AppendNull()
			continue
		}
		count := wide128.FromInt(f.counts[slot])
		quotient, remainder := wide128.DivMod(f.sums[slot], count)
		avg := quotient.Float64() + remainder.Float64()/float64(f.counts[slot])
		b.Append(avg)
	}
	f.result = b.Build()
	return nil
}

func (f *avgWide128Func[T]) Result() batch.Array     { return f.result }
func (f *avgWide128Func[T]) DataType() coltype.Type { return coltype.Float64 }
