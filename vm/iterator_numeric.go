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
	"math"

	"github.com/colvecdb/aggregate/batch"
)

// numericIter walks a fixed-width scalar column of type T: the signed and
// unsigned integer families, float32/float64, and — via their underlying
// int32/int64/uint16 storage — every date/time/timestamp/duration/interval
// and float16 column, all of which reuse this one generic cursor.
type numericIter[T batch.Numeric] struct {
	arr *batch.NumericArray[T]
	pos int
}

func newNumericIter[T batch.Numeric](arr *batch.NumericArray[T]) *numericIter[T] {
	return &numericIter[T]{arr: arr}
}

func newNumericIterFrom[T batch.Numeric](col *batch.Column) (*numericIter[T], error) {
	arr, ok := col.Array.(*batch.NumericArray[T])
	if !ok {
		return nil, errInternalInvariant("column backed by unexpected array type for its declared physical type")
	}
	return newNumericIter(arr), nil
}

func (it *numericIter[T]) Length() int { return it.arr.Len() }

func (it *numericIter[T]) NonNullCount() int { return it.arr.Len() - it.arr.NullCount() }

func (it *numericIter[T]) IsNullAt(idx int) bool { return it.arr.IsNull(idx) }

// IsNull peeks at the cursor's current position without advancing —
// required by the multi-numeric and single-numeric specializations, which
// must read null status before calling NextAsU64.
func (it *numericIter[T]) IsNull() bool { return it.arr.IsNull(it.pos) }

// NextNull advances the cursor by one row and reports whether that row was
// null.
func (it *numericIter[T]) NextNull() bool {
	null := it.arr.IsNull(it.pos)
	it.pos++
	return null
}

// NextValue advances the cursor and returns the row's value; undefined if
// the row is null.
func (it *numericIter[T]) NextValue() T {
	v := it.arr.Values[it.pos]
	it.pos++
	return v
}

// GetValue peeks at an arbitrary row without touching the cursor, used by
// GROUP_BUILDER.
func (it *numericIter[T]) GetValue(idx int) T { return it.arr.Values[idx] }

// Next advances the cursor by exactly one row and returns its value together
// with whether it was null (the value is the zero value when null). This is
// the workhorse used by MIN/MAX/SUM/AVG: it combines the
// is_null-peek-then-read pattern into one call so a row is never
// double-advanced.
func (it *numericIter[T]) Next() (T, bool) {
	null := it.arr.IsNull(it.pos)
	v := it.arr.Values[it.pos]
	it.pos++
	return v, null
}

// NextAsU64 advances the cursor and returns the row's bit pattern widened to
// u64 — floats are reinterpreted bitwise (so -0.0 and +0.0 are different
// keys; this is intentional, see bitsOf).
func (it *numericIter[T]) NextAsU64() uint64 {
	v := it.NextValue()
	return bitsOf(v)
}

// bitsOf widens v's raw bit pattern into a u64, zero-extending integers and
// reinterpreting floats bitwise rather than converting their numeric value.
// This is what makes -0.0 and +0.0 distinct hash keys and is preserved
// deliberately, not a bug.
func bitsOf[T batch.Numeric](v T) uint64 {
	switch x := any(v).(type) {
	case int8:
		return uint64(uint8(x))
	case int16:
		return uint64(uint16(x))
	case int32:
		return uint64(uint32(x))
	case int64:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	default:
		return 0
	}
}

// toInt64, toUint64, and toFloat64 widen a Numeric value by its actual
// numeric value (unlike bitsOf, which reinterprets bits) — used by SUM/AVG
// to promote narrow inputs into their declared accumulator type.
func toInt64[T batch.Numeric](v T) int64 {
	switch x := any(v).(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func toUint64[T batch.Numeric](v T) uint64 {
	switch x := any(v).(type) {
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	default:
		return uint64(toInt64(v))
	}
}

func toFloat64[T batch.Numeric](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return float64(toInt64(v))
	}
}

// float16ToFloat64 decodes an IEEE-754 half-precision bit pattern (the raw
// representation float16 columns are always carried in, since Go has no
// native half-precision type) into its float64 value. SUM and AVG need the
// actual numeric value, unlike GROUP_BUILDER and MIN/MAX, which compare the
// raw uint16 bits ordinally and never decode them.
func float16ToFloat64(bits uint16) float64 {
	sign := uint32(bits&0x8000) << 16
	exp := int32((bits >> 10) & 0x1f)
	frac := uint32(bits & 0x3ff)

	switch {
	case exp == 0 && frac == 0:
		return float64(math.Float32frombits(sign))
	case exp == 0x1f:
		return float64(math.Float32frombits(sign | 0xff<<23 | frac<<13))
	}

	if exp == 0 {
		for frac&0x400 == 0 {
			frac <<= 1
			exp--
		}
		exp++
		frac &^= 0x400
	}

	f32exp := uint32(exp + 112) // re-bias from half's 15 to float32's 127
	return float64(math.Float32frombits(sign | f32exp<<23 | frac<<13))
}

// boolIter walks a bool column; kept separate from numericIter since bool
// isn't part of the Numeric constraint set but still needs the same cursor
// protocol for GROUP_BUILDER and the single/multi-numeric specializations.
type boolIter struct {
	arr *batch.BoolArray
	pos int
}

func newBoolIter(arr *batch.BoolArray) *boolIter { return &boolIter{arr: arr} }

func (it *boolIter) Length() int { return it.arr.Len() }

func (it *boolIter) NonNullCount() int { return it.arr.Len() - it.arr.NullCount() }

func (it *boolIter) IsNullAt(idx int) bool { return it.arr.IsNull(idx) }

func (it *boolIter) IsNull() bool { return it.arr.IsNull(it.pos) }

func (it *boolIter) NextNull() bool {
	null := it.arr.IsNull(it.pos)
	it.pos++
	return null
}

func (it *boolIter) NextValue() bool {
	v := it.arr.Values[it.pos]
	it.pos++
	return v
}

func (it *boolIter) Next() (bool, bool) {
	null := it.arr.IsNull(it.pos)
	v := it.arr.Values[it.pos]
	it.pos++
	return v, null
}

func (it *boolIter) GetValue(idx int) bool { return it.arr.Values[idx] }

func (it *boolIter) NextAsU64() uint64 {
	if it.NextValue() {
		return 1
	}
	return 0
}
