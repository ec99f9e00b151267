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

// This file and its iterator_*.go siblings replace vinum_cpp's
// ArrayIter/TypedValueArrayIter/NumericArrayIter/GetViewArrayIter/
// GenericArrayIter virtual-dispatch hierarchy with a typed enum of concrete
// Go iterator variants behind one minimal interface, instead of casting a
// void pointer at every call site.

package vm

import (
	"fmt"

	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
)

// ColumnIter is the capability every column iterator variant shares. The
// type-specific read operations (NextValue, GetValue, NextAsU64, GetString)
// live on the concrete variants (numericIter[T], boolIter, stringIter,
// opaqueIter); callers that need them hold a concrete reference rather than
// asserting against this interface, the same way aggregate functions are
// constructed against a known concrete T rather than discovered at read
// time.
type ColumnIter interface {
	// Length is the number of rows in the bound array.
	Length() int
	// NonNullCount is the number of non-null rows in the bound array.
	NonNullCount() int
	// IsNullAt reports whether row idx is null, without disturbing the
	// iterator's own cursor.
	IsNullAt(idx int) bool
}

// advancingIter is implemented by every concrete iterator variant and used
// by COUNT(expr)'s per-row Init/Update, which only need to know whether the
// next row is null, not its typed value.
type advancingIter interface {
	NextNull() bool
}

// columnIterFor is the factory described in the column-iterators component:
// it dispatches purely on physical type id and returns the matching
// concrete iterator, bound to col's backing array. An unrecognized pairing
// of Go array type and declared coltype.Type is an internal invariant
// violation (the batch.Column was constructed inconsistently), not a user
// error — those are reported separately as ErrUnsupportedType from the
// aggregate-function factory when a *function* doesn't support the type.
func columnIterFor(col *batch.Column) (ColumnIter, error) {
	switch col.Field.Type {
	case coltype.Bool:
		arr, ok := col.Array.(*batch.BoolArray)
		if !ok {
			return nil, errInternalInvariant("bool column backed by non-bool array")
		}
		return newBoolIter(arr), nil
	case coltype.Int8:
		return newNumericIterFrom[int8](col)
	case coltype.Int16:
		return newNumericIterFrom[int16](col)
	case coltype.Int32, coltype.Date32, coltype.Time32, coltype.IntervalMonth:
		return newNumericIterFrom[int32](col)
	case coltype.Int64, coltype.Date64, coltype.Time64, coltype.Timestamp, coltype.Duration, coltype.IntervalDayTime:
		return newNumericIterFrom[int64](col)
	case coltype.Uint8:
		return newNumericIterFrom[uint8](col)
	case coltype.Uint16:
		return newNumericIterFrom[uint16](col)
	case coltype.Uint32:
		return newNumericIterFrom[uint32](col)
	case coltype.Uint64:
		return newNumericIterFrom[uint64](col)
	case coltype.Float32:
		return newNumericIterFrom[float32](col)
	case coltype.Float64:
		return newNumericIterFrom[float64](col)
	case coltype.Float16:
		arr, ok := col.Array.(*batch.Float16Array)
		if !ok {
			return nil, errInternalInvariant("float16 column backed by non-float16 array")
		}
		return newNumericIter(batch.NewNumericArray(arr.Bits, arr.Valid)), nil
	case coltype.Utf8, coltype.LargeUtf8:
		arr, ok := col.Array.(*batch.StringArray)
		if !ok {
			return nil, errInternalInvariant("utf8 column backed by non-string array")
		}
		return newStringIter(arr), nil
	case coltype.Binary, coltype.LargeBinary, coltype.FixedSizeBinary, coltype.Decimal128, coltype.Decimal256:
		arr, ok := col.Array.(*batch.BytesArray)
		if !ok {
			return nil, errInternalInvariant("binary/decimal column backed by non-bytes array")
		}
		return newBytesIter(arr), nil
	case coltype.Opaque:
		return newOpaqueIter(col.Array), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized physical type %s", ErrInternalInvariant, col.Field.Type)
	}
}
