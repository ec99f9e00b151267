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

import "github.com/colvecdb/aggregate/coltype"

// newAggFunc constructs the concrete AggFunc for one (kind, field) pair.
// field names the input column's physical type and its type parameters
// (time unit, decimal params); it is ignored for CountStar and GroupBuilder
// columns whose kind doesn't require it.
func newAggFunc(kind AggFuncKind, field coltype.Field) (AggFunc, error) {
	switch kind {
	case GroupBuilder:
		return newGroupBuilderFunc(field)
	case CountStar:
		return newCountStarFunc(), nil
	case Count:
		return newCountFunc(), nil
	case Min:
		return newMinMaxDispatch(false, field)
	case Max:
		return newMinMaxDispatch(true, field)
	case Sum:
		return newSumDispatch(field)
	case Avg:
		return newAvgDispatch(field)
	default:
		return nil, errInternalInvariant("unrecognized aggregate function kind")
	}
}

func newGroupBuilderFunc(field coltype.Field) (AggFunc, error) {
	switch field.Type {
	case coltype.Bool:
		return newGroupBuilderBoolFunc(), nil
	case coltype.Int8:
		return newGroupBuilderNumericFunc[int8](field.Type), nil
	case coltype.Int16:
		return newGroupBuilderNumericFunc[int16](field.Type), nil
	case coltype.Int32, coltype.Date32, coltype.Time32, coltype.IntervalMonth:
		return newGroupBuilderNumericFunc[int32](field.Type), nil
	case coltype.Int64, coltype.Date64, coltype.Time64, coltype.Timestamp, coltype.Duration, coltype.IntervalDayTime:
		return newGroupBuilderNumericFunc[int64](field.Type), nil
	case coltype.Uint8:
		return newGroupBuilderNumericFunc[uint8](field.Type), nil
	case coltype.Uint16:
		return newGroupBuilderNumericFunc[uint16](field.Type), nil
	case coltype.Uint32:
		return newGroupBuilderNumericFunc[uint32](field.Type), nil
	case coltype.Uint64:
		return newGroupBuilderNumericFunc[uint64](field.Type), nil
	case coltype.Float16:
		return newGroupBuilderNumericFunc[uint16](field.Type), nil
	case coltype.Float32:
		return newGroupBuilderNumericFunc[float32](field.Type), nil
	case coltype.Float64:
		return newGroupBuilderNumericFunc[float64](field.Type), nil
	case coltype.Utf8, coltype.LargeUtf8:
		return newGroupBuilderStringFunc(field.Type), nil
	case coltype.Binary, coltype.LargeBinary, coltype.FixedSizeBinary, coltype.Decimal128, coltype.Decimal256:
		return newGroupBuilderBytesFunc(field.Type), nil
	default:
		return nil, errUnsupportedType(GroupBuilder, field.Type, field.Name)
	}
}

func newMinMaxDispatch(isMax bool, field coltype.Field) (AggFunc, error) {
	kind := Min
	if isMax {
		kind = Max
	}
	switch field.Type {
	case coltype.Bool:
		return newBoolMinMaxFunc(isMax), nil
	case coltype.Int8:
		return newMinMaxFunc[int8](isMax, field.Type), nil
	case coltype.Int16:
		return newMinMaxFunc[int16](isMax, field.Type), nil
	case coltype.Int32, coltype.Date32, coltype.Time32, coltype.IntervalMonth:
		return newMinMaxFunc[int32](isMax, field.Type), nil
	case coltype.Int64, coltype.Date64, coltype.Time64, coltype.Timestamp, coltype.Duration, coltype.IntervalDayTime:
		return newMinMaxFunc[int64](isMax, field.Type), nil
	case coltype.Uint8:
		return newMinMaxFunc[uint8](isMax, field.Type), nil
	case coltype.Uint16:
		return newMinMaxFunc[uint16](isMax, field.Type), nil
	case coltype.Uint32:
		return newMinMaxFunc[uint32](isMax, field.Type), nil
	case coltype.Uint64:
		return newMinMaxFunc[uint64](isMax, field.Type), nil
	case coltype.Float16:
		// Raw uint16 bit-pattern ordinal comparison, matching the
		// reference implementation's MinMaxFunc<uint16_t, HalfFloatBuilder>.
		return newMinMaxFunc[uint16](isMax, field.Type), nil
	case coltype.Float32:
		return newMinMaxFunc[float32](isMax, field.Type), nil
	case coltype.Float64:
		return newMinMaxFunc[float64](isMax, field.Type), nil
	case coltype.Utf8, coltype.LargeUtf8:
		return newStringMinMaxFunc(isMax, field.Type), nil
	case coltype.Binary, coltype.LargeBinary, coltype.FixedSizeBinary, coltype.Decimal128, coltype.Decimal256:
		return newBytesMinMaxFunc(isMax, field.Type), nil
	default:
		// Opaque columns have no value at all, so MIN/MAX is unsupported.
		return nil, errUnsupportedType(kind, field.Type, field.Name)
	}
}

func newSumDispatch(field coltype.Field) (AggFunc, error) {
	switch field.Type {
	case coltype.Int8:
		return newSumIntFunc[int8](), nil
	case coltype.Int16:
		return newSumIntFunc[int16](), nil
	case coltype.Int32:
		return newSumIntFunc[int32](), nil
	case coltype.Int64:
		return newSumWide128Func[int64](coltype.Int64), nil
	case coltype.Uint8:
		return newSumUintFunc[uint8](), nil
	case coltype.Uint16:
		return newSumUintFunc[uint16](), nil
	case coltype.Uint32:
		return newSumUintFunc[uint32](), nil
	case coltype.Uint64:
		return newSumWide128Func[uint64](coltype.Uint64), nil
	case coltype.Float16:
		return newSumFloat16Func(), nil
	case coltype.Float32:
		return newSumFloatFunc[float32](), nil
	case coltype.Float64:
		return newSumFloatFunc[float64](), nil
	case coltype.Time32:
		return newSumNativeFunc[int32](coltype.Time32, field.Unit), nil
	case coltype.Time64:
		return newSumNativeFunc[int64](coltype.Time64, field.Unit), nil
	case coltype.Duration:
		return newSumNativeFunc[int64](coltype.Duration, field.Unit), nil
	default:
		// Bool, dates, timestamps, intervals, strings, binaries, decimals,
		// and opaque columns are all non-arithmetic for SUM's purposes: a
		// date or timestamp's sum isn't a meaningful point in time, and the
		// rest have no numeric value at all.
		return nil, errUnsupportedType(Sum, field.Type, field.Name)
	}
}

func newAvgDispatch(field coltype.Field) (AggFunc, error) {
	switch field.Type {
	case coltype.Int8:
		return newAvgF32Func[int8](), nil
	case coltype.Int16:
		return newAvgF32Func[int16](), nil
	case coltype.Uint8:
		return newAvgF32Func[uint8](), nil
	case coltype.Uint16:
		return newAvgF32Func[uint16](), nil
	case coltype.Int32:
		return newAvgF64Func[int32](), nil
	case coltype.Uint32:
		return newAvgF64Func[uint32](), nil
	case coltype.Float32:
		return newAvgF64Func[float32](), nil
	case coltype.Float64:
		return newAvgF64Func[float64](), nil
	case coltype.Time32:
		return newAvgF64Func[int32](), nil
	case coltype.Time64:
		return newAvgF64Func[int64](), nil
	case coltype.Duration:
		return newAvgF64Func[int64](), nil
	case coltype.Int64:
		return newAvgWide128Func[int64](), nil
	case coltype.Uint64:
		return newAvgWide128Func[uint64](), nil
	case coltype.Float16:
		return newAvgFloat16Func(), nil
	default:
		return nil, errUnsupportedType(Avg, field.Type, field.Name)
	}
}
