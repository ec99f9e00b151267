// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package batch provides the columnar in-memory array types the vm package's
// aggregate drivers read from and write to. Each physical type family in
// coltype gets its own concrete array: a typed backing slice plus a parallel
// Bitmap, the same split Arrow itself uses between a value buffer and a
// validity buffer.
package batch

import "github.com/colvecdb/aggregate/coltype"

// Array is the common read surface every column exposes to the vm package's
// iterators, independent of physical representation.
type Array interface {
	Len() int
	IsNull(i int) bool
	NullCount() int
}

// Numeric is the set of Go types a NumericArray can be instantiated over:
// every fixed-width scalar physical type is represented by its natural Go
// numeric counterpart (bool is handled separately since it isn't ordered
// the same way arithmetically, and float16 is stored as raw bits since Go
// has no native half-precision type).
type Numeric interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// NumericArray is a dense column of fixed-width scalars of type T, used for
// every physical type with a native Go numeric representation: the signed
// and unsigned integer families, float32/float64, and (via their int32/int64
// storage) date32/date64/time32/time64/timestamp/duration/interval columns.
type NumericArray[T Numeric] struct {
	Values []T
	Valid  Bitmap
}

func NewNumericArray[T Numeric](values []T, valid Bitmap) *NumericArray[T] {
	return &NumericArray[T]{Values: values, Valid: valid}
}

func (a *NumericArray[T]) Len() int { return len(a.Values) }

func (a *NumericArray[T]) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *NumericArray[T]) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// BoolArray stores a bool column. Kept distinct from NumericArray[bool]
// because bools don't participate in Numeric's arithmetic constraint set but
// still need a dense value buffer.
type BoolArray struct {
	Values []bool
	Valid  Bitmap
}

func (a *BoolArray) Len() int { return len(a.Values) }

func (a *BoolArray) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *BoolArray) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// Float16Array stores a float16 column as raw IEEE-754 half-precision bits,
// since Go has no native half-precision type. The vm package's iterators
// read these bits unchanged (as a uint16); MIN/MAX compare them ordinally as
// raw bits, while SUM/AVG decode them into a float64 value before
// accumulating.
type Float16Array struct {
	Bits  []uint16
	Valid Bitmap
}

func (a *Float16Array) Len() int { return len(a.Bits) }

func (a *Float16Array) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *Float16Array) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// StringArray stores a utf8/large_utf8 column.
type StringArray struct {
	Values []string
	Valid  Bitmap
}

func (a *StringArray) Len() int { return len(a.Values) }

func (a *StringArray) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *StringArray) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// BytesArray stores any column whose natural Go representation is a byte
// slice view: binary, large_binary, fixed_size_binary, and — per this
// engine's simplified view-comparison contract for ordering — decimal128
// and decimal256, which MIN/MAX treat as raw big-endian byte strings rather
// than unpacking into a numeric compare. This mirrors a quirk carried over
// verbatim from the reference implementation's templated min/max function,
// which instantiates the same view-comparison code for both string/binary
// and decimal columns.
type BytesArray struct {
	Values [][]byte
	Valid  Bitmap
}

func (a *BytesArray) Len() int { return len(a.Values) }

func (a *BytesArray) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *BytesArray) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// OpaqueArray stands in for struct/list/map/union/dictionary columns: the
// engine never reads a value out of one, only whether a given row is null
// (relevant only to COUNT_STAR's "row exists" semantics and to GROUP_BUILDER
// columns the planner never actually constructs over such a type).
type OpaqueArray struct {
	Length int
	Valid  Bitmap
}

func (a *OpaqueArray) Len() int { return a.Length }

func (a *OpaqueArray) IsNull(i int) bool { return !a.Valid.IsValid(i) }

func (a *OpaqueArray) NullCount() int { return a.Len() - a.Valid.CountValid(a.Len()) }

// Column pairs an Array with the Field describing its physical type and any
// type parameters (time unit, decimal precision/scale, fixed-size-binary
// width) needed to interpret it.
type Column struct {
	Field coltype.Field
	Array Array
}

func (c *Column) Len() int { return c.Array.Len() }
