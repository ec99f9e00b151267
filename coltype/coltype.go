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

// Package coltype defines the physical column type system shared by the
// batch and vm packages: the closed set of recognized physical types, their
// associated time units, and the Field/Schema types that name and order a
// RecordBatch's columns.
package coltype

import "fmt"

// Type identifies the physical representation of a column. It intentionally
// mirrors the Arrow type-id space the reference implementation (vinum_cpp,
// layered on Apache Arrow) dispatches on, since that is the recognized type
// surface this engine's column iterator factory and aggregate-function
// factory switch over.
type Type uint8

const (
	Invalid Type = iota

	Bool

	Int8
	Int16
	Int32
	Int64

	Uint8
	Uint16
	Uint32
	Uint64

	Float16
	Float32
	Float64

	Date32
	Date64

	Time32 // requires Unit
	Time64 // requires Unit

	Timestamp // requires Unit

	IntervalMonth
	IntervalDayTime

	Duration // requires Unit

	Decimal128
	Decimal256

	Utf8
	LargeUtf8

	Binary
	LargeBinary

	FixedSizeBinary

	// Opaque covers struct/list/map/union/dictionary columns: the engine
	// only ever asks such a column whether a given row is null.
	Opaque
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint8:
		return "u8"
	case Uint16:
		return "u16"
	case Uint32:
		return "u32"
	case Uint64:
		return "u64"
	case Float16:
		return "f16"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Date32:
		return "date32"
	case Date64:
		return "date64"
	case Time32:
		return "time32"
	case Time64:
		return "time64"
	case Timestamp:
		return "timestamp"
	case IntervalMonth:
		return "month_interval"
	case IntervalDayTime:
		return "day_time_interval"
	case Duration:
		return "duration"
	case Decimal128:
		return "decimal128"
	case Decimal256:
		return "decimal256"
	case Utf8:
		return "utf8"
	case LargeUtf8:
		return "large_utf8"
	case Binary:
		return "binary"
	case LargeBinary:
		return "large_binary"
	case FixedSizeBinary:
		return "fixed_size_binary"
	case Opaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// IsNumeric reports whether a column of this type exposes a bit-pattern
// key via ColumnIter.NextAsU64 — i.e. whether it is eligible for the
// single-numeric and multi-numeric hash aggregate specializations.
// Booleans, dates, times, timestamps, intervals, and durations all count:
// anything with a fixed-width scalar native representation.
func (t Type) IsNumeric() bool {
	switch t {
	case Bool,
		Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64,
		Float16, Float32, Float64,
		Date32, Date64,
		Time32, Time64,
		Timestamp,
		IntervalMonth, IntervalDayTime,
		Duration:
		return true
	default:
		return false
	}
}

// IsOpaque reports whether the type supports only null queries (struct,
// list, map, union, dictionary).
func (t Type) IsOpaque() bool {
	return t == Opaque
}

// TimeUnit distinguishes the resolution of time32/time64/timestamp/duration
// columns.
type TimeUnit uint8

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "s"
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Nanosecond:
		return "ns"
	default:
		return "?"
	}
}

// DecimalParams holds the precision/scale pair carried by decimal128 and
// decimal256 fields.
type DecimalParams struct {
	Precision int
	Scale     int
}

// MaxDecimal128Precision is the widest precision representable in a
// decimal128, used for the SUM-overflow promotion target (scale 0).
const MaxDecimal128Precision = 38

// Field describes one column of a Schema: its name, physical type, and any
// type parameters (time unit, decimal precision/scale, fixed-size-binary
// width) that type requires.
type Field struct {
	Name    string
	Type    Type
	Unit    TimeUnit      // meaningful for Time32, Time64, Timestamp, Duration
	Decimal DecimalParams // meaningful for Decimal128, Decimal256
	Width   int           // meaningful for FixedSizeBinary
}

func (f Field) String() string {
	return fmt.Sprintf("%s:%s", f.Name, f.Type)
}

// Schema is an ordered list of Fields naming a RecordBatch's columns.
type Schema struct {
	Fields []Field
}

// IndexOf returns the position of the named field, or -1 if it is not
// present.
func (s *Schema) IndexOf(name string) int {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i
		}
	}
	return -1
}
