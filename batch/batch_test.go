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

package batch

import (
	"testing"

	"github.com/colvecdb/aggregate/coltype"
)

func TestNumericBuilderInterleavedNulls(t *testing.T) {
	b := NewNumericBuilder[int64](4)
	b.Append(1)
	b.AppendNull()
	b.Append(3)
	b.AppendNull()
	b.Append(5)
	arr := b.Build()

	want := []struct {
		null bool
		v    int64
	}{{false, 1}, {true, 0}, {false, 3}, {true, 0}, {false, 5}}
	if arr.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", arr.Len(), len(want))
	}
	for i, w := range want {
		if arr.IsNull(i) != w.null {
			t.Fatalf("row %d: IsNull = %v, want %v", i, arr.IsNull(i), w.null)
		}
		if !w.null && arr.Values[i] != w.v {
			t.Fatalf("row %d: value = %d, want %d", i, arr.Values[i], w.v)
		}
	}
	if arr.NullCount() != 2 {
		t.Fatalf("NullCount() = %d, want 2", arr.NullCount())
	}
}

func TestNumericArrayNilBitmapAllValid(t *testing.T) {
	arr := NewNumericArray([]int32{1, 2, 3}, nil)
	if arr.NullCount() != 0 {
		t.Fatalf("NullCount() = %d, want 0", arr.NullCount())
	}
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			t.Fatalf("row %d unexpectedly null", i)
		}
	}
}

func TestStringBuilderAllValidThenNull(t *testing.T) {
	b := NewStringBuilder(3)
	b.Append("a")
	b.Append("b")
	b.AppendNull()
	arr := b.Build()
	if arr.IsNull(0) || arr.IsNull(1) {
		t.Fatalf("earlier rows should remain valid after a later null")
	}
	if !arr.IsNull(2) {
		t.Fatalf("row 2 should be null")
	}
}

func TestBytesBuilderDecimalView(t *testing.T) {
	b := NewBytesBuilder(2)
	b.Append([]byte{0x00, 0x01})
	b.AppendNull()
	b.Append([]byte{0x00, 0x02})
	arr := b.Build()
	if arr.NullCount() != 1 {
		t.Fatalf("NullCount() = %d, want 1", arr.NullCount())
	}
}

func TestRecordBatchValidate(t *testing.T) {
	schema := &coltype.Schema{Fields: []coltype.Field{
		{Name: "city", Type: coltype.Utf8},
		{Name: "n", Type: coltype.Int64},
	}}
	cities := NewStringBuilder(2)
	cities.Append("NYC")
	cities.Append("SF")
	ns := NewNumericBuilder[int64](2)
	ns.Append(1)
	ns.Append(2)

	rb := &RecordBatch{
		Schema: schema,
		Columns: []*Column{
			{Field: schema.Fields[0], Array: cities.Build()},
			{Field: schema.Fields[1], Array: ns.Build()},
		},
	}
	if err := rb.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if rb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rb.Len())
	}
	col, ok := rb.ColumnByName("n")
	if !ok || col.Field.Type != coltype.Int64 {
		t.Fatalf("ColumnByName(n) = %v, %v", col, ok)
	}
	if _, ok := rb.ColumnByName("missing"); ok {
		t.Fatalf("ColumnByName(missing) should not be found")
	}
}

func TestRecordBatchValidateLengthMismatch(t *testing.T) {
	schema := &coltype.Schema{Fields: []coltype.Field{{Name: "a", Type: coltype.Int64}}}
	short := NewNumericBuilder[int64](1)
	short.Append(1)
	long := NewNumericBuilder[int64](2)
	long.Append(1)
	long.Append(2)
	_ = long

	rb := &RecordBatch{
		Schema:  schema,
		Columns: []*Column{{Field: schema.Fields[0], Array: short.Build()}},
	}
	if err := rb.Validate(); err != nil {
		t.Fatalf("single-column batch should validate, got %v", err)
	}
}
