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

// Builder is the append-only counterpart to Array: every aggregate function
// accumulates one row per group and then drains itself into an Array exactly
// once, via Build, when the driver assembles the result batch.
//
// Every Builder lazily allocates its Bitmap on the first null, backfilling
// prior rows as valid, matching the "nil Bitmap means no nulls" convention
// the Array types read — a result column with no null groups never pays for
// a validity buffer.

// growValid extends bitmap to cover n rows, copying any existing bits and
// zeroing (null) the new ones.
func growValid(valid Bitmap, n int) Bitmap {
	need := (n + 7) / 8
	if len(valid) >= need {
		return valid
	}
	grown := make(Bitmap, need)
	copy(grown, valid)
	return grown
}

// NumericBuilder is the Builder for NumericArray[T].
type NumericBuilder[T Numeric] struct {
	values []T
	valid  Bitmap
}

func NewNumericBuilder[T Numeric](capacity int) *NumericBuilder[T] {
	return &NumericBuilder[T]{values: make([]T, 0, capacity)}
}

func (b *NumericBuilder[T]) Append(v T) {
	b.values = append(b.values, v)
	if b.valid != nil {
		b.valid = growValid(b.valid, len(b.values))
		b.valid.Set(len(b.values) - 1)
	}
}

func (b *NumericBuilder[T]) AppendNull() {
	firstNull := b.valid == nil
	b.values = append(b.values, T(0))
	b.valid = growValid(b.valid, len(b.values))
	if firstNull {
		for i := 0; i < len(b.values)-1; i++ {
			b.valid.Set(i)
		}
	}
}

func (b *NumericBuilder[T]) Len() int { return len(b.values) }

func (b *NumericBuilder[T]) Build() *NumericArray[T] {
	return &NumericArray[T]{Values: b.values, Valid: b.valid}
}

// BoolBuilder is the Builder for BoolArray.
type BoolBuilder struct {
	values []bool
	valid  Bitmap
}

func NewBoolBuilder(capacity int) *BoolBuilder {
	return &BoolBuilder{values: make([]bool, 0, capacity)}
}

func (b *BoolBuilder) Append(v bool) {
	b.values = append(b.values, v)
	if b.valid != nil {
		b.valid = growValid(b.valid, len(b.values))
		b.valid.Set(len(b.values) - 1)
	}
}

func (b *BoolBuilder) AppendNull() {
	firstNull := b.valid == nil
	b.values = append(b.values, false)
	b.valid = growValid(b.valid, len(b.values))
	if firstNull {
		for i := 0; i < len(b.values)-1; i++ {
			b.valid.Set(i)
		}
	}
}

func (b *BoolBuilder) Build() *BoolArray {
	return &BoolArray{Values: b.values, Valid: b.valid}
}

// StringBuilder is the Builder for StringArray.
type StringBuilder struct {
	values []string
	valid  Bitmap
}

func NewStringBuilder(capacity int) *StringBuilder {
	return &StringBuilder{values: make([]string, 0, capacity)}
}

func (b *StringBuilder) Append(v string) {
	b.values = append(b.values, v)
	if b.valid != nil {
		b.valid = growValid(b.valid, len(b.values))
		b.valid.Set(len(b.values) - 1)
	}
}

func (b *StringBuilder) AppendNull() {
	firstNull := b.valid == nil
	b.values = append(b.values, "")
	b.valid = growValid(b.valid, len(b.values))
	if firstNull {
		for i := 0; i < len(b.values)-1; i++ {
			b.valid.Set(i)
		}
	}
}

func (b *StringBuilder) Build() *StringArray {
	return &StringArray{Values: b.values, Valid: b.valid}
}

// BytesBuilder is the Builder for BytesArray, used for binary/fixed-size
// columns and for the decimal128 output column SUM(i64)/SUM(u64) promotes
// into on overflow.
type BytesBuilder struct {
	values [][]byte
	valid  Bitmap
}

func NewBytesBuilder(capacity int) *BytesBuilder {
	return &BytesBuilder{values: make([][]byte, 0, capacity)}
}

func (b *BytesBuilder) Append(v []byte) {
	b.values = append(b.values, v)
	if b.valid != nil {
		b.valid = growValid(b.valid, len(b.values))
		b.valid.Set(len(b.values) - 1)
	}
}

func (b *BytesBuilder) AppendNull() {
	firstNull := b.valid == nil
	b.values = append(b.values, nil)
	b.valid = growValid(b.valid, len(b.values))
	if firstNull {
		for i := 0; i < len(b.values)-1; i++ {
			b.valid.Set(i)
		}
	}
}

func (b *BytesBuilder) Build() *BytesArray {
	return &BytesArray{Values: b.values, Valid: b.valid}
}
