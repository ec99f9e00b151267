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

package wide128

import "testing"

func TestFromIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 1 << 62, -(1 << 62), 1<<63 - 1, -1 << 63}
	for _, c := range cases {
		w := FromInt(c)
		got, ok := TryCastI64(w)
		if !ok || got != c {
			t.Fatalf("FromInt(%d).TryCastI64() = (%d, %v)", c, got, ok)
		}
	}
}

func TestAddCommutativeAssociative(t *testing.T) {
	// group 1 from the SUM(i64) overflow scenario
	vals := []int64{
		9223372036854775807, 9223372036854775805, 9223372036854775804,
		9223372036854775799,
	}
	forward := Zero
	for _, v := range vals {
		forward, _ = Add(forward, FromInt(v))
	}
	backward := Zero
	for i := len(vals) - 1; i >= 0; i-- {
		backward, _ = Add(backward, FromInt(vals[i]))
	}
	if !Equal(forward, backward) {
		t.Fatalf("sum not commutative: %s vs %s", forward, backward)
	}
	if forward.String() != "36893488147419103215" {
		t.Fatalf("sum = %s, want 36893488147419103215", forward)
	}
}

func TestAddSplitBatches(t *testing.T) {
	vals := []int64{
		9223372036854775807, 9223372036854775805, 9223372036854775804,
		9223372036854775801, 9223372036854775799,
	}
	whole := Zero
	for _, v := range vals {
		whole, _ = Add(whole, FromInt(v))
	}
	for split := 0; split <= len(vals); split++ {
		left, right := Zero, Zero
		for _, v := range vals[:split] {
			left, _ = Add(left, FromInt(v))
		}
		for _, v := range vals[split:] {
			right, _ = Add(right, FromInt(v))
		}
		combined, _ := Add(left, right)
		if !Equal(combined, whole) {
			t.Fatalf("split at %d: %s != %s", split, combined, whole)
		}
	}
}

func TestStringUnsignedGroup(t *testing.T) {
	vals := []uint64{
		18446744073709551615, 18446744073709551614, 18446744073709551613, 18446744073709551612,
		18446744073709551611, 18446744073709551610, 18446744073709551609, 18446744073709551608,
	}
	// taken two at a time to match the spec's group-2 overflow scenario
	sum := Zero
	for _, v := range vals[6:8] {
		sum, _ = Add(sum, FromInt(v))
	}
	if sum.String() != "18446744073709551608" {
		t.Fatalf("sum = %s, want 18446744073709551608", sum)
	}
}

func TestNegativeOverflow(t *testing.T) {
	vals := []int64{
		-9223372036854775807, -9223372036854775806, -9223372036854775805, -9223372036854775804,
	}
	sum := Zero
	for _, v := range vals {
		sum, _ = Add(sum, FromInt(v))
	}
	if sum.String() != "-36893488147419103222" {
		t.Fatalf("sum = %s", sum)
	}
	// TryCastI64 must fail: this exceeds int64 range
	if _, ok := TryCastI64(sum); ok {
		t.Fatalf("expected overflow casting %s to int64", sum)
	}
}

func TestMulOverflow(t *testing.T) {
	big := Wide128{Upper: 1 << 62} // 2^126; times 4 is 2^128, past the signed 128-bit range
	_, overflow := Mul(big, FromInt(4))
	if !overflow {
		t.Fatalf("expected overflow")
	}
	small := FromInt(int64(3))
	got, overflow := Mul(small, FromInt(7))
	if overflow {
		t.Fatalf("unexpected overflow")
	}
	if got.String() != "21" {
		t.Fatalf("3*7 = %s, want 21", got)
	}
}

func TestMulNegative(t *testing.T) {
	got, overflow := Mul(FromInt(int64(-6)), FromInt(int64(7)))
	if overflow {
		t.Fatalf("unexpected overflow")
	}
	if got.String() != "-42" {
		t.Fatalf("-6*7 = %s, want -42", got)
	}
}

func TestDivModPositive(t *testing.T) {
	q, r := DivMod(FromInt(int64(100)), FromInt(int64(7)))
	if q.String() != "14" || r.String() != "2" {
		t.Fatalf("100/7 = %s rem %s, want 14 rem 2", q, r)
	}
}

func TestDivModNegative(t *testing.T) {
	q, r := DivMod(FromInt(int64(-100)), FromInt(int64(7)))
	if q.String() != "-14" || r.String() != "-2" {
		t.Fatalf("-100/7 = %s rem %s, want -14 rem -2", q, r)
	}
}

func TestCompareOrdering(t *testing.T) {
	a := FromInt(int64(-5))
	b := FromInt(int64(5))
	if Compare(a, b) >= 0 {
		t.Fatalf("expected a < b")
	}
	if Compare(b, a) <= 0 {
		t.Fatalf("expected b > a")
	}
	if Compare(a, a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestShiftRightClearsSign(t *testing.T) {
	w := Wide128{Lower: 0, Upper: -1} // upper half all ones, lower zero, i.e. -2^64
	got := ShiftRight(w, 1)
	if got.IsNegative() {
		t.Fatalf("shift result should never be negative: %+v", got)
	}
}

func TestTryCastIntNarrow(t *testing.T) {
	w := FromInt(int64(127))
	if got, ok := TryCastInt[int8](w); !ok || got != 127 {
		t.Fatalf("TryCastInt[int8](127) = (%d, %v)", got, ok)
	}
	w2 := FromInt(int64(128))
	if _, ok := TryCastInt[int8](w2); ok {
		t.Fatalf("expected 128 not representable as int8")
	}
}

func TestTryCastUint64(t *testing.T) {
	w := FromInt(uint64(18446744073709551615))
	got, ok := TryCastUint64(w)
	if !ok || got != 18446744073709551615 {
		t.Fatalf("TryCastUint64 = (%d, %v)", got, ok)
	}
	neg := FromInt(int64(-1))
	if _, ok := TryCastUint64(neg); ok {
		t.Fatalf("expected negative value not representable as uint64")
	}
}

func TestBytes16RoundTrip(t *testing.T) {
	cases := []Wide128{Zero, FromInt(int64(-1)), FromInt(int64(1) << 40), Negate(FromInt(int64(1) << 40))}
	for _, w := range cases {
		got := FromBytes16(w.To16Bytes())
		if !Equal(got, w) {
			t.Fatalf("round trip %s != %s", got, w)
		}
	}
}

func TestFloat64LargeRemainder(t *testing.T) {
	// 2^63, one past the int64 range, should convert to a positive Float64
	w := FromInt(uint64(1) << 63)
	f := w.Float64()
	if f <= 0 {
		t.Fatalf("Float64() = %v, want positive", f)
	}
}
