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

// Package wide128 implements a 128-bit signed integer with overflow-checked
// arithmetic, used as the intermediate accumulator for SUM/AVG over 64-bit
// integer columns where the exact sum can exceed 64 bits.
//
// The representation and algorithms are a direct adaptation of the
// public-domain hugeint_t used by DuckDB (itself vendored, in turn, by the
// vinum_cpp reference this package's contracts are drawn from): two
// uint64/int64 halves in two's-complement, long division by repeated
// shift-and-subtract, and branchless bitwise comparisons.
package wide128

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Wide128 is a signed 128-bit integer: value = upper*2^64 + lower,
// stored in two's-complement.
type Wide128 struct {
	Lower uint64
	Upper int64
}

// Zero is the additive identity.
var Zero = Wide128{}

// FromInt widens any signed or unsigned integer type into a Wide128: signed
// types are sign-extended, unsigned types are zero-extended (so a full-range
// uint64 never turns into a negative Wide128).
func FromInt[T constraints.Integer](v T) Wide128 {
	var zero T
	minusOne := zero - 1
	if minusOne > 0 {
		// T is unsigned: zero-extend.
		return Wide128{Lower: uint64(v)}
	}
	i64 := int64(v)
	var upper int64
	if i64 < 0 {
		upper = -1
	}
	return Wide128{Lower: uint64(i64), Upper: upper}
}

// Negate returns -w.
func Negate(w Wide128) Wide128 {
	lower := -w.Lower
	carry := int64(0)
	if lower == 0 {
		carry = 1
	}
	return Wide128{Lower: lower, Upper: -1 - w.Upper + carry}
}

// IsNegative reports whether w < 0.
func (w Wide128) IsNegative() bool {
	return w.Upper < 0
}

// Equal is a branchless bitwise equality check on both halves.
func Equal(a, b Wide128) bool {
	return a.Lower == b.Lower && a.Upper == b.Upper
}

// Compare returns -1, 0, or 1 as a < b, a == b, a > b, comparing uppers
// first and then lowers — the ordering convention spec'd for Wide128.
func Compare(a, b Wide128) int {
	if a.Upper != b.Upper {
		if a.Upper < b.Upper {
			return -1
		}
		return 1
	}
	if a.Lower != b.Lower {
		if a.Lower < b.Lower {
			return -1
		}
		return 1
	}
	return 0
}

// sentinel is the minimum representable Wide128 (upper = MinInt64, lower = 0);
// negating it, or landing on it via addition, is the one value that cannot be
// safely negated in two's complement and so is treated as an overflow.
var sentinel = Wide128{Lower: 0, Upper: -1 << 63}

// Add returns a+b and reports whether the sum overflowed the signed 128-bit
// range (including landing exactly on the sentinel).
func Add(a, b Wide128) (Wide128, bool) {
	lower, carry64 := bits.Add64(a.Lower, b.Lower, 0)
	upper := a.Upper + b.Upper + int64(carry64)

	// overflow iff both operands have the same sign and the result's sign differs
	if (a.Upper >= 0) == (b.Upper >= 0) && (upper >= 0) != (a.Upper >= 0) {
		return Wide128{}, true
	}
	result := Wide128{Lower: lower, Upper: upper}
	if Equal(result, sentinel) {
		return result, true
	}
	return result, false
}

// Sub returns a-b and reports whether the difference overflowed.
func Sub(a, b Wide128) (Wide128, bool) {
	return Add(a, Negate(b))
}

// Mul returns a*b and reports whether the product overflowed the signed
// 128-bit range, following the same sign-strip/unsigned-multiply/sign-restore
// strategy as the hugeint_t reference: the magnitudes are multiplied as
// unsigned 128-bit values (rejecting anything that would need more than 128
// unsigned bits, i.e. would set the sign bit), then the sign is restored.
func Mul(a, b Wide128) (Wide128, bool) {
	aNeg, bNeg := a.IsNegative(), b.IsNegative()
	if aNeg {
		a = Negate(a)
	}
	if bNeg {
		b = Negate(b)
	}

	au, bu := a.Upper64(), b.Upper64()
	if au != 0 && bu != 0 {
		// both operands need more than 64 bits: the product always
		// needs more than 128, i.e. always overflows.
		return Wide128{}, true
	}

	loHi, loLo := bits.Mul64(a.Lower, b.Lower)

	var crossHi, crossLo uint64
	switch {
	case au != 0:
		crossHi, crossLo = bits.Mul64(au, b.Lower)
	case bu != 0:
		crossHi, crossLo = bits.Mul64(a.Lower, bu)
	}

	mid, carry := bits.Add64(loHi, crossLo, 0)
	if crossHi+carry != 0 {
		return Wide128{}, true
	}
	if mid&0x8000000000000000 != 0 {
		return Wide128{}, true
	}

	result := Wide128{Lower: loLo, Upper: int64(mid)}
	if aNeg != bNeg {
		result = Negate(result)
	}
	return result, false
}

// Upper64 returns the upper half reinterpreted as unsigned, valid only when
// the value is known non-negative (used internally by Mul after sign strip).
func (w Wide128) Upper64() uint64 {
	return uint64(w.Upper)
}

// highestBit returns the index (1-based, 0 meaning "no bits set") of the
// highest set bit of a non-negative Wide128.
func highestBit(w Wide128) uint {
	if w.Upper != 0 {
		return 64 + uint(bits.Len64(uint64(w.Upper)))
	}
	return uint(bits.Len64(w.Lower))
}

func isBitSet(w Wide128, pos uint) bool {
	if pos < 64 {
		return w.Lower&(uint64(1)<<pos) != 0
	}
	return uint64(w.Upper)&(uint64(1)<<(pos-64)) != 0
}

func shiftLeft1(w Wide128) Wide128 {
	upper := uint64(w.Upper)<<1 | w.Lower>>63
	return Wide128{Lower: w.Lower << 1, Upper: int64(upper)}
}

// DivMod performs long division of lhs by rhs and returns the quotient and
// remainder. Behavior is undefined when rhs == 0, matching the reference
// implementation's contract.
func DivMod(lhs, rhs Wide128) (quotient, remainder Wide128) {
	lhsNeg, rhsNeg := lhs.IsNegative(), rhs.IsNegative()
	if lhsNeg {
		lhs = Negate(lhs)
	}
	if rhsNeg {
		rhs = Negate(rhs)
	}

	highest := highestBit(lhs)
	for x := highest; x > 0; x-- {
		quotient = shiftLeft1(quotient)
		remainder = shiftLeft1(remainder)
		if isBitSet(lhs, x-1) {
			remainder, _ = Add(remainder, Wide128{Lower: 1})
		}
		if Compare(remainder, rhs) >= 0 {
			remainder, _ = Sub(remainder, rhs)
			quotient, _ = Add(quotient, Wide128{Lower: 1})
		}
	}

	if lhsNeg != rhsNeg {
		quotient = Negate(quotient)
	}
	if lhsNeg {
		remainder = Negate(remainder)
	}
	return quotient, remainder
}

// ShiftLeft and ShiftRight are defined only for 0 <= shift < 128; the result's
// sign bit is always cleared, matching the unsigned-style sentinel-avoidance
// convention spec'd for these operations.
func ShiftLeft(w Wide128, shift uint) Wide128 {
	if shift >= 128 {
		return Wide128{}
	}
	if shift == 0 {
		return clearSign(w)
	}
	if shift == 64 {
		return Wide128{Lower: 0, Upper: int64(w.Lower)}
	}
	if shift < 64 {
		upperShift := (uint64(w.Upper)<<shift | w.Lower>>(64-shift)) & 0x7FFFFFFFFFFFFFFF
		return Wide128{Lower: w.Lower << shift, Upper: int64(upperShift)}
	}
	upper := (w.Lower << (shift - 64)) & 0x7FFFFFFFFFFFFFFF
	return Wide128{Lower: 0, Upper: int64(upper)}
}

func ShiftRight(w Wide128, shift uint) Wide128 {
	if w.IsNegative() {
		return Wide128{}
	}
	if shift >= 128 {
		return Wide128{}
	}
	if shift == 0 {
		return w
	}
	if shift == 64 {
		return Wide128{Lower: uint64(w.Upper), Upper: 0}
	}
	if shift < 64 {
		lower := uint64(w.Upper)<<(64-shift) + w.Lower>>shift
		return Wide128{Lower: lower, Upper: int64(uint64(w.Upper) >> shift)}
	}
	return Wide128{Lower: uint64(w.Upper) >> (shift - 64), Upper: 0}
}

func clearSign(w Wide128) Wide128 {
	return Wide128{Lower: w.Lower, Upper: w.Upper & 0x7FFFFFFFFFFFFFFF}
}

// String returns the base-10 representation, with a leading '-' for
// negative values.
func (w Wide128) String() string {
	neg := w.IsNegative()
	if neg {
		w = Negate(w)
	}
	if w.Lower == 0 && w.Upper == 0 {
		return "0"
	}
	var digits [40]byte
	pos := len(digits)
	ten := Wide128{Lower: 10}
	for w.Lower != 0 || w.Upper != 0 {
		var rem Wide128
		w, rem = DivMod(w, ten)
		pos--
		digits[pos] = byte('0') + byte(rem.Lower)
	}
	if neg {
		pos--
		digits[pos] = '-'
	}
	return string(digits[pos:])
}

// TryCastInt attempts to narrow w into a signed integer type T, succeeding
// only when the value is representable.
func TryCastInt[T constraints.Signed](w Wide128) (T, bool) {
	bitSize := sizeOfBits[T]()
	max := int64(1)<<(bitSize-1) - 1
	switch w.Upper {
	case 0:
		if w.Lower <= uint64(max) {
			return T(w.Lower), true
		}
	case -1:
		if w.Lower >= ^uint64(0)-uint64(max) {
			return T(-int64(^uint64(0)-w.Lower+1)), true
		}
	}
	return 0, false
}

// TryCastUint64 attempts to narrow w into uint64, succeeding only when w is
// non-negative and below 2^64.
func TryCastUint64(w Wide128) (uint64, bool) {
	if w.Upper == 0 {
		return w.Lower, true
	}
	return 0, false
}

// TryCastI64 narrows w into an int64.
func TryCastI64(w Wide128) (int64, bool) {
	switch w.Upper {
	case 0:
		if w.Lower <= 1<<63-1 {
			return int64(w.Lower), true
		}
	case -1:
		if w.Lower >= 1<<63 {
			return -int64(^w.Lower + 1), true
		}
	}
	return 0, false
}

// Float64 converts w to a float64 with rounding; always succeeds.
func (w Wide128) Float64() float64 {
	if w.Upper == -1 {
		return -float64(^uint64(0)-w.Lower) - 1
	}
	const twoPow64 = 18446744073709551616.0
	return float64(w.Lower) + float64(w.Upper)*twoPow64
}

// Float32 converts w to a float32 with rounding; always succeeds.
func (w Wide128) Float32() float32 {
	return float32(w.Float64())
}

// To16Bytes writes w in big-endian two's-complement form, the same layout
// Arrow's Decimal128 uses for its 16-byte physical storage, so a Wide128 sum
// can be handed straight to a decimal128 output column on overflow promotion.
func (w Wide128) To16Bytes() [16]byte {
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(w.Upper >> (8 * i))
		buf[15-i] = byte(w.Lower >> (8 * i))
	}
	return buf
}

// FromBytes16 is the inverse of To16Bytes.
func FromBytes16(buf [16]byte) Wide128 {
	var upper uint64
	var lower uint64
	for i := 0; i < 8; i++ {
		upper = upper<<8 | uint64(buf[i])
		lower = lower<<8 | uint64(buf[i+8])
	}
	return Wide128{Lower: lower, Upper: int64(upper)}
}

func sizeOfBits[T constraints.Signed]() int {
	var v T
	switch any(v).(type) {
	case int8:
		return 8
	case int16:
		return 16
	case int32:
		return 32
	default:
		return 64
	}
}
