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
	"encoding/binary"

	"github.com/dchest/siphash"
)

// scalarKind tags the representation scalar carries, mirroring the three
// shapes a generic group key can take: a fixed-width bit pattern, a string's
// bytes, or an arbitrary byte view (binary/decimal).
type scalarKind uint8

const (
	scalarNumeric scalarKind = iota
	scalarString
	scalarBytes
)

// scalar is the polymorphic, structurally hashable/comparable key element
// the generic hash aggregate uses for non-numeric or mixed group-by columns.
// Numeric scalars carry their bit pattern rather than their numeric value —
// the same NaN-distinguishing, -0.0/+0.0-distinguishing convention as
// bitsOf, since a float key column falling back to the generic path must
// still behave consistently with the single/multi-numeric specializations.
type scalar struct {
	isNull bool
	kind   scalarKind
	u64    uint64
	str    string
	byt    []byte
}

// hashK0 and hashK1 form a fixed zero key, matching the teacher's siphash call sites
// that hash untrusted data without a per-process random seed.
const (
	hashK0 = 0
	hashK1 = 0
)

// Hash returns a structural hash of the scalar: null is a single constant
// value shared by every null scalar regardless of declared type, since this
// engine treats NULL keys as one group.
func (s scalar) Hash() uint64 {
	if s.isNull {
		return 0
	}
	switch s.kind {
	case scalarNumeric:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], s.u64)
		lo, _ := siphash.Hash128(hashK0, hashK1, buf[:])
		return lo
	case scalarString:
		lo, _ := siphash.Hash128(hashK0, hashK1, []byte(s.str))
		return lo
	case scalarBytes:
		lo, _ := siphash.Hash128(hashK0, hashK1, s.byt)
		return lo
	default:
		return 0
	}
}

// Equal reports structural equality: two null scalars are always equal
// (regardless of kind), matching the "NULL keys collapse into one group"
// rule; otherwise kind and payload must match exactly.
func (s scalar) Equal(other scalar) bool {
	if s.isNull || other.isNull {
		return s.isNull == other.isNull
	}
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case scalarNumeric:
		return s.u64 == other.u64
	case scalarString:
		return s.str == other.str
	case scalarBytes:
		return string(s.byt) == string(other.byt)
	default:
		return false
	}
}

// combineHash folds one more element's hash into a running composite-key
// seed, the same combiner the multi-numeric specialization uses for its
// (u64, is_null) tuples, generalized here to scalar.Hash.
func combineHash(seed uint64, h uint64) uint64 {
	return seed ^ (h + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
}

// NextScalar reads the iterator's current row as a scalar and advances the
// cursor by one, giving the generic hash aggregate a uniform key-extraction
// surface over every concrete iterator variant except opaqueIter (opaque
// columns can never be group-by keys; the aggregate-function factory
// rejects them before a specialization is ever built).
func (it *numericIter[T]) NextScalar() scalar {
	v, null := it.Next()
	if null {
		return scalar{isNull: true}
	}
	return scalar{kind: scalarNumeric, u64: bitsOf(v)}
}

func (it *boolIter) NextScalar() scalar {
	v, null := it.Next()
	if null {
		return scalar{isNull: true}
	}
	u := uint64(0)
	if v {
		u = 1
	}
	return scalar{kind: scalarNumeric, u64: u}
}

func (it *stringIter) NextScalar() scalar {
	v, null := it.Next()
	if null {
		return scalar{isNull: true}
	}
	return scalar{kind: scalarString, str: v}
}

func (it *bytesIter) NextScalar() scalar {
	v, null := it.Next()
	if null {
		return scalar{isNull: true}
	}
	return scalar{kind: scalarBytes, byt: v}
}

// scalarIter is implemented by every concrete column-iterator variant that
// can serve as a generic hash aggregate's key column.
type scalarIter interface {
	NextScalar() scalar
}

var _ scalarIter = (*numericIter[int64])(nil)
var _ scalarIter = (*boolIter)(nil)
var _ scalarIter = (*stringIter)(nil)
var _ scalarIter = (*bytesIter)(nil)
