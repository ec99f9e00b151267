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

// numericKeyElem is one column's contribution to a multi-numeric composite
// key: its u64 bit pattern, or isNull if the column was null for this row
// (in which case the u64 field is meaningless and ignored by equality).
type numericKeyElem struct {
	u64    uint64
	isNull bool
}

// multiNumericSpec is used when every group-by column is primitive numeric
// and there is more than one of them. Go maps can't be keyed on a slice
// directly, so the hash table is hand-rolled: a combined seed buckets
// candidate slots, and a separate equality check on the stored key resolves
// collisions — the same structural hashing/equality split the generic
// specialization uses, just over numericKeyElem instead of scalar.
type multiNumericSpec struct {
	iters    []u64Iter
	buckets  map[uint64][]int
	keys     [][]numericKeyElem
	nextSlot int
}

func newMultiNumericSpec() *multiNumericSpec {
	return &multiNumericSpec{buckets: make(map[uint64][]int)}
}

func (s *multiNumericSpec) bindKeyIters(iters []ColumnIter) error {
	u := make([]u64Iter, len(iters))
	for i, it := range iters {
		ui, ok := it.(u64Iter)
		if !ok {
			return errInternalInvariant("multi-numeric specialization requires every key column to be next_as_u64-capable")
		}
		u[i] = ui
	}
	s.iters = u
	return nil
}

func numericKeysEqual(a, b []numericKeyElem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].isNull != b[i].isNull {
			return false
		}
		if !a[i].isNull && a[i].u64 != b[i].u64 {
			return false
		}
	}
	return true
}

// getOrCreateEntry reads is_null before advancing via next_as_u64 for each
// column in turn — the null bit lives at the cursor's current position and
// advancing moves it, so the read order within one column matters, though
// the order across columns does not.
func (s *multiNumericSpec) getOrCreateEntry() (int, bool) {
	key := make([]numericKeyElem, len(s.iters))
	var seed uint64
	for i, it := range s.iters {
		isNull := it.IsNull()
		v := it.NextAsU64()
		key[i] = numericKeyElem{u64: v, isNull: isNull}
		h := uint64(0)
		if !isNull {
			h = v
		}
		seed = combineHash(seed, h)
	}
	for _, slot := range s.buckets[seed] {
		if numericKeysEqual(s.keys[slot], key) {
			return slot, false
		}
	}
	slot := s.nextSlot
	s.nextSlot++
	s.keys = append(s.keys, key)
	s.buckets[seed] = append(s.buckets[seed], slot)
	return slot, true
}

// summarizeGroups flattens every bucket's slots; both bucket enumeration
// and within-bucket order are implementation-defined.
func (s *multiNumericSpec) summarizeGroups() []int {
	order := make([]int, 0, s.nextSlot)
	for _, slots := range s.buckets {
		order = append(order, slots...)
	}
	return order
}
