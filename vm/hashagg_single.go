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

// u64Iter is implemented by every column-iterator variant whose values have
// a meaningful bit-pattern widening to u64: the single- and multi-numeric
// specializations key their hash tables on exactly this capability, which
// covers every integer, float, date/time, duration, boolean, and interval
// column (anything coltype.Type.IsNumeric reports true for).
type u64Iter interface {
	IsNull() bool
	NextAsU64() uint64
}

// singleNumericSpec is used when there is exactly one group-by column and
// it is primitive numeric. A separate out-of-band slot holds the null
// group, since there is no u64 bit pattern that can stand in for "no
// value" without colliding with a real one.
type singleNumericSpec struct {
	iter     u64Iter
	table    map[uint64]int
	nullSlot int
	nextSlot int
}

func newSingleNumericSpec() *singleNumericSpec {
	return &singleNumericSpec{table: make(map[uint64]int), nullSlot: -1}
}

func (s *singleNumericSpec) bindKeyIters(iters []ColumnIter) error {
	if len(iters) != 1 {
		return errInternalInvariant("single-numeric specialization bound to other than one key column")
	}
	u, ok := iters[0].(u64Iter)
	if !ok {
		return errInternalInvariant("single-numeric specialization requires a next_as_u64-capable key column")
	}
	s.iter = u
	return nil
}

// getOrCreateEntry reads the cursor's null bit before advancing by
// NextAsU64, exactly as spec'd: the garbage value read back for a null row
// is discarded in favor of the out-of-band null slot.
func (s *singleNumericSpec) getOrCreateEntry() (int, bool) {
	isNull := s.iter.IsNull()
	v := s.iter.NextAsU64()
	if isNull {
		if s.nullSlot < 0 {
			s.nullSlot = s.nextSlot
			s.nextSlot++
			return s.nullSlot, true
		}
		return s.nullSlot, false
	}
	if slot, ok := s.table[v]; ok {
		return slot, false
	}
	slot := s.nextSlot
	s.nextSlot++
	s.table[v] = slot
	return slot, true
}

// summarizeGroups walks the map in its native, implementation-defined
// enumeration order and appends the null group last if one exists.
func (s *singleNumericSpec) summarizeGroups() []int {
	order := make([]int, 0, len(s.table)+1)
	for _, slot := range s.table {
		order = append(order, slot)
	}
	if s.nullSlot >= 0 {
		order = append(order, s.nullSlot)
	}
	return order
}
