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

// genericSpec is the fallback specialization, used when at least one
// group-by column is non-numeric (string, binary, decimal) — anything
// without a next_as_u64 bit pattern. The key is a slice of polymorphic
// scalar, structurally hashed and compared exactly like multiNumericSpec's
// hand-rolled bucket table, just over a richer element type.
type genericSpec struct {
	iters    []scalarIter
	buckets  map[uint64][]int
	keys     [][]scalar
	nextSlot int
}

func newGenericSpec() *genericSpec {
	return &genericSpec{buckets: make(map[uint64][]int)}
}

func (s *genericSpec) bindKeyIters(iters []ColumnIter) error {
	si := make([]scalarIter, len(iters))
	for i, it := range iters {
		sc, ok := it.(scalarIter)
		if !ok {
			return errInternalInvariant("generic hash aggregate requires every key column to support scalar extraction")
		}
		si[i] = sc
	}
	s.iters = si
	return nil
}

func scalarKeysEqual(a, b []scalar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (s *genericSpec) getOrCreateEntry() (int, bool) {
	key := make([]scalar, len(s.iters))
	var seed uint64
	for i, it := range s.iters {
		sc := it.NextScalar()
		key[i] = sc
		seed = combineHash(seed, sc.Hash())
	}
	for _, slot := range s.buckets[seed] {
		if scalarKeysEqual(s.keys[slot], key) {
			return slot, false
		}
	}
	slot := s.nextSlot
	s.nextSlot++
	s.keys = append(s.keys, key)
	s.buckets[seed] = append(s.buckets[seed], slot)
	return slot, true
}

func (s *genericSpec) summarizeGroups() []int {
	order := make([]int, 0, s.nextSlot)
	for _, slots := range s.buckets {
		order = append(order, slots...)
	}
	return order
}
