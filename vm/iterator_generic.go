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

import "github.com/colvecdb/aggregate/batch"

// opaqueIter is the fallback for struct/list/map/union/dictionary columns:
// every read operation other than null queries is undefined, matching
// spec's "opaque/nested types resolve to a generic iterator that supports
// only null query."
type opaqueIter struct {
	arr batch.Array
	pos int
}

func newOpaqueIter(arr batch.Array) *opaqueIter { return &opaqueIter{arr: arr} }

func (it *opaqueIter) Length() int { return it.arr.Len() }

func (it *opaqueIter) NonNullCount() int { return it.arr.Len() - it.arr.NullCount() }

func (it *opaqueIter) IsNullAt(idx int) bool { return it.arr.IsNull(idx) }

func (it *opaqueIter) IsNull() bool { return it.arr.IsNull(it.pos) }

func (it *opaqueIter) NextNull() bool {
	null := it.arr.IsNull(it.pos)
	it.pos++
	return null
}

// NextIfNull advances the cursor only when the current row is null,
// returning whether it was, so a caller can skip runs of nulls without
// consuming non-null rows — named directly after spec's next_if_null. No
// aggregate function or specialization in this package calls it.
func (it *opaqueIter) NextIfNull() bool {
	null := it.arr.IsNull(it.pos)
	if null {
		it.pos++
	}
	return null
}
