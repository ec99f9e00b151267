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

// stringIter walks a utf8/large_utf8 column.
type stringIter struct {
	arr *batch.StringArray
	pos int
}

func newStringIter(arr *batch.StringArray) *stringIter { return &stringIter{arr: arr} }

func (it *stringIter) Length() int { return it.arr.Len() }

func (it *stringIter) NonNullCount() int { return it.arr.Len() - it.arr.NullCount() }

func (it *stringIter) IsNullAt(idx int) bool { return it.arr.IsNull(idx) }

func (it *stringIter) IsNull() bool { return it.arr.IsNull(it.pos) }

func (it *stringIter) NextNull() bool {
	null := it.arr.IsNull(it.pos)
	it.pos++
	return null
}

func (it *stringIter) NextValue() string {
	v := it.arr.Values[it.pos]
	it.pos++
	return v
}

func (it *stringIter) Next() (string, bool) {
	null := it.arr.IsNull(it.pos)
	v := it.arr.Values[it.pos]
	it.pos++
	return v, null
}

// GetValue and GetString are the same random-access read for a string
// column; GROUP_BUILDER reads its key through GetValue.
func (it *stringIter) GetValue(idx int) string { return it.arr.Values[idx] }
func (it *stringIter) GetString(idx int) string { return it.arr.Values[idx] }

// bytesIter walks a binary/large_binary/fixed_size_binary/decimal128/
// decimal256 column. Every one of these physical types shares the same
// view-returning, lexicographically-ordered byte-slice representation —
// decimal128/256 are not unpacked into Wide128 for MIN/MAX, matching the
// reference implementation's templated view-comparison function, which
// instantiates identically for strings, binaries, and decimals.
type bytesIter struct {
	arr *batch.BytesArray
	pos int
}

func newBytesIter(arr *batch.BytesArray) *bytesIter { return &bytesIter{arr: arr} }

func (it *bytesIter) Length() int { return it.arr.Len() }

func (it *bytesIter) NonNullCount() int { return it.arr.Len() - it.arr.NullCount() }

func (it *bytesIter) IsNullAt(idx int) bool { return it.arr.IsNull(idx) }

func (it *bytesIter) IsNull() bool { return it.arr.IsNull(it.pos) }

func (it *bytesIter) NextNull() bool {
	null := it.arr.IsNull(it.pos)
	it.pos++
	return null
}

func (it *bytesIter) NextValue() []byte {
	v := it.arr.Values[it.pos]
	it.pos++
	return v
}

func (it *bytesIter) GetValue(idx int) []byte { return it.arr.Values[idx] }

func (it *bytesIter) Next() ([]byte, bool) {
	null := it.arr.IsNull(it.pos)
	v := it.arr.Values[it.pos]
	it.pos++
	return v, null
}
