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
	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
)

// countStarFunc implements COUNT(*): every row counts, null or not.
type countStarFunc struct {
	iter   ColumnIter
	counts []uint64
	result *batch.NumericArray[uint64]
}

func newCountStarFunc() *countStarFunc { return &countStarFunc{} }

func (f *countStarFunc) SetArrayIter(iter ColumnIter) error {
	f.iter = iter
	return nil
}

func (f *countStarFunc) Init(rowIdx int) error {
	f.counts = append(f.counts, 1)
	return nil
}

func (f *countStarFunc) Update(slot int) error {
	f.counts[slot]++
	return nil
}

func (f *countStarFunc) InitBatch() error {
	if len(f.counts) == 0 {
		f.counts = append(f.counts, 0)
	}
	f.counts[0] += uint64(f.iter.Length())
	return nil
}

func (f *countStarFunc) UpdateBatch() error {
	f.counts[0] += uint64(f.iter.Length())
	return nil
}

func (f *countStarFunc) Reserve(n int) {
	if cap(f.counts) < n {
		grown := make([]uint64, len(f.counts), n)
		copy(grown, f.counts)
		f.counts = grown
	}
}

func (f *countStarFunc) Summarize(order []int) error {
	b := batch.NewNumericBuilder[uint64](len(order))
	for _, slot := range order {
		b.Append(f.counts[slot])
	}
	f.result = b.Build()
	return nil
}

func (f *countStarFunc) Result() batch.Array { return f.result }

func (f *countStarFunc) DataType() coltype.Type { return coltype.Uint64 }

// countFunc implements COUNT(expr): counts non-null rows of the bound
// column.
type countFunc struct {
	iter   ColumnIter
	counts []uint64
	result *batch.NumericArray[uint64]
}

func newCountFunc() *countFunc { return &countFunc{} }

func (f *countFunc) SetArrayIter(iter ColumnIter) error {
	f.iter = iter
	return nil
}

func (f *countFunc) Init(rowIdx int) error {
	if f.iter.(advancingIter).NextNull() {
		f.counts = append(f.counts, 0)
	} else {
		f.counts = append(f.counts, 1)
	}
	return nil
}

func (f *countFunc) Update(slot int) error {
	if !f.iter.(advancingIter).NextNull() {
		f.counts[slot]++
	}
	return nil
}

func (f *countFunc) InitBatch() error {
	if len(f.counts) == 0 {
		f.counts = append(f.counts, 0)
	}
	f.counts[0] += uint64(f.iter.NonNullCount())
	return nil
}

func (f *countFunc) UpdateBatch() error {
	f.counts[0] += uint64(f.iter.NonNullCount())
	return nil
}

func (f *countFunc) Reserve(n int) {
	if cap(f.counts) < n {
		grown := make([]uint64, len(f.counts), n)
		copy(grown, f.counts)
		f.counts = grown
	}
}

func (f *countFunc) Summarize(order []int) error {
	b := batch.NewNumericBuilder[uint64](len(order))
	for _, slot := range order {
		b.Append(f.counts[slot])
	}
	f.result = b.Build()
	return nil
}

func (f *countFunc) Result() batch.Array { return f.result }

func (f *countFunc) DataType() coltype.Type { return coltype.Uint64 }
