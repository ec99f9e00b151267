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
	"testing"

	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
	"github.com/colvecdb/aggregate/wide128"
)

// TestSumOverflowNegative checks that a SUM(int64) whose accumulator
// overflows the signed 64-bit range on the negative side promotes to
// decimal128 and round-trips to the correct negative base-10 value,
// exercising the sign-aware branch of Wide128.TryCastI64 documented in
// DESIGN.md's open-question decision.
func TestSumOverflowNegative(t *testing.T) {
	values := []int64{-9223372036854775808, -9223372036854775808}
	arr := batch.NewNumericArray(values, nil)
	iter := newNumericIter(arr)

	f := newSumWide128Func[int64](coltype.Int64)
	if err := f.SetArrayIter(iter); err != nil {
		t.Fatalf("SetArrayIter: %v", err)
	}
	if err := f.Init(0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := f.Update(0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.Summarize([]int{0}); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	dec, ok := f.Result().(*batch.BytesArray)
	if !ok {
		t.Fatalf("expected promotion to decimal128, got %T", f.Result())
	}
	var buf [16]byte
	copy(buf[:], dec.Values[0])
	got := wide128.FromBytes16(buf).String()
	want := "-18446744073709551616"
	if got != want {
		t.Errorf("sum = %s, want %s", got, want)
	}
}
