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

	"golang.org/x/exp/slices"

	"github.com/colvecdb/aggregate/batch"
	"github.com/colvecdb/aggregate/coltype"
	"github.com/colvecdb/aggregate/wide128"
)

func stringColumn(name string, values []string, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Utf8},
		Array: &batch.StringArray{Values: values, Valid: valid},
	}
}

func int64Column(name string, values []int64, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Int64},
		Array: batch.NewNumericArray(values, valid),
	}
}

func uint64Column(name string, values []uint64, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Uint64},
		Array: batch.NewNumericArray(values, valid),
	}
}

func boolColumn(name string, values []bool, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Bool},
		Array: &batch.BoolArray{Values: values, Valid: valid},
	}
}

func time32MsColumn(name string, values []int32, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Time32, Unit: coltype.Millisecond},
		Array: batch.NewNumericArray(values, valid),
	}
}

func int8Column(name string, values []int8, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Int8},
		Array: batch.NewNumericArray(values, valid),
	}
}

func date64Column(name string, values []int64, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Date64},
		Array: batch.NewNumericArray(values, valid),
	}
}

func timestampColumn(name string, values []int64, nullAt ...int) *batch.Column {
	valid := batch.NewBitmap(len(values))
	for _, i := range nullAt {
		valid.Clear(i)
	}
	if len(nullAt) == 0 {
		valid = nil
	}
	return &batch.Column{
		Field: coltype.Field{Name: name, Type: coltype.Timestamp, Unit: coltype.Microsecond},
		Array: batch.NewNumericArray(values, valid),
	}
}

func recordBatchOf(cols ...*batch.Column) *batch.RecordBatch {
	fields := make([]coltype.Field, len(cols))
	for i, c := range cols {
		fields[i] = c.Field
	}
	return &batch.RecordBatch{Schema: &coltype.Schema{Fields: fields}, Columns: cols}
}

// scenario 1: COUNT over a single string key with nulls.
func TestDriverCountOverStringKeyWithNulls(t *testing.T) {
	cities := []string{"", "Munich", "", "San Francisco", "Berlin", "Munich", "Berlin", "Berlin"}
	b := recordBatchOf(stringColumn("city_from", cities, 0, 2))

	d := New([]string{"city_from"}, []string{"city_from"}, []AggFuncDef{
		{Kind: CountStar, OutputColumn: "cnt"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	keyCol := out.Columns[0].Array.(*batch.StringArray)
	cntCol := out.Columns[1].Array.(*batch.NumericArray[uint64])

	type row struct {
		isNull bool
		key    string
		count  uint64
	}
	rows := make([]row, out.Len())
	for i := 0; i < out.Len(); i++ {
		rows[i] = row{isNull: keyCol.IsNull(i), key: keyCol.Values[i], count: cntCol.Values[i]}
	}
	slices.SortFunc(rows, func(a, b row) bool {
		if a.isNull != b.isNull {
			return !a.isNull
		}
		return a.key < b.key
	})

	want := []row{
		{key: "Berlin", count: 3},
		{key: "Munich", count: 2},
		{key: "San Francisco", count: 1},
		{isNull: true, count: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i].isNull != want[i].isNull || rows[i].count != want[i].count || (!rows[i].isNull && rows[i].key != want[i].key) {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

// scenario 2: SUM(i64) overflow promotes the output column to decimal128.
func TestDriverSumInt64OverflowPromotesToDecimal(t *testing.T) {
	groupKey := []int64{1, 1, 1, 1, 1, 2, 2}
	values := []int64{
		9223372036854775807, 9223372036854775805, 9223372036854775804,
		9223372036854775801, 9223372036854775799,
		9223372036854775806, 9223372036854775802,
	}
	b := recordBatchOf(int64Column("grp", groupKey), int64Column("v", values))

	d := New([]string{"grp"}, []string{"grp"}, []AggFuncDef{
		{Kind: Sum, InputColumn: "v", OutputColumn: "total"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if out.Columns[1].Field.Type != coltype.Decimal128 {
		t.Fatalf("sum column type = %s, want decimal128", out.Columns[1].Field.Type)
	}
	keyCol := out.Columns[0].Array.(*batch.NumericArray[int64])
	sumCol := out.Columns[1].Array.(*batch.BytesArray)

	got := map[int64]string{}
	for i := 0; i < out.Len(); i++ {
		var buf [16]byte
		copy(buf[:], sumCol.Values[i])
		got[keyCol.Values[i]] = wide128FromBytes16String(buf)
	}
	if got[1] != "36893488147419103215" {
		t.Errorf("group 1 sum = %s, want 36893488147419103215", got[1])
	}
	if got[2] != "18446744073709551608" {
		t.Errorf("group 2 sum = %s, want 18446744073709551608", got[2])
	}
}

// scenario 3: AVG(u64) over large values near the int64 ceiling, grouped the
// same way as scenario 2 (four values in group 1, two in group 2).
func TestDriverAvgUint64Large(t *testing.T) {
	groupKey := []int64{1, 1, 1, 1, 2, 2}
	values := []uint64{
		9223372036854775807, 9223372036854775805, 9223372036854775804, 9223372036854775801,
		9223372036854775806, 9223372036854775802,
	}
	b := recordBatchOf(int64Column("grp", groupKey), uint64Column("v", values))

	d := New([]string{"grp"}, []string{"grp"}, []AggFuncDef{
		{Kind: Avg, InputColumn: "v", OutputColumn: "avg"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	keyCol := out.Columns[0].Array.(*batch.NumericArray[int64])
	avgCol := out.Columns[1].Array.(*batch.NumericArray[float64])

	for i := 0; i < out.Len(); i++ {
		want := 9.223372036854776e18
		got := avgCol.Values[i]
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e3 {
			t.Errorf("group %d avg = %v, want ~%v", keyCol.Values[i], got, want)
		}
	}
}

// scenario 4: one-group aggregate over zero input rows.
func TestDriverOneGroupOverEmptyInput(t *testing.T) {
	b := recordBatchOf(int64Column("v", nil))

	d := New(nil, nil, []AggFuncDef{
		{Kind: CountStar, OutputColumn: "n"},
		{Kind: Sum, InputColumn: "v", OutputColumn: "total"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("row count = %d, want 1", out.Len())
	}
	n := out.Columns[0].Array.(*batch.NumericArray[uint64]).Values[0]
	if n != 0 {
		t.Errorf("COUNT(*) = %d, want 0", n)
	}
	sumArr := out.Columns[1].Array.(*batch.NumericArray[int64])
	if !sumArr.IsNull(0) {
		t.Errorf("SUM over empty input should be null")
	}
}

// scenario 5: MIN/MAX/AVG/SUM over time32(ms) grouped by a nullable bool key.
func TestDriverTime32GroupedByNullableBool(t *testing.T) {
	keys := []bool{false, true, false, false}
	values := []int32{100, 130, 200, 300}
	b := recordBatchOf(
		boolColumn("is_return", keys, 3), // row 3's key is null
		time32MsColumn("dur", values),
	)

	d := New([]string{"is_return"}, []string{"is_return"}, []AggFuncDef{
		{Kind: Min, InputColumn: "dur", OutputColumn: "min_dur"},
		{Kind: Max, InputColumn: "dur", OutputColumn: "max_dur"},
		{Kind: Sum, InputColumn: "dur", OutputColumn: "sum_dur"},
		{Kind: Avg, InputColumn: "dur", OutputColumn: "avg_dur"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if out.Len() != 3 {
		t.Fatalf("group count = %d, want 3 (false/true/null)", out.Len())
	}
	if out.Columns[3].Field.Type != coltype.Time32 {
		t.Errorf("sum_dur type = %s, want time32", out.Columns[3].Field.Type)
	}
	if out.Columns[3].Field.Unit != coltype.Millisecond {
		t.Errorf("sum_dur unit = %s, want ms", out.Columns[3].Field.Unit)
	}

	keyCol := out.Columns[0].Array.(*batch.BoolArray)
	avgCol := out.Columns[4].Array.(*batch.NumericArray[float64])
	foundTrueGroup := false
	for i := 0; i < out.Len(); i++ {
		if !keyCol.IsNull(i) && keyCol.Values[i] {
			foundTrueGroup = true
			if avgCol.Values[i] != 130.0 {
				t.Errorf("avg(true group) = %v, want 130.0", avgCol.Values[i])
			}
		}
	}
	if !foundTrueGroup {
		t.Errorf("expected a true-keyed group")
	}
}

// scenario 6: multi-key numeric grouping over (i8, date64, time32,
// timestamp), with nulls scattered across each column. Rows 7 and 8 share
// the all-null combination and must collapse into one group; every other
// row is a unique combination and gets its own group.
func TestDriverMultiKeyNumericGrouping(t *testing.T) {
	i8s := []int8{1, 2, 0, 3, 4, 5, 6, 0, 0}
	dates := []int64{100, 200, 300, 0, 400, 500, 600, 0, 0}
	times := []int32{10, 20, 30, 40, 0, 50, 60, 0, 0}
	stamps := []int64{1000, 2000, 3000, 4000, 5000, 0, 6000, 0, 0}

	b := recordBatchOf(
		int8Column("a", i8s, 2, 7, 8),
		date64Column("b", dates, 3, 7, 8),
		time32MsColumn("c", times, 4, 7, 8),
		timestampColumn("d", stamps, 5, 7, 8),
	)

	d := New([]string{"a", "b", "c", "d"}, []string{"a", "b", "c", "d"}, []AggFuncDef{
		{Kind: CountStar, OutputColumn: "n"},
	})
	if err := d.Next(b); err != nil {
		t.Fatalf("Next: %v", err)
	}
	out, err := d.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if out.Len() != 8 {
		t.Fatalf("group count = %d, want 8", out.Len())
	}

	aCol := out.Columns[0].Array.(*batch.NumericArray[int8])
	cntCol := out.Columns[4].Array.(*batch.NumericArray[uint64])

	allNullCount, total := uint64(0), uint64(0)
	for i := 0; i < out.Len(); i++ {
		total += cntCol.Values[i]
		if aCol.IsNull(i) {
			allNullCount = cntCol.Values[i]
		} else if cntCol.Values[i] != 1 {
			t.Errorf("group %d (non-null a=%d) has count %d, want 1", i, aCol.Values[i], cntCol.Values[i])
		}
	}
	if allNullCount != 2 {
		t.Errorf("all-null group count = %d, want 2", allNullCount)
	}
	if total != 9 {
		t.Errorf("total rows across groups = %d, want 9", total)
	}
}

// TestDriverStreamingAcrossBatches checks the "critical streaming property"
// spec.md calls out: splitting a batch at any point and feeding the halves
// through separate Next calls on the same Driver yields the same result as
// one combined batch.
func TestDriverStreamingAcrossBatches(t *testing.T) {
	groupKeyAll := []int64{1, 1, 2, 2, 1, 2}
	valuesAll := []int64{10, 20, 30, 40, 50, 60}

	combined := recordBatchOf(int64Column("grp", groupKeyAll), int64Column("v", valuesAll))
	dCombined := New([]string{"grp"}, []string{"grp"}, []AggFuncDef{
		{Kind: CountStar, OutputColumn: "n"},
		{Kind: Sum, InputColumn: "v", OutputColumn: "total"},
		{Kind: Avg, InputColumn: "v", OutputColumn: "avg"},
	})
	if err := dCombined.Next(combined); err != nil {
		t.Fatalf("combined Next: %v", err)
	}
	wantOut, err := dCombined.Result()
	if err != nil {
		t.Fatalf("combined Result: %v", err)
	}

	batch1 := recordBatchOf(int64Column("grp", groupKeyAll[:3]), int64Column("v", valuesAll[:3]))
	batch2 := recordBatchOf(int64Column("grp", groupKeyAll[3:]), int64Column("v", valuesAll[3:]))
	dSplit := New([]string{"grp"}, []string{"grp"}, []AggFuncDef{
		{Kind: CountStar, OutputColumn: "n"},
		{Kind: Sum, InputColumn: "v", OutputColumn: "total"},
		{Kind: Avg, InputColumn: "v", OutputColumn: "avg"},
	})
	if err := dSplit.Next(batch1); err != nil {
		t.Fatalf("split Next 1: %v", err)
	}
	if err := dSplit.Next(batch2); err != nil {
		t.Fatalf("split Next 2: %v", err)
	}
	gotOut, err := dSplit.Result()
	if err != nil {
		t.Fatalf("split Result: %v", err)
	}

	if wantOut.Len() != gotOut.Len() {
		t.Fatalf("group count = %d, want %d", gotOut.Len(), wantOut.Len())
	}

	type groupResult struct {
		key   int64
		count uint64
		sum   int64
		avg   float64
	}
	collect := func(rb *batch.RecordBatch) []groupResult {
		keyCol := rb.Columns[0].Array.(*batch.NumericArray[int64])
		cntCol := rb.Columns[1].Array.(*batch.NumericArray[uint64])
		sumCol := rb.Columns[2].Array.(*batch.NumericArray[int64])
		avgCol := rb.Columns[3].Array.(*batch.NumericArray[float64])
		rows := make([]groupResult, rb.Len())
		for i := 0; i < rb.Len(); i++ {
			rows[i] = groupResult{key: keyCol.Values[i], count: cntCol.Values[i], sum: sumCol.Values[i], avg: avgCol.Values[i]}
		}
		slices.SortFunc(rows, func(a, b groupResult) bool { return a.key < b.key })
		return rows
	}

	want := collect(wantOut)
	got := collect(gotOut)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// wide128FromBytes16String decodes a decimal128 byte view the same way a
// consumer reading a promoted SUM column would.
func wide128FromBytes16String(buf [16]byte) string {
	return wide128.FromBytes16(buf).String()
}
