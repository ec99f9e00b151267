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

package batch

import (
	"fmt"

	"github.com/colvecdb/aggregate/coltype"
)

// RecordBatch is one chunk of a streaming input: a fixed set of named,
// equal-length columns. The aggregate driver consumes a sequence of
// RecordBatches and never assumes all input fits in memory at once.
type RecordBatch struct {
	Schema  *coltype.Schema
	Columns []*Column
}

// Len returns the row count shared by every column, or 0 for a batch with no
// columns.
func (b *RecordBatch) Len() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// ColumnByName looks up a column by its schema name, reporting false when no
// field has that name; the vm package turns that miss into an
// ErrSchemaMismatch error of its own.
func (b *RecordBatch) ColumnByName(name string) (*Column, bool) {
	idx := b.Schema.IndexOf(name)
	if idx < 0 {
		return nil, false
	}
	return b.Columns[idx], true
}

// Validate checks that every column's length matches the batch length and
// that the column order matches the schema's field order, returning a
// descriptive error on the first mismatch found. The aggregate driver calls
// this once per incoming batch before dispatching to any iterator.
func (b *RecordBatch) Validate() error {
	if len(b.Columns) != len(b.Schema.Fields) {
		return fmt.Errorf("batch: %d columns but schema has %d fields", len(b.Columns), len(b.Schema.Fields))
	}
	n := b.Len()
	for i, c := range b.Columns {
		if c.Field.Name != b.Schema.Fields[i].Name || c.Field.Type != b.Schema.Fields[i].Type {
			return fmt.Errorf("batch: column %d is %s, schema expects %s", i, c.Field, b.Schema.Fields[i])
		}
		if c.Len() != n {
			return fmt.Errorf("batch: column %q has %d rows, expected %d", c.Field.Name, c.Len(), n)
		}
	}
	return nil
}
