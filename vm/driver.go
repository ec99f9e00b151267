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

// rowSpecialization is implemented by every specialization that processes
// input row by row rather than in one-group's whole-batch bursts: the
// single-numeric, multi-numeric, and generic hash aggregates.
type rowSpecialization interface {
	bindKeyIters(iters []ColumnIter) error
	getOrCreateEntry() (slot int, isNew bool)
	summarizeGroups() []int
}

// Driver is the base aggregate: it owns the group-by/key-projection/
// aggregate-function configuration and picks a concrete specialization
// (one-group, single-numeric, multi-numeric, or generic) the first time it
// sees a batch's schema. This folds the external planner's "pick 4.5
// through 4.8 top to bottom by first match" selection policy into
// construction-time dispatch, since this engine has no separate planning
// stage upstream of the driver.
type Driver struct {
	groupbyCols    []string
	keyProjectCols []string
	aggDefs        []AggFuncDef

	initialized bool
	numKeyFuncs int

	funcDefs   []AggFuncDef
	funcFields []coltype.Field
	funcs      []AggFunc

	oneGroup *oneGroupSpec
	spec     rowSpecialization
}

// New holds the driver's configuration; it does no validation or
// allocation until the first Next call sees a batch's schema.
func New(groupbyCols, keyProjectCols []string, aggDefs []AggFuncDef) *Driver {
	return &Driver{
		groupbyCols:    groupbyCols,
		keyProjectCols: keyProjectCols,
		aggDefs:        aggDefs,
	}
}

func (d *Driver) init(b *batch.RecordBatch) error {
	d.initialized = true
	d.numKeyFuncs = len(d.keyProjectCols)

	if len(d.groupbyCols) == 0 && d.numKeyFuncs > 0 {
		return errInternalInvariant("key_project_cols given without any groupby_cols")
	}

	d.funcDefs = make([]AggFuncDef, 0, d.numKeyFuncs+len(d.aggDefs))
	for _, name := range d.keyProjectCols {
		d.funcDefs = append(d.funcDefs, AggFuncDef{Kind: GroupBuilder, InputColumn: name, OutputColumn: name})
	}
	d.funcDefs = append(d.funcDefs, d.aggDefs...)

	d.funcFields = make([]coltype.Field, len(d.funcDefs))
	d.funcs = make([]AggFunc, len(d.funcDefs))
	for i, def := range d.funcDefs {
		var field coltype.Field
		if def.Kind != CountStar {
			col, ok := b.ColumnByName(def.InputColumn)
			if !ok {
				return errSchemaMismatch(def.InputColumn)
			}
			field = col.Field
		}
		f, err := newAggFunc(def.Kind, field)
		if err != nil {
			return err
		}
		d.funcFields[i] = field
		d.funcs[i] = f
	}

	if len(d.groupbyCols) == 0 {
		d.oneGroup = &oneGroupSpec{}
		return nil
	}

	allNumeric := true
	for _, name := range d.groupbyCols {
		col, ok := b.ColumnByName(name)
		if !ok {
			return errSchemaMismatch(name)
		}
		if !col.Field.Type.IsNumeric() {
			allNumeric = false
		}
	}
	switch {
	case len(d.groupbyCols) == 1 && allNumeric:
		d.spec = newSingleNumericSpec()
	case allNumeric:
		d.spec = newMultiNumericSpec()
	default:
		d.spec = newGenericSpec()
	}
	return nil
}

// Next consumes one RecordBatch, repeatedly callable across a stream of
// batches that all share the same schema for the columns this driver
// references.
func (d *Driver) Next(b *batch.RecordBatch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if !d.initialized {
		if err := d.init(b); err != nil {
			return err
		}
	}

	for i, def := range d.funcDefs {
		var iter ColumnIter
		if def.Kind == CountStar {
			iter = newOpaqueIter(&batch.OpaqueArray{Length: b.Len()})
		} else {
			col, ok := b.ColumnByName(def.InputColumn)
			if !ok {
				return errSchemaMismatch(def.InputColumn)
			}
			it, err := columnIterFor(col)
			if err != nil {
				return err
			}
			iter = it
		}
		if err := d.funcs[i].SetArrayIter(iter); err != nil {
			return err
		}
	}

	if d.oneGroup != nil {
		return d.nextOneGroup()
	}
	return d.nextHash(b)
}

func (d *Driver) nextOneGroup() error {
	if !d.oneGroup.created {
		d.oneGroup.created = true
		for _, f := range d.funcs {
			if err := f.InitBatch(); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range d.funcs {
		if err := f.UpdateBatch(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) nextHash(b *batch.RecordBatch) error {
	keyIters := make([]ColumnIter, len(d.groupbyCols))
	for i, name := range d.groupbyCols {
		col, ok := b.ColumnByName(name)
		if !ok {
			return errSchemaMismatch(name)
		}
		it, err := columnIterFor(col)
		if err != nil {
			return err
		}
		keyIters[i] = it
	}
	if err := d.spec.bindKeyIters(keyIters); err != nil {
		return err
	}

	n := b.Len()
	for row := 0; row < n; row++ {
		slot, isNew := d.spec.getOrCreateEntry()
		if isNew {
			for _, f := range d.funcs {
				if err := f.Init(row); err != nil {
					return err
				}
			}
			continue
		}
		for i := d.numKeyFuncs; i < len(d.funcs); i++ {
			if err := d.funcs[i].Update(slot); err != nil {
				return err
			}
		}
	}
	return nil
}

// Result finalizes every function and assembles the output RecordBatch.
// Single-shot: the driver gives no guarantee about further Next/Result
// calls after this succeeds.
func (d *Driver) Result() (*batch.RecordBatch, error) {
	if !d.initialized {
		return nil, errInternalInvariant("result called before next")
	}

	var order []int
	if d.oneGroup != nil {
		order = d.oneGroup.summarizeGroups()
	} else {
		order = d.spec.summarizeGroups()
	}

	fields := make([]coltype.Field, len(d.funcs))
	cols := make([]*batch.Column, len(d.funcs))
	for i, f := range d.funcs {
		f.Reserve(len(order))
		if err := f.Summarize(order); err != nil {
			return nil, err
		}
		ty := f.DataType()
		field := coltype.Field{Name: d.funcDefs[i].OutputColumn, Type: ty}
		switch ty {
		case coltype.Time32, coltype.Time64, coltype.Timestamp, coltype.Duration:
			field.Unit = d.funcFields[i].Unit
		case coltype.Decimal128, coltype.Decimal256:
			if d.funcFields[i].Type == ty {
				field.Decimal = d.funcFields[i].Decimal
			} else {
				field.Decimal = coltype.DecimalParams{Precision: coltype.MaxDecimal128Precision, Scale: 0}
			}
		case coltype.FixedSizeBinary:
			field.Width = d.funcFields[i].Width
		}
		fields[i] = field
		cols[i] = &batch.Column{Field: field, Array: f.Result()}
	}

	return &batch.RecordBatch{Schema: &coltype.Schema{Fields: fields}, Columns: cols}, nil
}
