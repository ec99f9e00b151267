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
	"errors"
	"fmt"

	"github.com/colvecdb/aggregate/coltype"
)

// Sentinel errors matched with errors.Is by callers. Every error the driver
// returns wraps exactly one of these, except the error from a batch that
// fails RecordBatch.Validate, which Next returns as is. Wrapping follows the same fmt.Errorf("%w", ...)
// convention the rest of this codebase uses instead of a typed-error
// hierarchy or an assertion library.
var (
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrOverflowFatal     = errors.New("wide128 overflow")
	ErrInternalInvariant = errors.New("internal invariant violated")
)

func errSchemaMismatch(column string) error {
	return fmt.Errorf("%w: column %q not found in batch schema", ErrSchemaMismatch, column)
}

func errUnsupportedType(kind AggFuncKind, ty coltype.Type, column string) error {
	return fmt.Errorf("%w: %s is not defined on %s (column %q)", ErrUnsupportedType, kind, ty, column)
}

func errOverflowFatal(op string) error {
	return fmt.Errorf("%w: %s", ErrOverflowFatal, op)
}

func errInternalInvariant(msg string) error {
	return fmt.Errorf("%w: %s", ErrInternalInvariant, msg)
}
