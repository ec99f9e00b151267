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

// oneGroupSpec backs the driver when groupbyCols is empty: there is exactly
// one implicit group, slot 0, which always exists in the final output even
// if next was never called with any rows. The driver drives this path with
// InitBatch/UpdateBatch directly instead of a per-row get_or_create_entry
// loop, since every row in every batch belongs to the same group by
// construction.
type oneGroupSpec struct {
	created bool
}

// summarizeGroups always returns the single slot, unconditionally — a
// one-group aggregate produces exactly one output row even over zero input
// rows.
func (s *oneGroupSpec) summarizeGroups() []int {
	return []int{0}
}
