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

// Errorf is called with diagnostic information as the driver processes
// batches (currently only when SUM promotes its output column to
// decimal128). It is a no-op by default; callers that want this information set it to a logging
// function of their choosing. This package never imports a logging library
// itself.
var Errorf = func(f string, args ...interface{}) {}
