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

package coltype

import "testing"

func TestIsNumeric(t *testing.T) {
	numeric := []Type{Bool, Int8, Int64, Uint64, Float32, Float64, Date32, Date64, Time32, Timestamp, Duration}
	for _, ty := range numeric {
		if !ty.IsNumeric() {
			t.Errorf("%s should be numeric", ty)
		}
	}
	nonNumeric := []Type{Utf8, Binary, FixedSizeBinary, Opaque, Decimal128}
	for _, ty := range nonNumeric {
		if ty.IsNumeric() {
			t.Errorf("%s should not be numeric", ty)
		}
	}
}

func TestSchemaIndexOf(t *testing.T) {
	s := &Schema{Fields: []Field{{Name: "city", Type: Utf8}, {Name: "count", Type: Uint64}}}
	if idx := s.IndexOf("count"); idx != 1 {
		t.Fatalf("IndexOf(count) = %d, want 1", idx)
	}
	if idx := s.IndexOf("missing"); idx != -1 {
		t.Fatalf("IndexOf(missing) = %d, want -1", idx)
	}
}
