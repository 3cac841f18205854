/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package measure

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestFormatLength(t *testing.T) {
	cases := []struct {
		v     float64
		units string
		want  string
	}{
		{2, "m", "2.00 m"},
		{0.3048, "ft", "1' 0\""},
		{1, "ft", "3' 3\""},
		{0.305, "cm", "30.5 cm"},
		{1.2346, "mm", "1235 mm"},
		{1.5, "parsec", "1.50 m"},
	}
	for _, tc := range cases {
		if got := FormatLength(tc.v, tc.units); got != tc.want {
			t.Fatalf("FormatLength(%v,%q) = %q, want %q", tc.v, tc.units, got, tc.want)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in    string
		units string
		want  float64
	}{
		{"2.5", "m", 2.5},
		{"250 cm", "m", 2.5},
		{"3' 4\"", "m", 3*0.3048 + 4*0.0254},
		{"3ft 4in", "m", 3*0.3048 + 4*0.0254},
		{"3' 4", "m", 3*0.3048 + 4*0.0254},
		{"2", "ft", 0.6096},
	}
	for _, tc := range cases {
		got, err := ParseLength(tc.in, tc.units)
		if err != nil {
			t.Fatalf("ParseLength(%q) error: %v", tc.in, err)
		}
		if !scalar.EqualWithinAbs(got, tc.want, 1e-12) {
			t.Fatalf("ParseLength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "abc", "3 furlongs"} {
		if _, err := ParseLength(bad, "m"); !errors.Is(err, ErrBadLength) {
			t.Fatalf("ParseLength(%q) error = %v", bad, err)
		}
	}
}
