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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// World units are metres.
const (
	metresPerFoot = 0.3048
	metresPerInch = 0.0254
)

// ErrBadLength is returned for label text that is not a length.
var ErrBadLength = errors.New("invalid length")

// FormatLength renders v metres in units: "m", "cm", "mm" or "ft"
// (feet and whole inches). Unknown units fall back to metres.
func FormatLength(v float64, units string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	switch strings.ToLower(units) {
	case "cm":
		return strconv.FormatFloat(v*100, 'f', 1, 64) + " cm"
	case "mm":
		return strconv.FormatFloat(v*1000, 'f', 0, 64) + " mm"
	case "ft", "feet", "imperial":
		sign := ""
		if v < 0 {
			sign = "-"
			v = -v
		}
		in := math.Round(v / metresPerInch)
		ft := math.Floor(in / 12)
		in -= ft * 12
		return fmt.Sprintf("%s%d' %d\"", sign, int(ft), int(in))
	default:
		return strconv.FormatFloat(v, 'f', 2, 64) + " m"
	}
}

var unitFactors = map[string]float64{
	"":       1,
	"m":      1,
	"cm":     0.01,
	"mm":     0.001,
	"ft":     metresPerFoot,
	"'":      metresPerFoot,
	"in":     metresPerInch,
	"\"":     metresPerInch,
	"feet":   metresPerFoot,
	"foot":   metresPerFoot,
	"inch":   metresPerInch,
	"inches": metresPerInch,
}

// ParseLength reads label text such as "2.5", "250 cm", "3' 4\"" or
// "3ft 4in" and returns metres. A bare number uses defaultUnits.
func ParseLength(text, defaultUnits string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadLength)
	}
	total, last := 0.0, 0.0
	terms := 0
	for s != "" {
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || (i == 0 && (s[i] == '-' || s[i] == '+'))) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadLength, text)
		}
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrBadLength, text, err)
		}
		s = strings.TrimLeft(s[i:], " ")
		j := 0
		for j < len(s) && !(s[j] >= '0' && s[j] <= '9') && s[j] != ' ' {
			j++
		}
		unit := s[:j]
		s = strings.TrimLeft(s[j:], " ")
		if unit == "" {
			switch {
			case terms > 0 && last == metresPerFoot:
				unit = "in"
			case terms == 0:
				unit = strings.ToLower(defaultUnits)
			}
		}
		f, ok := unitFactors[unit]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrBadLength, unit)
		}
		total += num * f
		last = f
		terms++
	}
	return total, nil
}
