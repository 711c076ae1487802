/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmtfile_test

import (
	"testing"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want cmtfile.ModuleName
	}{
		{"already capitalized", "Utils", "Utils"},
		{"lowercase first letter", "utils", "Utils"},
		{"single char", "m", "M"},
		{"empty", "", ""},
		{"preserves tail case", "mathHelpers", "MathHelpers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cmtfile.Normalize(tt.in))
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid simple", "Utils", true},
		{"valid with underscore", "My_module", true},
		{"valid with prime", "Module'", true},
		{"valid with digits", "Module2", true},
		{"empty", "", false},
		{"lowercase first", "utils", false},
		{"leading digit", "2Utils", false},
		{"invalid char", "Utils!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cmtfile.IsValid(tt.in))
		})
	}
}

func TestIsStdlib(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"exact match", "Belt", true},
		{"case insensitive", "belt", true},
		{"prefix match", "Belt_Array", true},
		{"js prefix", "Js_array", true},
		{"jsx", "JsxRuntime", true},
		{"not stdlib", "Utils", false},
		{"not stdlib similar prefix", "Jsonx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cmtfile.IsStdlib(tt.in))
		})
	}
}

func TestSortDeduplicate(t *testing.T) {
	in := []cmtfile.ModuleName{"Utils", "Math", "Utils", "App", "Math"}
	got := cmtfile.SortDeduplicate(in, "App")
	require.Equal(t, []cmtfile.ModuleName{"Math", "Utils"}, got)
}

func TestSortDeduplicate_NoSelfNoDuplicates(t *testing.T) {
	in := []cmtfile.ModuleName{"Z", "A", "A", "Z"}
	got := cmtfile.SortDeduplicate(in, "Q")
	require.Equal(t, []cmtfile.ModuleName{"A", "Z"}, got)
}
