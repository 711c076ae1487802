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
package diskcache_test

import (
	"path/filepath"
	"testing"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/diskcache"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	cache, err := diskcache.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	digest := cmtfile.Digest{1, 2, 3}
	info := cmtfile.ModuleInfo{
		Name:            "Utils",
		Dependencies:    []cmtfile.ModuleName{"Math"},
		InterfaceDigest: &digest,
		FilePath:        "Utils.res",
	}

	require.NoError(t, cache.Put("Utils.cmt", &digest, info))

	got, ok, err := cache.Get("Utils.cmt", &digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, info.Name, got.Name)
	require.Equal(t, info.Dependencies, got.Dependencies)
	require.Equal(t, info.FilePath, got.FilePath)
	require.Equal(t, *info.InterfaceDigest, *got.InterfaceDigest)
}

func TestGet_MissReturnsFalseNotError(t *testing.T) {
	cache, err := diskcache.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	_, ok, err := cache.Get("Nonexistent.cmt", nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClear_RemovesEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := diskcache.Open(dir)
	require.NoError(t, err)

	require.NoError(t, cache.Put("Utils.cmt", nil, cmtfile.ModuleInfo{Name: "Utils"}))
	require.NoError(t, cache.Clear())

	_, ok, err := cache.Get("Utils.cmt", nil)
	require.NoError(t, err)
	require.False(t, ok)
}
