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
	"bennypowers.dev/rescriptdep/internal/platform"
	"github.com/stretchr/testify/require"
)

func TestExtract_FiltersStdlibAndSelf(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/App.cmt": `{
			"modname": "App",
			"kind": "implementation",
			"imports": [
				{"name": "Belt"},
				{"name": "Js_array"},
				{"name": "Utils"},
				{"name": "App"}
			]
		}`,
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/App.cmt")
	require.Equal(t, cmtfile.ModuleName("App"), info.Name)
	require.Equal(t, []cmtfile.ModuleName{"Utils"}, info.Dependencies)
}

func TestExtract_SelfReferenceFiltered(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/Math.cmt": `{
			"modname": "Math",
			"kind": "implementation",
			"imports": [{"name": "Math"}, {"name": "Utils"}]
		}`,
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/Math.cmt")
	require.Equal(t, []cmtfile.ModuleName{"Utils"}, info.Dependencies)
}

func TestExtract_DecodeErrorIsResilient(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/Bad.cmt": `not json at all`,
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/Bad.cmt")
	require.Equal(t, cmtfile.ModuleName("Bad"), info.Name)
	require.Empty(t, info.Dependencies)
	require.Equal(t, "project/Bad.cmt", info.FilePath)
}

func TestExtract_DropsImportsNotMentionedInSource(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/App.cmt": `{
			"modname": "App",
			"kind": "implementation",
			"imports": [{"name": "Utils"}, {"name": "Phantom"}]
		}`,
		"project/App.res": "open Utils\nlet x = Utils.add(1, 2)\n",
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/App.cmt")
	require.Equal(t, []cmtfile.ModuleName{"Utils"}, info.Dependencies)
}

func TestExtract_MentionCheckRequiresTokenBoundaries(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/App.cmt": `{
			"modname": "App",
			"kind": "implementation",
			"imports": [{"name": "Util"}]
		}`,
		"project/App.res": "let y = Utils.add(1, 2)\n",
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/App.cmt")
	require.Empty(t, info.Dependencies)
}

func TestExtract_ResolvesSourceFile(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/Utils.cmt": `{"modname": "Utils", "kind": "implementation"}`,
		"project/Utils.res": `let add = (a, b) => a + b`,
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/Utils.cmt")
	require.Equal(t, "project/Utils.res", info.FilePath)
}

func TestExtract_FallsBackToCmtPathWhenNoSource(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/Orphan.cmt": `{"modname": "Orphan", "kind": "implementation"}`,
	})
	info := cmtfile.Extract(fs, cmtfile.NewDefaultDecoder(), "project/Orphan.cmt")
	require.Equal(t, "project/Orphan.cmt", info.FilePath)
}
