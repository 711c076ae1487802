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
package render_test

import (
	"encoding/json"
	"strings"
	"testing"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
	"bennypowers.dev/rescriptdep/internal/render"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func chain() *depgraph.Graph {
	return depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Math", "Utils"}, FilePath: "App.res"},
		{Name: "Math", Dependencies: []cmtfile.ModuleName{"Utils"}, FilePath: "Math.res"},
		{Name: "Utils", FilePath: "Utils.res"},
	})
}

func TestJSON_ModulesAndMetrics(t *testing.T) {
	raw, err := render.JSON(chain())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	modules, ok := doc["modules"].([]any)
	require.True(t, ok)
	require.Len(t, modules, 3)

	first := modules[0].(map[string]any)
	require.Equal(t, "App", first["name"])
	require.Equal(t, float64(0), first["fan_in"])
	require.Equal(t, float64(2), first["fan_out"])

	metrics := doc["metrics"].(map[string]any)
	require.Equal(t, "Utils", metrics["most_depended_upon"].(map[string]any)["module"])
	require.Equal(t, float64(2), metrics["most_depended_upon"].(map[string]any)["count"])
	require.Equal(t, float64(0), metrics["cycles_count"])

	cycles := doc["cycles"].([]any)
	require.Empty(t, cycles)
}

func TestJSON_AveragesAlwaysHaveDecimalPoint(t *testing.T) {
	raw, err := render.JSON(chain())
	require.NoError(t, err)
	require.Contains(t, string(raw), `"average_fan_in":2.0`)
}

func TestJSON_KeyOrder(t *testing.T) {
	raw, err := render.JSON(chain())
	require.NoError(t, err)
	s := string(raw)
	modulesIdx := strings.Index(s, `"modules"`)
	cyclesIdx := strings.Index(s, `"cycles"`)
	metricsIdx := strings.Index(s, `"metrics"`)
	require.True(t, modulesIdx < cyclesIdx)
	require.True(t, cyclesIdx < metricsIdx)
}

func TestDOT_WellFormedDigraph(t *testing.T) {
	out := render.DOT(chain())
	require.True(t, strings.HasPrefix(out, "digraph dependencies {"))
	require.Contains(t, out, "rankdir=LR;")
	require.Contains(t, out, `"App" -> "Math";`)
	require.Contains(t, out, `"App" -> "Utils";`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
}

func TestDOT_CyclesGetClusterSubgraph(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "A", Dependencies: []cmtfile.ModuleName{"B"}},
		{Name: "B", Dependencies: []cmtfile.ModuleName{"A"}},
	})
	out := render.DOT(g)
	require.Contains(t, out, "subgraph cluster_0")
	require.Contains(t, out, `style=filled; color=pink; label="Cyclic dependency";`)
}

func TestDOT_NoClusterWhenNoCycle(t *testing.T) {
	out := render.DOT(chain())
	require.NotContains(t, out, "subgraph cluster")
}

// Rendering the same graph twice yields byte-identical output. go-cmp
// surfaces the full structural diff (rather than just a byte mismatch)
// when a renderer change breaks this.
func TestJSON_RoundTripIsByteIdentical(t *testing.T) {
	g := chain()
	first, err := render.JSON(g)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))

	second, err := render.JSON(depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Math", "Utils"}, FilePath: "App.res"},
		{Name: "Math", Dependencies: []cmtfile.ModuleName{"Utils"}, FilePath: "Math.res"},
		{Name: "Utils", FilePath: "Utils.res"},
	}))
	require.NoError(t, err)

	var decodedSecond map[string]any
	require.NoError(t, json.Unmarshal(second, &decodedSecond))

	if diff := cmp.Diff(decoded, decodedSecond); diff != "" {
		t.Fatalf("re-rendered JSON document differs (-first +second):\n%s", diff)
	}
	require.Equal(t, string(first), string(second))
}
