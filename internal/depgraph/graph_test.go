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
package depgraph_test

import (
	"testing"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
	"github.com/stretchr/testify/require"
)

func chain() *depgraph.Graph {
	return depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Math", "Utils"}},
		{Name: "Math", Dependencies: []cmtfile.ModuleName{"Utils"}},
		{Name: "Utils"},
	})
}

func TestCalculateMetrics_LinearChain(t *testing.T) {
	g := chain()
	metrics := g.CalculateMetrics()
	require.Len(t, metrics, 3)

	byName := map[cmtfile.ModuleName]depgraph.Metrics{}
	for _, m := range metrics {
		byName[m.Name] = m
	}
	require.Equal(t, 0, byName["App"].FanIn)
	require.Equal(t, 2, byName["App"].FanOut)
	require.Equal(t, 1, byName["Math"].FanIn)
	require.Equal(t, 1, byName["Math"].FanOut)
	require.Equal(t, 2, byName["Utils"].FanIn)
	require.Equal(t, 0, byName["Utils"].FanOut)

	require.Empty(t, g.FindAllCycles())
}

func TestFindDependents(t *testing.T) {
	g := chain()
	require.Equal(t, []cmtfile.ModuleName{"App", "Math"}, g.FindDependents("Utils"))
	require.Empty(t, g.FindDependents("App"))
}

func TestTransitiveDependencies_SupersetOfDirect(t *testing.T) {
	g := chain()
	direct := g.GetDependencies("App")
	trans := g.TransitiveDependencies("App")
	for _, d := range direct {
		require.Contains(t, trans, d)
	}
	require.NotContains(t, trans, cmtfile.ModuleName("App"))
}

// A -> B -> C -> A.
func TestThreeModuleCycle(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "A", Dependencies: []cmtfile.ModuleName{"B"}},
		{Name: "B", Dependencies: []cmtfile.ModuleName{"C"}},
		{Name: "C", Dependencies: []cmtfile.ModuleName{"A"}},
	})

	cycles := g.FindAllCycles()
	require.Len(t, cycles, 1)
	require.ElementsMatch(t, []cmtfile.ModuleName{"A", "B", "C"}, cycles[0])

	sccs := g.FindStronglyConnectedComponents()
	require.Len(t, sccs, 1)
	require.ElementsMatch(t, []cmtfile.ModuleName{"A", "B", "C"}, sccs[0])

	require.True(t, g.HasCycle("A"))
	require.True(t, g.HasCycle("B"))
	require.True(t, g.HasCycle("C"))
}

func TestSelfLoopReportedAsSingletonSCC(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "A", Dependencies: []cmtfile.ModuleName{"A"}},
	})
	sccs := g.FindStronglyConnectedComponents()
	require.Len(t, sccs, 1)
	require.Equal(t, []cmtfile.ModuleName{"A"}, sccs[0])
}

func TestNoSelfLoopNotReportedAsSCC(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "A", Dependencies: []cmtfile.ModuleName{"B"}},
		{Name: "B"},
	})
	require.Empty(t, g.FindStronglyConnectedComponents())
}

func TestCreateFocusedGraph_ShowsOnlyImmediateNeighbors(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "A", Dependencies: []cmtfile.ModuleName{"B"}},
		{Name: "C", Dependencies: []cmtfile.ModuleName{"B"}},
		{Name: "B", Dependencies: []cmtfile.ModuleName{"D", "E"}},
		{Name: "D"},
		{Name: "E"},
	})

	focused := g.CreateFocusedGraph("B")
	require.Equal(t, g.GetDependencies("B"), focused.GetDependencies("B"))
	require.ElementsMatch(t, g.FindDependents("B"), focused.FindDependents("B"))

	require.Empty(t, focused.GetDependencies("D"))
	require.Empty(t, focused.GetDependencies("E"))
	require.Equal(t, []cmtfile.ModuleName{"B"}, focused.GetDependencies("A"))
	require.Equal(t, []cmtfile.ModuleName{"B"}, focused.GetDependencies("C"))
}

func TestCreateFocusedGraph_UnknownModuleIsEmptyGraph(t *testing.T) {
	g := chain()
	focused := g.CreateFocusedGraph("Nonexistent")
	require.Empty(t, focused.Deps)
	require.Empty(t, focused.Meta)
}

func TestCreateFilteredGraph_DropsStdlibNodesOnly(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Utils"}},
		{Name: "Belt"},
	})
	filtered := g.CreateFilteredGraph()
	_, hasBelt := filtered.Deps["Belt"]
	require.False(t, hasBelt)
	require.Equal(t, []cmtfile.ModuleName{"Utils"}, filtered.GetDependencies("App"))
}

func TestKeysOfDepsAndMetaAreIdentical(t *testing.T) {
	g := chain()
	require.Equal(t, len(g.Deps), len(g.Meta))
	for name := range g.Deps {
		_, ok := g.Meta[name]
		require.True(t, ok)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	infos := []cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Math", "Utils"}},
		{Name: "Math", Dependencies: []cmtfile.ModuleName{"Utils"}},
		{Name: "Utils"},
	}
	g1 := depgraph.Build(infos)
	g2 := depgraph.Build(infos)
	require.Equal(t, g1, g2)
}

func TestBuild_LastOccurrenceWins(t *testing.T) {
	g := depgraph.Build([]cmtfile.ModuleInfo{
		{Name: "App", Dependencies: []cmtfile.ModuleName{"Old"}},
		{Name: "App", Dependencies: []cmtfile.ModuleName{"New"}},
	})
	require.Equal(t, []cmtfile.ModuleName{"New"}, g.GetDependencies("App"))
}
