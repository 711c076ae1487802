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
package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
)

// asGonumGraph builds an ephemeral simple.DirectedGraph view of g, along
// with the id<->name mappings needed to translate gonum's integer node IDs
// back to ModuleNames.
func (g *Graph) asGonumGraph() (*simple.DirectedGraph, map[cmtfile.ModuleName]int64, map[int64]cmtfile.ModuleName) {
	dg := simple.NewDirectedGraph()
	nameToID := make(map[cmtfile.ModuleName]int64, len(g.Deps))
	idToName := make(map[int64]cmtfile.ModuleName, len(g.Deps))

	var id int64
	for _, name := range g.sortedKeys() {
		nameToID[name] = id
		idToName[id] = name
		dg.AddNode(simple.Node(id))
		id++
	}
	for _, name := range g.sortedKeys() {
		from := nameToID[name]
		for _, dep := range g.Deps[name] {
			to, ok := nameToID[dep]
			if !ok {
				// Edge to a node outside this graph (e.g. unfiltered
				// external module); SCC detection only concerns itself
				// with nodes present in g.
				continue
			}
			if from == to {
				// Self-loops are detected separately via hasSelfLoop and
				// would otherwise panic simple.DirectedGraph.SetEdge.
				continue
			}
			if !dg.HasEdgeFromTo(from, to) {
				dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
			}
		}
	}
	return dg, nameToID, idToName
}

// FindStronglyConnectedComponents runs gonum's Tarjan SCC implementation
// over an ephemeral view of g, then re-sorts both the component membership
// and the list of components so output is deterministic regardless of
// gonum's internal iteration order (identical inputs must render
// byte-identically, which topo.TarjanSCC does not itself guarantee). An SCC
// is reported if it has >= 2 members, or exactly one member with a
// self-loop.
func (g *Graph) FindStronglyConnectedComponents() [][]cmtfile.ModuleName {
	dg, _, idToName := g.asGonumGraph()
	components := topo.TarjanSCC(dg)

	var out [][]cmtfile.ModuleName
	for _, comp := range components {
		names := make([]cmtfile.ModuleName, 0, len(comp))
		for _, n := range comp {
			names = append(names, idToName[n.ID()])
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

		if len(names) >= 2 {
			out = append(out, names)
			continue
		}
		if len(names) == 1 && hasSelfLoop(g, names[0]) {
			out = append(out, names)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return sccKey(out[i]) < sccKey(out[j])
	})
	return out
}

func hasSelfLoop(g *Graph, m cmtfile.ModuleName) bool {
	for _, dep := range g.Deps[m] {
		if dep == m {
			return true
		}
	}
	return false
}

func sccKey(names []cmtfile.ModuleName) string {
	out := ""
	for _, n := range names {
		out += string(n) + "\x00"
	}
	return out
}
