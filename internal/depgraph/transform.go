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

import "bennypowers.dev/rescriptdep/internal/cmtfile"

// CreateFilteredGraph drops all nodes classified as stdlib/internal. Each
// remaining node keeps its original adjacency list unchanged, even if some
// targets are filtered out as nodes.
func (g *Graph) CreateFilteredGraph() *Graph {
	out := New()
	for name, deps := range g.Deps {
		if cmtfile.IsStdlib(string(name)) {
			continue
		}
		out.Deps[name] = append([]cmtfile.ModuleName{}, deps...)
		out.Meta[name] = g.Meta[name]
	}
	return out
}

// CreateFocusedGraph centers the graph on center. If center is not a node
// of g, the empty graph is returned (an unknown module is not an error).
// Otherwise the result contains:
//   - center, with its original dependencies unchanged;
//   - each of center's dependencies, as a node with empty adjacency (so the
//     view shows what center uses without drilling further);
//   - each module that depends on center, as a node with adjacency
//     [center] (so FindDependents(result, center) returns all of them).
func (g *Graph) CreateFocusedGraph(center cmtfile.ModuleName) *Graph {
	out := New()
	if _, ok := g.Deps[center]; !ok {
		return out
	}

	out.Deps[center] = append([]cmtfile.ModuleName{}, g.Deps[center]...)
	out.Meta[center] = g.Meta[center]

	for _, dep := range g.Deps[center] {
		if _, ok := out.Deps[dep]; ok {
			continue
		}
		out.Deps[dep] = []cmtfile.ModuleName{}
		out.Meta[dep] = g.Meta[dep]
	}

	for _, dependent := range g.FindDependents(center) {
		out.Deps[dependent] = []cmtfile.ModuleName{center}
		out.Meta[dependent] = g.Meta[dependent]
	}

	return out
}

// CreateSubgraphPreserveDeps restricts nodes to modules; adjacency lists
// are unchanged.
func (g *Graph) CreateSubgraphPreserveDeps(modules []cmtfile.ModuleName) *Graph {
	out := New()
	for _, name := range modules {
		deps, ok := g.Deps[name]
		if !ok {
			continue
		}
		out.Deps[name] = append([]cmtfile.ModuleName{}, deps...)
		out.Meta[name] = g.Meta[name]
	}
	return out
}
