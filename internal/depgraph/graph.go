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

// Package depgraph builds and queries the module dependency graph: focus,
// filter, cycle detection, topological order, transitive closure, and
// fan-in/fan-out metrics.
package depgraph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
)

// Graph is an immutable snapshot of the dependency relation between
// modules. Keys of Deps and Meta are always identical sets; every
// transformation below produces a new Graph rather than mutating its
// receiver.
type Graph struct {
	Deps map[cmtfile.ModuleName][]cmtfile.ModuleName
	Meta map[cmtfile.ModuleName]cmtfile.ModuleMetadata
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Deps: make(map[cmtfile.ModuleName][]cmtfile.ModuleName),
		Meta: make(map[cmtfile.ModuleName]cmtfile.ModuleMetadata),
	}
}

// Build folds infos into a graph: for each ModuleInfo, adds (info.Name,
// info.Dependencies, info.FilePath) to Deps and Meta. If the same name
// appears twice, the last occurrence wins.
func Build(infos []cmtfile.ModuleInfo) *Graph {
	g := New()
	for _, info := range infos {
		g.Deps[info.Name] = info.Dependencies
		g.Meta[info.Name] = cmtfile.ModuleMetadata{Path: info.FilePath}
	}
	return g
}

// GetDependencies returns the adjacency list for m, or nil if m is unknown.
func (g *Graph) GetDependencies(m cmtfile.ModuleName) []cmtfile.ModuleName {
	return g.Deps[m]
}

// FindDependents scans all nodes and returns, in ascending key order, those
// whose adjacency list contains m.
func (g *Graph) FindDependents(m cmtfile.ModuleName) []cmtfile.ModuleName {
	var out []cmtfile.ModuleName
	for _, name := range g.sortedKeys() {
		for _, dep := range g.Deps[name] {
			if dep == m {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// sortedKeys returns the graph's module names in ascending string order,
// the enumeration order the renderers use for deterministic output.
func (g *Graph) sortedKeys() []cmtfile.ModuleName {
	keys := make([]cmtfile.ModuleName, 0, len(g.Deps))
	for k := range g.Deps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// TopologicalSort performs a depth-first traversal with a visited set,
// emitting modules such that every module appears after all of its
// dependencies are visited. Cycles are tolerated: the algorithm never
// revisits a node and therefore terminates, but the resulting order is not
// necessarily a valid topological order in the presence of cycles.
func (g *Graph) TopologicalSort() []cmtfile.ModuleName {
	visited := make(map[cmtfile.ModuleName]bool)
	var order []cmtfile.ModuleName

	var visit func(m cmtfile.ModuleName)
	visit = func(m cmtfile.ModuleName) {
		if visited[m] {
			return
		}
		visited[m] = true
		for _, dep := range g.Deps[m] {
			visit(dep)
		}
		order = append(order, m)
	}

	for _, m := range g.sortedKeys() {
		visit(m)
	}
	return order
}

// TransitiveDependencies returns all modules reachable from m, excluding m
// itself, in ascending string order; dependency targets that are not nodes
// of g are included, though nothing is reachable through them. The walk
// delegates to gonum's
// depth-first traversal over an ephemeral view of g; the re-sort makes the
// result deterministic regardless of gonum's internal iteration order, the
// same discipline FindStronglyConnectedComponents applies.
func (g *Graph) TransitiveDependencies(m cmtfile.ModuleName) []cmtfile.ModuleName {
	dg, nameToID, idToName := g.asGonumGraph()
	start, ok := nameToID[m]
	if !ok {
		return nil
	}

	var out []cmtfile.ModuleName
	external := make(map[cmtfile.ModuleName]bool)
	df := traverse.DepthFirst{
		Visit: func(n gonum.Node) {
			name := idToName[n.ID()]
			if n.ID() != start {
				out = append(out, name)
			}
			// Targets that are not nodes of g have no vertex in the gonum
			// view, so they are collected from the adjacency list here.
			for _, dep := range g.Deps[name] {
				if _, isNode := nameToID[dep]; !isNode && !external[dep] {
					external[dep] = true
					out = append(out, dep)
				}
			}
		},
	}
	df.Walk(dg, dg.Node(start), nil)

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FindModulesWithNoDependents returns all modules whose FindDependents list
// is empty, in ascending key order.
func (g *Graph) FindModulesWithNoDependents() []cmtfile.ModuleName {
	var out []cmtfile.ModuleName
	for _, m := range g.sortedKeys() {
		if len(g.FindDependents(m)) == 0 {
			out = append(out, m)
		}
	}
	return out
}

// Metrics is the (name, fan_in, fan_out) tuple computed for every node.
type Metrics struct {
	Name   cmtfile.ModuleName
	FanIn  int
	FanOut int
}

// CalculateMetrics returns Metrics for every node in ascending key order.
func (g *Graph) CalculateMetrics() []Metrics {
	out := make([]Metrics, 0, len(g.Deps))
	for _, m := range g.sortedKeys() {
		out = append(out, Metrics{
			Name:   m,
			FanIn:  len(g.FindDependents(m)),
			FanOut: len(g.GetDependencies(m)),
		})
	}
	return out
}
