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

// Package render emits the DOT and JSON renderings of a dependency graph.
package render

import (
	"fmt"
	"sort"
	"strings"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
)

// DOT renders g as a Graphviz digraph: one node per module with a label
// and optional tooltip, one edge per (module, dependency) pair, and one
// cluster per strongly connected component of size >= 2.
func DOT(g *depgraph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")

	names := make([]cmtfile.ModuleName, 0, len(g.Deps))
	for name := range g.Deps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, name := range names {
		meta := g.Meta[name]
		if meta.Path != "" {
			fmt.Fprintf(&b, "  %q [label=%q, tooltip=%q];\n", name, name, meta.Path)
		} else {
			fmt.Fprintf(&b, "  %q [label=%q];\n", name, name)
		}
	}

	for _, name := range names {
		for _, dep := range g.Deps[name] {
			fmt.Fprintf(&b, "  %q -> %q;\n", name, dep)
		}
	}

	sccs := g.FindStronglyConnectedComponents()
	clusterN := 0
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", clusterN)
		b.WriteString("    style=filled; color=pink; label=\"Cyclic dependency\";\n")
		for _, member := range scc {
			fmt.Fprintf(&b, "    %q;\n", member)
		}
		b.WriteString("  }\n")
		clusterN++
	}

	b.WriteString("}\n")
	return b.String()
}
