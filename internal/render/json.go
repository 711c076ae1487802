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
package render

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
)

// decimal renders as a JSON number that always carries a decimal point
// (e.g. "2.0", never "2"), so consumers parsing the metrics always see a
// float.
type decimal float64

func (d decimal) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}

type moduleRef struct {
	Name string  `json:"name"`
	Path *string `json:"path"`
}

type jsonModule struct {
	Name         string      `json:"name"`
	Path         *string     `json:"path"`
	Dependencies []moduleRef `json:"dependencies"`
	Dependents   []moduleRef `json:"dependents"`
	FanIn        int         `json:"fan_in"`
	FanOut       int         `json:"fan_out"`
	InCycle      bool        `json:"in_cycle"`
}

type topCount struct {
	Module string `json:"module"`
	Count  int    `json:"count"`
}

type jsonMetrics struct {
	TotalModules      int      `json:"total_modules"`
	AverageFanIn      decimal  `json:"average_fan_in"`
	AverageFanOut     decimal  `json:"average_fan_out"`
	MostDependedUpon  topCount `json:"most_depended_upon"`
	MostDependencies  topCount `json:"most_dependencies"`
	CyclesCount       int      `json:"cycles_count"`
}

type jsonDoc struct {
	Modules []jsonModule `json:"modules"`
	Cycles  [][]string   `json:"cycles"`
	Metrics jsonMetrics  `json:"metrics"`
}

// JSON renders g as an object with modules (in ascending key order),
// cycles, and aggregate metrics. The visualizer extension depends on this
// exact key set and value types.
func JSON(g *depgraph.Graph) ([]byte, error) {
	names := make([]cmtfile.ModuleName, 0, len(g.Deps))
	for name := range g.Deps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	sccs := g.FindStronglyConnectedComponents()
	inCycle := make(map[cmtfile.ModuleName]bool)
	var cycles [][]string
	for _, scc := range sccs {
		for _, m := range scc {
			inCycle[m] = true
		}
	}
	for _, c := range g.FindAllCycles() {
		row := make([]string, len(c))
		for i, m := range c {
			row[i] = string(m)
		}
		cycles = append(cycles, row)
	}
	if cycles == nil {
		cycles = [][]string{}
	}

	modules := make([]jsonModule, 0, len(names))
	totalFanIn, totalFanOut := 0, 0
	var mostDependedUpon, mostDependencies topCount

	for _, name := range names {
		deps := g.GetDependencies(name)
		dependents := g.FindDependents(name)

		jm := jsonModule{
			Name:         string(name),
			Path:         pathOrNil(g.Meta[name].Path),
			Dependencies: refsFor(g, deps),
			Dependents:   refsFor(g, dependents),
			FanIn:        len(dependents),
			FanOut:       len(deps),
			InCycle:      inCycle[name],
		}
		modules = append(modules, jm)

		totalFanIn += jm.FanIn
		totalFanOut += jm.FanOut

		if jm.FanIn > mostDependedUpon.Count {
			mostDependedUpon = topCount{Module: jm.Name, Count: jm.FanIn}
		}
		if jm.FanOut > mostDependencies.Count {
			mostDependencies = topCount{Module: jm.Name, Count: jm.FanOut}
		}
	}

	total := len(names)
	var avgFanIn, avgFanOut decimal
	if total > 0 {
		avgFanIn = decimal(float64(totalFanIn) / float64(total))
		avgFanOut = decimal(float64(totalFanOut) / float64(total))
	}

	doc := jsonDoc{
		Modules: modules,
		Cycles:  cycles,
		Metrics: jsonMetrics{
			TotalModules:     total,
			AverageFanIn:     avgFanIn,
			AverageFanOut:    avgFanOut,
			MostDependedUpon: mostDependedUpon,
			MostDependencies: mostDependencies,
			CyclesCount:      len(cycles),
		},
	}
	return json.Marshal(doc)
}

func pathOrNil(path string) *string {
	if path == "" {
		return nil
	}
	return &path
}

func refsFor(g *depgraph.Graph, names []cmtfile.ModuleName) []moduleRef {
	out := make([]moduleRef, 0, len(names))
	for _, n := range names {
		out = append(out, moduleRef{Name: string(n), Path: pathOrNil(g.Meta[n].Path)})
	}
	return out
}
