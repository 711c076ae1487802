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

// Package usage implements the typed-tree value-usage counter: given a
// binding identified by (module_name, value_name, line_number), it walks
// the owner module's dependents and counts lexically correct references,
// respecting scoping and `open` declarations.
package usage

import (
	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
	"bennypowers.dev/rescriptdep/internal/platform"
	"bennypowers.dev/rescriptdep/internal/typedtree"
)

// Sentinel counts are in-band signals on per-module results, not errors.
const (
	SentinelNoImplementation = -2
	SentinelReadError        = -3
	SentinelNoCmtFile        = -4
	SentinelNoSourcePath     = -5
)

// Result is one (dep_name, count) pair returned by Count.
type Result struct {
	Module cmtfile.ModuleName
	Count  int
}

// binding records where (module_name, value_name, line_number) was located
// within the owner's implementation structure.
type binding struct {
	topLevel   bool
	modulePath []string
	// localExpr is the enclosing Let expression for a local (non-top-level)
	// binding; nil for top-level bindings. Identity (not value) equality
	// against nodes of the owner's own decoded structure scopes counting to
	// references textually inside that expression.
	localExpr *typedtree.Expression
}

// Count returns, for owner and every module that depends on it (per
// g.FindDependents), a Result with the number of lexically correct
// references to the binding located at (owner, valueName, line).
func Count(
	fs platform.FileSystem,
	decoder cmtfile.Decoder,
	cmtPaths map[cmtfile.ModuleName]string,
	g *depgraph.Graph,
	owner cmtfile.ModuleName,
	valueName string,
	line int,
) []Result {
	ownerStruct, sentinel := loadImplementation(fs, decoder, cmtPaths, owner)

	candidates := append([]cmtfile.ModuleName{owner}, g.FindDependents(owner)...)

	if sentinel != 0 {
		out := make([]Result, len(candidates))
		for i, c := range candidates {
			out[i] = Result{Module: c, Count: sentinel}
		}
		return out
	}

	b, found := locateBinding(ownerStruct, valueName, line)
	if !found {
		out := make([]Result, len(candidates))
		for i, c := range candidates {
			out[i] = Result{Module: c, Count: SentinelNoImplementation}
		}
		return out
	}

	out := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == owner {
			out = append(out, Result{Module: candidate, Count: countReferences(ownerStruct, owner, valueName, b, true)})
			continue
		}
		candStruct, sentinel := loadImplementation(fs, decoder, cmtPaths, candidate)
		if sentinel != 0 {
			out = append(out, Result{Module: candidate, Count: sentinel})
			continue
		}
		out = append(out, Result{Module: candidate, Count: countReferences(candStruct, owner, valueName, b, false)})
	}
	return out
}

func loadImplementation(fs platform.FileSystem, decoder cmtfile.Decoder, cmtPaths map[cmtfile.ModuleName]string, name cmtfile.ModuleName) (*typedtree.Structure, int) {
	path, ok := cmtPaths[name]
	if !ok {
		return nil, SentinelNoCmtFile
	}
	if !fs.Exists(path) {
		return nil, SentinelNoSourcePath
	}
	info, err := decoder.Decode(fs, path)
	if err != nil {
		return nil, SentinelReadError
	}
	if info.AnnotKind != cmtfile.AnnotationImplementation || info.Implementation == nil {
		return nil, SentinelNoImplementation
	}
	return info.Implementation, 0
}

// locateBinding walks s top-down tracking a module path and an
// is-top-level flag (true at structure/substructure top, false inside any
// expression). The first `let` binding whose pattern is valueName and whose
// starting line matches is returned.
func locateBinding(s *typedtree.Structure, valueName string, line int) (binding, bool) {
	var modulePath []string
	return locateInStructure(s, valueName, line, modulePath)
}

func locateInStructure(s *typedtree.Structure, valueName string, line int, modulePath []string) (binding, bool) {
	if s == nil {
		return binding{}, false
	}
	for _, item := range s.Items {
		switch item.Kind {
		case typedtree.ItemValue:
			if item.Value.Pattern == valueName && item.Value.Line == line {
				return binding{topLevel: true, modulePath: append([]string{}, modulePath...)}, true
			}
			if b, ok := locateInExpr(&item.Value.Expr, valueName, line); ok {
				return b, true
			}
		case typedtree.ItemModule:
			nested := append(append([]string{}, modulePath...), item.Module.Name)
			if b, ok := locateInStructure(&item.Module.Body, valueName, line, nested); ok {
				return b, true
			}
		}
	}
	return binding{}, false
}

func locateInExpr(e *typedtree.Expression, valueName string, line int) (binding, bool) {
	if e == nil {
		return binding{}, false
	}
	if e.Kind == typedtree.ExprLet {
		for i := range e.LetBindings {
			lb := &e.LetBindings[i]
			if lb.Pattern == valueName && lb.Line == line {
				return binding{topLevel: false, localExpr: e}, true
			}
		}
	}
	if e.Kind == typedtree.ExprLetModule && e.LetModuleBody != nil {
		if b, ok := locateInStructure(e.LetModuleBody, valueName, line, nil); ok {
			return b, true
		}
	}
	for _, child := range e.Children() {
		if b, ok := locateInExpr(child, valueName, line); ok {
			return b, true
		}
	}
	return binding{}, false
}

// countReferences walks s's full expression tree counting ident
// occurrences that resolve lexically to the located binding.
func countReferences(s *typedtree.Structure, owner cmtfile.ModuleName, valueName string, b binding, candidateIsOwner bool) int {
	count := 0
	var openModules []string

	var walkExpr func(e *typedtree.Expression, insideTarget bool)
	var walkStructure func(st *typedtree.Structure, insideTarget bool)

	walkExpr = func(e *typedtree.Expression, insideTarget bool) {
		if e == nil {
			return
		}
		if !b.topLevel && candidateIsOwner && e == b.localExpr {
			insideTarget = true
		}

		if e.Kind == typedtree.ExprIdent {
			segs := e.Ident.Segments()
			if shouldCount(segs, owner, valueName, b, candidateIsOwner, insideTarget, openModules) {
				count++
			}
		}

		if e.Kind == typedtree.ExprOpen {
			openModules = append(openModules, e.OpenModule)
			walkExpr(e.Body, insideTarget)
			openModules = openModules[:len(openModules)-1]
			return
		}

		if e.Kind == typedtree.ExprLetModule {
			walkStructure(e.LetModuleBody, insideTarget)
			walkExpr(e.Inner, insideTarget)
			return
		}

		for _, child := range e.Children() {
			walkExpr(child, insideTarget)
		}
	}

	walkStructure = func(st *typedtree.Structure, insideTarget bool) {
		if st == nil {
			return
		}
		for _, item := range st.Items {
			switch item.Kind {
			case typedtree.ItemValue:
				walkExpr(&item.Value.Expr, insideTarget)
			case typedtree.ItemModule:
				walkStructure(&item.Module.Body, insideTarget)
			}
		}
	}
	walkStructure(s, false)
	return count
}

func shouldCount(segs []string, owner cmtfile.ModuleName, valueName string, b binding, candidateIsOwner, insideTarget bool, openModules []string) bool {
	if !b.topLevel {
		return insideTarget && len(segs) == 1 && segs[0] == valueName
	}

	if candidateIsOwner && len(segs) == 1 && segs[0] == valueName {
		return true
	}

	qualified := append([]string{string(owner)}, b.modulePath...)
	qualified = append(qualified, valueName)
	if segsEqual(segs, qualified) {
		return true
	}

	if len(b.modulePath) == 0 && len(segs) == 1 && segs[0] == valueName {
		for _, m := range openModules {
			if m == string(owner) {
				return true
			}
		}
	}

	return false
}

func segsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
