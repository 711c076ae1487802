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

// Package typedtree is a Go-idiomatic rendering of a compiler's typed-tree
// artifact: structures, structure items, expressions, patterns, and the
// paths that identifier references resolve through. Each node kind is a
// flat struct with a Kind discriminator, matched with switches over that
// Kind rather than over a per-node-kind interface hierarchy.
package typedtree

// Path is an identifier reference path: Pident(name), Pdot(Path, name), or
// Papply(Path, Path). Papply rarely appears in module references;
// Path.Segments maps Papply to its applied function position.
type Path struct {
	// Kind discriminates the three path forms.
	Kind PathKind
	// Name is set for Pident and for the trailing segment of Pdot.
	Name string
	// Base is set for Pdot and Papply (the left-hand path).
	Base *Path
	// Arg is set for Papply (the right-hand path).
	Arg *Path
}

type PathKind int

const (
	PathIdent PathKind = iota
	PathDot
	PathApply
)

func Ident(name string) Path { return Path{Kind: PathIdent, Name: name} }

func Dot(base Path, name string) Path {
	b := base
	return Path{Kind: PathDot, Base: &b, Name: name}
}

func Apply(base, arg Path) Path {
	b, a := base, arg
	return Path{Kind: PathApply, Base: &b, Arg: &a}
}

// Segments flattens a path into its dotted name components: Pident(n) ->
// [n]; Pdot(p, n) -> segments(p) ++ [n]; Papply maps to the applied head,
// i.e. its Base's segments.
func (p Path) Segments() []string {
	switch p.Kind {
	case PathIdent:
		return []string{p.Name}
	case PathDot:
		segs := p.Base.Segments()
		return append(append([]string{}, segs...), p.Name)
	case PathApply:
		return p.Base.Segments()
	default:
		return nil
	}
}

// Structure is a module implementation: an ordered list of items.
type Structure struct {
	Items []StructureItem
}

// StructureItem is one of the top-level forms a structure can contain.
// Only the variants the value-usage counter must descend into carry
// payloads; everything else is represented as ItemOther and is inert.
type StructureItem struct {
	Kind ItemKind
	// Value is set for ItemValue: one binding group from a `let` (or
	// `let rec`) declaration.
	Value *ValueBinding
	// Module is set for ItemModule: a nested submodule's name and body.
	Module *ModuleBinding
}

type ItemKind int

const (
	ItemValue ItemKind = iota
	ItemModule
	ItemOther
)

// ValueBinding is one `let pattern = expr` entry. Rec groups are modeled as
// multiple ValueBinding entries sharing the same Line range.
type ValueBinding struct {
	// Pattern is the single variable name bound, when the pattern is a
	// simple `let name = ...`; empty for destructuring patterns the
	// counter does not need to resolve.
	Pattern string
	Line    int
	Expr    Expression
}

// ModuleBinding represents `module Name = struct ... end`.
type ModuleBinding struct {
	Name string
	Body Structure
}

// Expression is the recursive expression tree. Kind discriminates which
// payload field (or fields) is populated; unpopulated fields are zero
// values. This flat-struct encoding avoids a large interface hierarchy
// while still supporting exhaustive kind switches at each traversal site.
type Expression struct {
	Kind ExprKind
	Line int

	// Ident: path of a Texp_ident reference.
	Ident Path

	// Let: rec-or-not binding list plus body.
	LetBindings []ValueBinding
	Body        *Expression

	// Function: list of case bodies (patterns are not needed by the
	// counter, only the bodies they guard).
	Cases []Expression

	// Apply / Tuple / Array / Construct / Variant / Sequence / Send args.
	Args []Expression

	// Match / Try: scrutinee plus case bodies.
	Scrutinee *Expression

	// Record: field value expressions plus optional base record
	// (`extended_expression`, i.e. `{ base with ... }`).
	Fields   []Expression
	BaseExpr *Expression

	// Field / SetField: record expression plus (for SetField) the new value.
	RecordExpr *Expression
	NewValue   *Expression

	// IfThenElse: condition, then-branch, optional else-branch.
	Cond *Expression
	Then *Expression
	Else *Expression

	// While: condition plus body.
	// For: start/stop bounds plus body, reusing Cond/Then/Body slots.

	// Open: opened module name plus the body it scopes over.
	OpenModule string

	// LetModule: bound submodule name, its body structure, and the
	// continuation expression.
	LetModuleName string
	LetModuleBody *Structure

	// LetException / Assert / Lazy / Override / SetInstvar / LetOp: all
	// reduce to a single inner expression for traversal purposes.
	Inner *Expression
}

type ExprKind int

const (
	ExprIdent ExprKind = iota
	ExprLet
	ExprFunction
	ExprApply
	ExprMatch
	ExprTry
	ExprTuple
	ExprArray
	ExprConstruct
	ExprVariant
	ExprRecord
	ExprField
	ExprSetField
	ExprIfThenElse
	ExprSequence
	ExprWhile
	ExprFor
	ExprSend
	ExprOpen
	ExprLetModule
	ExprLetException
	ExprLetOp
	ExprAssert
	ExprLazy
	ExprOverride
	ExprSetInstvar
	ExprOther
)

// Children returns every immediate sub-expression. Non-expression fields
// (patterns, bound names, opened module names) are read directly by callers
// that need them.
func (e *Expression) Children() []*Expression {
	var out []*Expression
	push := func(x *Expression) {
		if x != nil {
			out = append(out, x)
		}
	}
	switch e.Kind {
	case ExprLet:
		for i := range e.LetBindings {
			push(&e.LetBindings[i].Expr)
		}
		push(e.Body)
	case ExprFunction:
		for i := range e.Cases {
			push(&e.Cases[i])
		}
	case ExprApply, ExprTuple, ExprArray, ExprConstruct, ExprVariant, ExprSequence, ExprSend:
		for i := range e.Args {
			push(&e.Args[i])
		}
	case ExprMatch, ExprTry:
		push(e.Scrutinee)
		for i := range e.Cases {
			push(&e.Cases[i])
		}
	case ExprRecord:
		for i := range e.Fields {
			push(&e.Fields[i])
		}
		push(e.BaseExpr)
	case ExprField:
		push(e.RecordExpr)
	case ExprSetField:
		push(e.RecordExpr)
		push(e.NewValue)
	case ExprIfThenElse:
		push(e.Cond)
		push(e.Then)
		push(e.Else)
	case ExprWhile:
		push(e.Cond)
		push(e.Body)
	case ExprFor:
		push(e.Cond)
		push(e.Then)
		push(e.Body)
	case ExprOpen:
		push(e.Body)
	case ExprLetModule, ExprLetException, ExprLetOp, ExprAssert, ExprLazy, ExprOverride, ExprSetInstvar:
		push(e.Inner)
	}
	return out
}
