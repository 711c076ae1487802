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
package cmtfile

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/rescriptdep/internal/platform"
	"bennypowers.dev/rescriptdep/internal/typedtree"
)

// Decoder reads one CMT file and yields its CmtInfo. The real on-disk CMT
// binary layout belongs to the compiler toolchain; this interface is the
// seam a real compiler-output decoder plugs into.
type Decoder interface {
	Decode(fs platform.FileSystem, path string) (CmtInfo, error)
}

// jsonFixture is the on-disk shape DefaultDecoder reads: a small,
// documented JSON rendering of the fields the core actually consumes. It
// exists so the pipeline, tests, and fixtures have a concrete format to
// round-trip without depending on a real OCaml/ReScript compiler build.
type jsonFixture struct {
	Modname         string        `json:"modname"`
	Kind            string        `json:"kind"`
	Sourcefile      string        `json:"sourcefile"`
	Imports         []jsonImport  `json:"imports"`
	InterfaceDigest string        `json:"interface_digest"`
	Implementation  *jsonStruct   `json:"implementation"`
}

type jsonImport struct {
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

type jsonStruct struct {
	Items []jsonItem `json:"items"`
}

type jsonItem struct {
	Kind   string       `json:"kind"` // "value" | "module" | "other"
	Name   string       `json:"name"`
	Line   int          `json:"line"`
	Expr   *jsonExpr    `json:"expr,omitempty"`
	Module *jsonStruct  `json:"module,omitempty"`
}

// jsonExpr mirrors typedtree.Expression's shape closely enough for
// round-tripping fixtures; Kind names are the snake_case keys of
// exprKindByName, and an unrecognized name decodes as ExprOther.
type jsonExpr struct {
	Kind       string      `json:"kind"`
	Line       int         `json:"line"`
	Ident      []string    `json:"ident,omitempty"`
	LetBinds   []jsonItem  `json:"let_binds,omitempty"`
	Body       *jsonExpr   `json:"body,omitempty"`
	Cases      []jsonExpr  `json:"cases,omitempty"`
	Args       []jsonExpr  `json:"args,omitempty"`
	Scrutinee  *jsonExpr   `json:"scrutinee,omitempty"`
	Fields     []jsonExpr  `json:"fields,omitempty"`
	BaseExpr   *jsonExpr   `json:"base_expr,omitempty"`
	RecordExpr *jsonExpr   `json:"record_expr,omitempty"`
	NewValue   *jsonExpr   `json:"new_value,omitempty"`
	Cond       *jsonExpr   `json:"cond,omitempty"`
	Then       *jsonExpr   `json:"then,omitempty"`
	Else       *jsonExpr   `json:"else,omitempty"`
	OpenModule string      `json:"open_module,omitempty"`
	LetModName string      `json:"let_module_name,omitempty"`
	LetModBody *jsonStruct `json:"let_module_body,omitempty"`
	Inner      *jsonExpr   `json:"inner,omitempty"`
}

// DefaultDecoder reads the documented JSON fixture format described above.
type DefaultDecoder struct{}

func NewDefaultDecoder() *DefaultDecoder { return &DefaultDecoder{} }

func (d *DefaultDecoder) Decode(fs platform.FileSystem, path string) (CmtInfo, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return CmtInfo{}, fmt.Errorf("reading cmt file %s: %w", path, err)
	}
	var fixture jsonFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return CmtInfo{}, fmt.Errorf("decoding cmt file %s: %w", path, err)
	}

	info := CmtInfo{
		Modname:    fixture.Modname,
		Sourcefile: fixture.Sourcefile,
	}
	switch fixture.Kind {
	case "interface":
		info.AnnotKind = AnnotationInterface
	case "packed":
		info.AnnotKind = AnnotationPacked
	case "partial":
		info.AnnotKind = AnnotationPartial
	default:
		info.AnnotKind = AnnotationImplementation
	}
	if d := fixture.InterfaceDigest; d != "" {
		dig := parseDigest(d)
		info.InterfaceDigest = &dig
	}
	for _, imp := range fixture.Imports {
		entry := Import{Name: imp.Name}
		if imp.Digest != "" {
			dig := parseDigest(imp.Digest)
			entry.Digest = &dig
		}
		info.Imports = append(info.Imports, entry)
	}
	if fixture.Implementation != nil {
		s := decodeStruct(fixture.Implementation)
		info.Implementation = &s
	}
	return info, nil
}

// parseDigest takes the first 16 bytes of the fixture's digest string
// (byte-for-byte, not hex-decoded) to fill the fixed-size Digest array.
// Real digests are opaque to the core; only equality matters.
func parseDigest(s string) Digest {
	var d Digest
	copy(d[:], s)
	return d
}

func decodeStruct(s *jsonStruct) typedtree.Structure {
	if s == nil {
		return typedtree.Structure{}
	}
	out := typedtree.Structure{Items: make([]typedtree.StructureItem, 0, len(s.Items))}
	for _, it := range s.Items {
		out.Items = append(out.Items, decodeItem(it))
	}
	return out
}

func decodeItem(it jsonItem) typedtree.StructureItem {
	switch it.Kind {
	case "value":
		expr := typedtree.Expression{Kind: typedtree.ExprOther}
		if it.Expr != nil {
			expr = decodeExpr(it.Expr)
		}
		return typedtree.StructureItem{
			Kind: typedtree.ItemValue,
			Value: &typedtree.ValueBinding{
				Pattern: it.Name,
				Line:    it.Line,
				Expr:    expr,
			},
		}
	case "module":
		body := decodeStruct(it.Module)
		return typedtree.StructureItem{
			Kind: typedtree.ItemModule,
			Module: &typedtree.ModuleBinding{
				Name: it.Name,
				Body: body,
			},
		}
	default:
		return typedtree.StructureItem{Kind: typedtree.ItemOther}
	}
}

var exprKindByName = map[string]typedtree.ExprKind{
	"ident":         typedtree.ExprIdent,
	"let":           typedtree.ExprLet,
	"function":      typedtree.ExprFunction,
	"apply":         typedtree.ExprApply,
	"match":         typedtree.ExprMatch,
	"try":           typedtree.ExprTry,
	"tuple":         typedtree.ExprTuple,
	"array":         typedtree.ExprArray,
	"construct":     typedtree.ExprConstruct,
	"variant":       typedtree.ExprVariant,
	"record":        typedtree.ExprRecord,
	"field":         typedtree.ExprField,
	"set_field":     typedtree.ExprSetField,
	"if":            typedtree.ExprIfThenElse,
	"sequence":      typedtree.ExprSequence,
	"while":         typedtree.ExprWhile,
	"for":           typedtree.ExprFor,
	"send":          typedtree.ExprSend,
	"open":          typedtree.ExprOpen,
	"let_module":    typedtree.ExprLetModule,
	"let_exception": typedtree.ExprLetException,
	"let_op":        typedtree.ExprLetOp,
	"assert":        typedtree.ExprAssert,
	"lazy":          typedtree.ExprLazy,
	"override":      typedtree.ExprOverride,
	"set_instvar":   typedtree.ExprSetInstvar,
}

func decodeExpr(e *jsonExpr) typedtree.Expression {
	if e == nil {
		return typedtree.Expression{Kind: typedtree.ExprOther}
	}
	kind, ok := exprKindByName[e.Kind]
	if !ok {
		kind = typedtree.ExprOther
	}
	out := typedtree.Expression{Kind: kind, Line: e.Line}
	if len(e.Ident) > 0 {
		out.Ident = pathFromSegments(e.Ident)
	}
	for _, b := range e.LetBinds {
		vb := typedtree.ValueBinding{Pattern: b.Name, Line: b.Line}
		if b.Expr != nil {
			vb.Expr = decodeExpr(b.Expr)
		}
		out.LetBindings = append(out.LetBindings, vb)
	}
	out.Body = decodeExprPtr(e.Body)
	for _, c := range e.Cases {
		c := c
		out.Cases = append(out.Cases, decodeExpr(&c))
	}
	for _, a := range e.Args {
		a := a
		out.Args = append(out.Args, decodeExpr(&a))
	}
	out.Scrutinee = decodeExprPtr(e.Scrutinee)
	for _, f := range e.Fields {
		f := f
		out.Fields = append(out.Fields, decodeExpr(&f))
	}
	out.BaseExpr = decodeExprPtr(e.BaseExpr)
	out.RecordExpr = decodeExprPtr(e.RecordExpr)
	out.NewValue = decodeExprPtr(e.NewValue)
	out.Cond = decodeExprPtr(e.Cond)
	out.Then = decodeExprPtr(e.Then)
	out.Else = decodeExprPtr(e.Else)
	out.OpenModule = e.OpenModule
	out.LetModuleName = e.LetModName
	if e.LetModBody != nil {
		body := decodeStruct(e.LetModBody)
		out.LetModuleBody = &body
	}
	out.Inner = decodeExprPtr(e.Inner)
	return out
}

func decodeExprPtr(e *jsonExpr) *typedtree.Expression {
	if e == nil {
		return nil
	}
	out := decodeExpr(e)
	return &out
}

// pathFromSegments rebuilds a Path from its flattened dotted segments. Only
// Pident/Pdot shapes are reconstructable this way; fixtures needing Papply
// encode the applied head directly, matching the collapsed behavior
// Path.Segments already applies on the read side.
func pathFromSegments(segs []string) typedtree.Path {
	p := typedtree.Ident(segs[0])
	for _, s := range segs[1:] {
		p = typedtree.Dot(p, s)
	}
	return p
}
