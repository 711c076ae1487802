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

import "bennypowers.dev/rescriptdep/internal/typedtree"

// Import is one entry of a CmtInfo's import list: a recorded module name
// and, optionally, the digest the compiler computed for it at the time of
// recording.
type Import struct {
	Name   string
	Digest *Digest
}

// Annotation discriminates the four shapes a CMT's payload can take. Only
// Implementation carries a typed tree the core traverses; the others are
// recognized so the decoder's output can be round-tripped, but the
// extractor and usage counter treat them as "no implementation AST".
type AnnotationKind int

const (
	AnnotationImplementation AnnotationKind = iota
	AnnotationInterface
	AnnotationPacked
	AnnotationPartial
)

// CmtInfo is the decoder-supplied result for one CMT file. The compiler
// records more in the artifact (value dependency pairs, per-binder
// annotations); only the fields the pipeline consumes are modeled here.
type CmtInfo struct {
	Modname         string
	AnnotKind       AnnotationKind
	Implementation  *typedtree.Structure
	Sourcefile      string
	Imports         []Import
	InterfaceDigest *Digest
}
