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
	"path/filepath"
	"strings"

	"bennypowers.dev/rescriptdep/internal/logging"
	"bennypowers.dev/rescriptdep/internal/platform"
)

// sourceSuffixes are the source file extensions path resolution tries, in
// order.
var sourceSuffixes = []string{".res", ".re", ".ml"}

// Extract produces a ModuleInfo from a CMT path. Decode failures never
// abort the run: they log a diagnostic and synthesize a minimal ModuleInfo,
// since mixed-toolchain projects commonly contain a few unreadable CMTs.
func Extract(fs platform.FileSystem, decoder Decoder, path string) ModuleInfo {
	info, err := decoder.Decode(fs, path)
	if err != nil {
		logging.Warning("failed to decode %s: %v", path, err)
		base := filepath.Base(path)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		return ModuleInfo{
			Name:     Normalize(base),
			FilePath: path,
		}
	}
	return BuildModuleInfo(fs, path, info)
}

// BuildModuleInfo applies the filtering and path-resolution steps to an
// already-decoded CmtInfo, so callers that need the interface digest before
// deciding whether to re-extract (the disk cache) can decode once and reuse
// the result.
func BuildModuleInfo(fs platform.FileSystem, path string, info CmtInfo) ModuleInfo {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	moduleName := Normalize(base)

	filePath := resolveFilePath(fs, path, base)
	deps := filterImports(fs, info.Imports, moduleName, filePath, path)

	return ModuleInfo{
		Name:            moduleName,
		Dependencies:    deps,
		InterfaceDigest: info.InterfaceDigest,
		FilePath:        filePath,
	}
}

// filterImports drops imports with invalid names, stdlib/internal modules,
// and self-references.
// When a resolved source file is available, imports the source never
// mentions as a module token are dropped too. The compiler records imports
// for modules a file only touches through its interface, so pruning by
// mention reduces false edges; the check over-approximates (any standalone
// occurrence of the name counts), never dropping a genuinely referenced
// module.
func filterImports(fs platform.FileSystem, imports []Import, self ModuleName, sourcePath, cmtPath string) []ModuleName {
	var source string
	if sourcePath != cmtPath {
		if raw, err := fs.ReadFile(sourcePath); err == nil {
			source = string(raw)
		}
	}

	var out []ModuleName
	for _, imp := range imports {
		if !IsValid(imp.Name) {
			continue
		}
		if IsStdlib(imp.Name) {
			continue
		}
		normalized := Normalize(imp.Name)
		if normalized == self {
			continue
		}
		if source != "" && !sourceMentions(source, imp.Name) {
			continue
		}
		out = append(out, normalized)
	}
	return SortDeduplicate(out, self)
}

// sourceMentions reports whether name occurs in source as a standalone
// module token, which subsumes all the textual-use shapes a module
// reference can take (`open M`, `M.`, `include M`, `module type of M`,
// `module X = M`, functor and tuple arguments).
func sourceMentions(source, name string) bool {
	idx := 0
	for {
		rel := strings.Index(source[idx:], name)
		if rel < 0 {
			return false
		}
		pos := idx + rel
		before := pos == 0 || !isIdentChar(source[pos-1])
		after := pos+len(name) >= len(source) || !isIdentChar(source[pos+len(name)])
		if before && after {
			return true
		}
		idx = pos + 1
	}
}

func isIdentChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '\''
}

// resolveFilePath searches, in order: the CMT's own directory, the
// lib/bs -> project-root src/ transposition, and sibling src/ directories.
// It falls back to the CMT path itself when nothing is found, so downstream
// consumers always have some path.
func resolveFilePath(fs platform.FileSystem, cmtPath, base string) string {
	dir := filepath.Dir(cmtPath)
	candidates := []string{dir}

	// lib/bs/.../src -> src transposition: a ReScript build typically
	// mirrors src/ under lib/bs/. Walking up from the cmt's directory and
	// substituting the first "lib/bs" segment with the project root finds
	// the original source tree.
	if idx := strings.Index(dir, string(filepath.Separator)+"lib"+string(filepath.Separator)+"bs"); idx >= 0 {
		root := dir[:idx]
		candidates = append(candidates, filepath.Join(root, "src"))
	}
	candidates = append(candidates, filepath.Join(dir, "src"), filepath.Join(filepath.Dir(dir), "src"))

	for _, candidateDir := range candidates {
		for _, suffix := range sourceSuffixes {
			candidate := filepath.Join(candidateDir, base+suffix)
			if fs.Exists(candidate) {
				return candidate
			}
		}
	}
	return cmtPath
}
