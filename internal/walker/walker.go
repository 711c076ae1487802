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

// Package walker expands user-supplied files and directories into the set
// of CMT paths to process, and derives the project module inventory from
// them.
package walker

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/logging"
	"bennypowers.dev/rescriptdep/internal/platform"
)

const cmtSuffix = ".cmt"

// Discover expands the given files/directories into a deduplicated,
// sorted list of CMT paths. Non-existent or unreadable paths emit a
// warning and are skipped, never fatal. Directories are walked
// recursively, following regular files only; symlink cycles are avoided by
// tracking visited canonical directories.
func Discover(fsys platform.FileSystem, pathsOrDirs []string) []string {
	seen := make(map[string]struct{})
	visitedDirs := make(map[string]struct{})
	var out []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, p := range pathsOrDirs {
		info, err := fsys.Stat(p)
		if err != nil {
			logging.Warning("skipping unreadable path %s: %v", p, err)
			continue
		}
		if !info.IsDir() {
			if strings.HasSuffix(p, cmtSuffix) {
				add(p)
			}
			continue
		}
		walkDir(fsys, p, visitedDirs, add)
	}

	sort.Strings(out)
	return out
}

func walkDir(fsys platform.FileSystem, dir string, visitedDirs map[string]struct{}, add func(string)) {
	canonical := filepath.Clean(dir)
	if _, ok := visitedDirs[canonical]; ok {
		return
	}
	visitedDirs[canonical] = struct{}{}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		logging.Warning("skipping unreadable directory %s: %v", dir, err)
		return
	}

	sorted := make([]fs.DirEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	for _, entry := range sorted {
		childPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			walkDir(fsys, childPath, visitedDirs, add)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			// Regular files only; symlinks to files are not followed to
			// avoid needing to resolve and re-dedupe targets.
			continue
		}
		if strings.HasSuffix(entry.Name(), cmtSuffix) {
			add(childPath)
		}
	}
}

// Inventory derives the set of normalized project module names from a list
// of discovered CMT paths.
func Inventory(paths []string) map[cmtfile.ModuleName]struct{} {
	inventory := make(map[cmtfile.ModuleName]struct{}, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		inventory[cmtfile.Normalize(base)] = struct{}{}
	}
	return inventory
}
