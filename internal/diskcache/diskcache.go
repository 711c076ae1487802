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

// Package diskcache is a content-addressed, on-disk cache: a mapping from
// (cmt_path, interface_digest) to a serialized ModuleInfo. Only one process
// should write a cache entry at a time; writes are advisory-locked and use
// atomic rename.
package diskcache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
)

// schemaVersion guards against stale entries after the payload format
// changes; entries from a different schema are treated as a cache miss.
const schemaVersion uint16 = 1

// Cache maps (cmt_path, interface_digest) keys to serialized ModuleInfo
// payloads, backed by one file per key under dir.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// payload is the on-disk encoding of a cached ModuleInfo.
type payload struct {
	Schema               uint16
	Name                 string
	Dependencies         []string
	InterfaceDigest      []byte
	ImplementationDigest []byte
	FilePath             string
}

// Open creates (if needed) and returns a cache rooted at dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// DefaultPath returns the conventional cache file location:
// $XDG_CACHE_HOME/rescriptdep, falling back to ~/.cache/rescriptdep.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "rescriptdep"), nil
}

func (c *Cache) keyPath(cmtPath string, digest *cmtfile.Digest) string {
	key := cmtPath
	if digest != nil {
		key += "#" + string(digest[:])
	}
	sum := sha1Sum(key)
	return filepath.Join(c.dir, "entries", sum+".mp")
}

// Put serializes and atomically writes info under (cmtPath, digest). The
// write is advisory-locked with a sibling .lock file so only one process
// writes a given entry at a time.
func (c *Cache) Put(cmtPath string, digest *cmtfile.Digest, info cmtfile.ModuleInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.keyPath(cmtPath, digest)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	lock := flock.New(p + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	pl := toPayload(info)
	if err := msgpack.NewEncoder(f).Encode(pl); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get returns the cached ModuleInfo for (cmtPath, digest), or ok=false if
// no entry exists or the entry's schema is stale.
func (c *Cache) Get(cmtPath string, digest *cmtfile.Digest) (info cmtfile.ModuleInfo, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.keyPath(cmtPath, digest)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cmtfile.ModuleInfo{}, false, nil
		}
		return cmtfile.ModuleInfo{}, false, err
	}
	defer f.Close()

	var pl payload
	if err := msgpack.NewDecoder(f).Decode(&pl); err != nil {
		return cmtfile.ModuleInfo{}, false, err
	}
	if pl.Schema != schemaVersion {
		return cmtfile.ModuleInfo{}, false, nil
	}
	return fromPayload(pl), true, nil
}

// Clear removes the entire cache directory (--clear-cache).
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}

func toPayload(info cmtfile.ModuleInfo) payload {
	deps := make([]string, len(info.Dependencies))
	for i, d := range info.Dependencies {
		deps[i] = string(d)
	}
	pl := payload{
		Schema:       schemaVersion,
		Name:         string(info.Name),
		Dependencies: deps,
		FilePath:     info.FilePath,
	}
	if info.InterfaceDigest != nil {
		pl.InterfaceDigest = append([]byte{}, info.InterfaceDigest[:]...)
	}
	if info.ImplementationDigest != nil {
		pl.ImplementationDigest = append([]byte{}, info.ImplementationDigest[:]...)
	}
	return pl
}

func fromPayload(pl payload) cmtfile.ModuleInfo {
	deps := make([]cmtfile.ModuleName, len(pl.Dependencies))
	for i, d := range pl.Dependencies {
		deps[i] = cmtfile.ModuleName(d)
	}
	info := cmtfile.ModuleInfo{
		Name:         cmtfile.ModuleName(pl.Name),
		Dependencies: deps,
		FilePath:     pl.FilePath,
	}
	if len(pl.InterfaceDigest) == 16 {
		var d cmtfile.Digest
		copy(d[:], pl.InterfaceDigest)
		info.InterfaceDigest = &d
	}
	if len(pl.ImplementationDigest) == 16 {
		var d cmtfile.Digest
		copy(d[:], pl.ImplementationDigest)
		info.ImplementationDigest = &d
	}
	return info
}
