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

// Package config is the viper-bound configuration shape for the CLI:
// output format, cache behavior, and progress/benchmark toggles.
package config

// Config is the process-wide configuration, threaded explicitly into the
// pipeline rather than held as ambient global state.
type Config struct {
	// Output file path; empty means stdout.
	Output string `mapstructure:"output" yaml:"output"`
	// Format selects the renderer: "dot" or "json".
	Format string `mapstructure:"format" yaml:"format"`
	// Module, when non-empty, focuses the graph on this module name.
	Module string `mapstructure:"module" yaml:"module"`
	// NoDependents lists modules with no dependents instead of rendering.
	NoDependents bool `mapstructure:"noDependents" yaml:"noDependents"`
	// Verbose emits progress to stderr.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	// Benchmark emits timing checkpoints to stderr.
	Benchmark bool `mapstructure:"benchmark" yaml:"benchmark"`
	// NoCache skips any cache interaction entirely.
	NoCache bool `mapstructure:"noCache" yaml:"noCache"`
	// CacheFile overrides the cache directory path.
	CacheFile string `mapstructure:"cacheFile" yaml:"cacheFile"`
	// ClearCache deletes the cache before the run proceeds.
	ClearCache bool `mapstructure:"clearCache" yaml:"clearCache"`
}

func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
