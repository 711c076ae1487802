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

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfgpkg "bennypowers.dev/rescriptdep/cmd/config"
	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
	"bennypowers.dev/rescriptdep/internal/diskcache"
	"bennypowers.dev/rescriptdep/internal/logging"
	"bennypowers.dev/rescriptdep/internal/platform"
	"bennypowers.dev/rescriptdep/internal/render"
	"bennypowers.dev/rescriptdep/internal/walker"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rescriptdep",
	Short: "Analyze the inter-module dependency graph of a ReScript project",
	Long: `Reconstructs the inter-module dependency graph of a ReScript project
from its compiler-emitted .cmt files, and renders it as Graphviz DOT or
JSON enriched with fan-in/fan-out metrics and cycle information.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("output", "o", "", "write output to file; default stdout")
	rootCmd.Flags().StringP("format", "f", "dot", "output renderer: dot or json")
	rootCmd.Flags().StringP("module", "m", "", "focus the graph on this module")
	rootCmd.Flags().BoolP("verbose", "v", false, "emit progress to stderr")
	rootCmd.Flags().BoolP("benchmark", "b", false, "emit timing checkpoints to stderr")
	rootCmd.Flags().Bool("no-cache", false, "skip any cache interaction")
	rootCmd.Flags().String("cache-file", "", "override cache path")
	rootCmd.Flags().Bool("clear-cache", false, "delete the cache before running")
	rootCmd.Flags().BoolP("no-dependents", "n", false, "list modules with no dependents (mutually exclusive with --module)")

	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("module", rootCmd.Flags().Lookup("module"))
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("benchmark", rootCmd.Flags().Lookup("benchmark"))
	viper.BindPFlag("noCache", rootCmd.Flags().Lookup("no-cache"))
	viper.BindPFlag("cacheFile", rootCmd.Flags().Lookup("cache-file"))
	viper.BindPFlag("clearCache", rootCmd.Flags().Lookup("clear-cache"))
	viper.BindPFlag("noDependents", rootCmd.Flags().Lookup("no-dependents"))
}

func initConfig() {
	viper.AutomaticEnv()
	if viper.GetBool("BENCHMARK") {
		viper.Set("benchmark", true)
	}
	if viper.GetBool("VERBOSE") {
		viper.Set("verbose", true)
	}
}

func runRoot(c *cobra.Command, args []string) error {
	var cfg cfgpkg.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDebugEnabled(cfg.Verbose)

	module := cmtfile.Normalize(cfg.Module)
	if cfg.Module != "" && cfg.NoDependents {
		return fmt.Errorf("--module and --no-dependents are mutually exclusive")
	}
	verbose, benchmark := cfg.Verbose, cfg.Benchmark

	var benchmarkOut *os.File
	if benchmark {
		if p := os.Getenv("BENCHMARK_PATH"); p != "" {
			f, err := os.Create(p)
			if err != nil {
				logging.Warning("could not open BENCHMARK_PATH %s: %v", p, err)
			} else {
				benchmarkOut = f
				defer f.Close()
			}
		}
	}

	start := time.Now()
	checkpoint := func(label string) {
		if !benchmark {
			return
		}
		line := fmt.Sprintf("[benchmark] %s: %s\n", label, time.Since(start))
		if benchmarkOut != nil {
			fmt.Fprint(benchmarkOut, line)
			return
		}
		fmt.Fprint(os.Stderr, line)
	}

	if len(args) == 0 {
		return fmt.Errorf("no input files or directories given")
	}

	fs := platform.NewOSFileSystem()

	cache, cleanup := openCache()
	defer cleanup()

	paths := walker.Discover(fs, args)
	checkpoint("discover")
	if verbose {
		inventory := walker.Inventory(paths)
		logging.Debug("discovered %d cmt files (%d project modules)", len(paths), len(inventory))
	}

	decoder := cmtfile.NewDefaultDecoder()
	infos := make([]cmtfile.ModuleInfo, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, extractWithCache(fs, decoder, cache, p))
	}
	checkpoint("extract")

	g := depgraph.Build(infos).CreateFilteredGraph()
	checkpoint("build")

	if cfg.NoDependents {
		return writeOutput(cfg, renderNoDependents(g))
	}

	if cfg.Module != "" {
		g = g.CreateFocusedGraph(module)
	}

	out, err := renderGraph(g, cfg.Format)
	if err != nil {
		return err
	}
	checkpoint("render")

	return writeOutput(cfg, out)
}

func renderNoDependents(g *depgraph.Graph) string {
	var out string
	for _, m := range g.FindModulesWithNoDependents() {
		out += string(m) + "\n"
	}
	return out
}

func renderGraph(g *depgraph.Graph, format string) (string, error) {
	switch format {
	case "json":
		raw, err := render.JSON(g)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case "dot", "":
		return render.DOT(g), nil
	default:
		return "", fmt.Errorf("unknown format %q: must be dot or json", format)
	}
}

func writeOutput(cfg cfgpkg.Config, s string) error {
	if cfg.Output == "" {
		fmt.Print(s)
		return nil
	}
	return os.WriteFile(cfg.Output, []byte(s), 0o644)
}

// openCache resolves the cache collaborator per the --no-cache,
// --cache-file, and --clear-cache flags. cleanup is always safe to defer
// even when caching is disabled.
func openCache() (cache *diskcache.Cache, cleanup func()) {
	noop := func() {}
	if viper.GetBool("noCache") {
		return nil, noop
	}

	path := viper.GetString("cacheFile")
	if path == "" {
		var err error
		path, err = diskcache.DefaultPath()
		if err != nil {
			logging.Warning("cache disabled: %v", err)
			return nil, noop
		}
	}

	c, err := diskcache.Open(path)
	if err != nil {
		logging.Warning("cache disabled: %v", err)
		return nil, noop
	}
	if viper.GetBool("clearCache") {
		if err := c.Clear(); err != nil {
			logging.Warning("failed to clear cache: %v", err)
		}
	}
	return c, noop
}

// extractWithCache decodes cmtPath once, consults cache by
// (cmtPath, interface_digest), and writes back on miss.
func extractWithCache(fs platform.FileSystem, decoder cmtfile.Decoder, cache *diskcache.Cache, cmtPath string) cmtfile.ModuleInfo {
	info, err := decoder.Decode(fs, cmtPath)
	if err != nil {
		// Extract re-decodes, fails the same way, and synthesizes the
		// minimal ModuleInfo with its own diagnostic.
		return cmtfile.Extract(fs, decoder, cmtPath)
	}

	if cache != nil {
		if cached, ok, err := cache.Get(cmtPath, info.InterfaceDigest); err == nil && ok {
			return cached
		}
	}

	result := cmtfile.BuildModuleInfo(fs, cmtPath, info)
	if cache != nil {
		if err := cache.Put(cmtPath, info.InterfaceDigest, result); err != nil {
			logging.Warning("failed to write cache entry for %s: %v", cmtPath, err)
		}
	}
	return result
}
