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

	"github.com/spf13/cobra"

	"bennypowers.dev/rescriptdep/internal/cmtfile"
	"bennypowers.dev/rescriptdep/internal/depgraph"
	"bennypowers.dev/rescriptdep/internal/platform"
	"bennypowers.dev/rescriptdep/internal/usage"
	"bennypowers.dev/rescriptdep/internal/walker"
)

var usageCmd = &cobra.Command{
	Use:   "usage files_or_dirs...",
	Short: "Count references to a specific value binding across dependent modules",
	Long: `Locates a let binding by (module, value, line) in its owner module's
typed tree and counts lexically correct references to it across every
module that depends on the owner, per the typed-tree value-usage counter.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().String("module", "", "owner module name")
	usageCmd.Flags().String("value", "", "value (binding) name")
	usageCmd.Flags().Int("line", 0, "source line of the binding")
	usageCmd.MarkFlagRequired("module")
	usageCmd.MarkFlagRequired("value")
	usageCmd.MarkFlagRequired("line")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(c *cobra.Command, args []string) error {
	owner, _ := c.Flags().GetString("module")
	valueName, _ := c.Flags().GetString("value")
	line, _ := c.Flags().GetInt("line")

	fs := platform.NewOSFileSystem()
	paths := walker.Discover(fs, args)
	decoder := cmtfile.NewDefaultDecoder()

	infos := make([]cmtfile.ModuleInfo, 0, len(paths))
	cmtPaths := make(map[cmtfile.ModuleName]string, len(paths))
	for _, p := range paths {
		info := cmtfile.Extract(fs, decoder, p)
		infos = append(infos, info)
		cmtPaths[info.Name] = p
	}

	g := depgraph.Build(infos)
	results := usage.Count(fs, decoder, cmtPaths, g, cmtfile.Normalize(owner), valueName, line)
	for _, r := range results {
		fmt.Printf("%s\t%d\n", r.Module, r.Count)
	}
	return nil
}
