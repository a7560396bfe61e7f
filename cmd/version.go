package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X github.com/abhisek/lessonplay/cmd.version=v1.2.3".
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lessonplay version",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), "lessonplay", resolveVersion(version, info))
		if !verbose {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if rev, dirty := revision(info); rev != "" {
			if dirty {
				rev += " (modified)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revision: %s\n", rev)
		}
	},
}

// resolveVersion prefers the linker-set version, then the module version
// recorded by go install.
func resolveVersion(linked string, info *debug.BuildInfo) string {
	if linked != "" {
		return linked
	}
	if info != nil && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

func revision(info *debug.BuildInfo) (string, bool) {
	if info == nil {
		return "", false
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return rev, dirty
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Also print the Go version and VCS revision")
}
