package cmd

import (
	"strings"

	"github.com/abhisek/lessonplay/internal/store"
	"github.com/abhisek/lessonplay/internal/ui/theme"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lessonplay",
	Short: "Terminal player for step-by-step animated lessons",
	Long:  "lessonplay plays lessons made of timed steps with typeset math, charts and staged reveals, and answers questions about the step on screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", -1)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LESSONPLAY_DB env var)")
	rootCmd.PersistentFlags().String("lesson-dir", "", "Directory of extra YAML lessons (overrides LESSONPLAY_LESSON_DIR)")
	rootCmd.PersistentFlags().String("palette", "", "Palette lessons open in: "+strings.Join(theme.Names(), ", ")+" (overrides LESSONPLAY_PALETTE)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file and LESSONPLAY_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
