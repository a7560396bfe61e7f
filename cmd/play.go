package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <lesson-id>",
	Short: "Play a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetInt("from-step")
		if from < 1 {
			return fmt.Errorf("--from-step must be 1 or more, got %d", from)
		}
		return runApp(cmd, args[0], from-1)
	},
}

func init() {
	playCmd.Flags().Int("from-step", 1, "Step to start at (1-based)")
	playCmd.Flags().String("url", "", "Fetch the lesson from this server instead of the local catalog (overrides LESSONPLAY_LESSON_URL)")
}
