package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the lessons in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		lessons := e.catalog.List()
		verbose, _ := cmd.Flags().GetBool("steps")

		fmt.Printf("%-24s  %-40s  %5s  %8s\n", "ID", "Title", "Steps", "Length")
		fmt.Println(strings.Repeat("─", 84))

		for _, l := range lessons {
			fmt.Printf("%-24s  %-40s  %5d  %8s\n",
				l.ID, truncate(l.Title, 40), l.StepCount(),
				l.TotalDuration().Std().Round(time.Second))
			if !verbose {
				continue
			}
			for i, s := range l.Steps {
				extras := ""
				if n := len(s.Charts); n > 0 {
					extras += fmt.Sprintf("  %d chart(s)", n)
				}
				if n := len(s.Animations); n > 0 {
					extras += fmt.Sprintf("  %d animation(s)", n)
				}
				fmt.Printf("    %2d. %-36s %6s%s\n", i+1, truncate(s.Title, 36), s.Duration.Std(), extras)
			}
		}

		fmt.Printf("\n%d lessons\n", len(lessons))
		return nil
	},
}

func init() {
	lessonsCmd.Flags().Bool("steps", false, "Also list each lesson's steps")
}
