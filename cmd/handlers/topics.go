package handlers

import (
	"fmt"

	"blogsmith/internal/topics"

	"github.com/spf13/cobra"
)

// NewTopicsCmd creates the topics command listing the available categories
func NewTopicsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List the available topic categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := topics.Default()

			if verbose {
				for _, c := range registry.Categories() {
					fmt.Printf("%s (%s)\n", c.Name, c.ID)
					fmt.Printf("  %s\n", c.Description)
					fmt.Printf("  Tags: %v\n", c.AssociatedTags)
					fmt.Println("  Example subtopics:")
					for _, s := range c.ExampleSubtopics {
						fmt.Printf("    - %s\n", s)
					}
					fmt.Println()
				}
				return nil
			}

			fmt.Println(registry.FormattedList())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show subtopics and tags for each category")

	return cmd
}
