package cmd

import "github.com/spf13/cobra"

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Inspect cluster resources",
}

func init() {
	rootCmd.AddCommand(resourceCmd)
}
