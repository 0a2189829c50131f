package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BayramAnnakov/eval-coach/pkg/presenter"
	"github.com/BayramAnnakov/eval-coach/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		info := version.Get()
		if jsonOutput {
			out, err := info.JSON()
			if err != nil {
				presenter.Error(err, "Failed to render version info")
				os.Exit(1)
			}
			fmt.Println(out)
			return
		}
		fmt.Println(info.String())
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Output version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
