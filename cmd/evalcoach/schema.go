package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
	"github.com/BayramAnnakov/eval-coach/pkg/presenter"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the exported plan document",
	Long: `Print the JSON Schema that exported plans (generate --format json)
conform to. CI tooling validates exported plans against this schema.`,
	Run: func(_ *cobra.Command, _ []string) {
		out, err := plan.DocumentSchemaJSON()
		if err != nil {
			presenter.Error(err, "Failed to build plan schema")
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
