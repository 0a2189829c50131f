package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BayramAnnakov/eval-coach/pkg/dataset"
	"github.com/BayramAnnakov/eval-coach/pkg/db"
	"github.com/BayramAnnakov/eval-coach/pkg/db/migrations"
	"github.com/BayramAnnakov/eval-coach/pkg/plan"
	"github.com/BayramAnnakov/eval-coach/pkg/presenter"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Scaffold and manage evaluation test cases",
	Long:  `Scaffold starter test cases from a compiled plan and manage them in the local evaluation store.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var datasetInitCmd = &cobra.Command{
	Use:   "init <brief>",
	Short: "Scaffold starter cases for a brief into the local store",
	Long: `Compile the brief and expand its dataset composition into starter test
cases, one per slot. Re-running refreshes existing stubs in place.

Examples:
  evalcoach dataset init agent.md
  evalcoach dataset init agent.yaml --total-cases 30`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getGenerateConfigFromFlags(cmd)
		if err := runDatasetInit(cmd.Context(), args[0], config); err != nil {
			presenter.Error(err, "Failed to scaffold dataset")
			os.Exit(1)
		}
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list [plan-name]",
	Short: "List stored test cases",
	Long: `List test cases stored for a plan. Without a plan name, lists the plans
present in the store.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		category, _ := cmd.Flags().GetString("category")
		if err := runDatasetList(cmd.Context(), args, category); err != nil {
			presenter.Error(err, "Failed to list test cases")
			os.Exit(1)
		}
	},
}

var datasetExportCmd = &cobra.Command{
	Use:   "export <plan-name>",
	Short: "Export a plan's test cases as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDatasetExport(cmd.Context(), args[0]); err != nil {
			presenter.Error(err, "Failed to export test cases")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewGenerateConfig()
	datasetInitCmd.Flags().Int("total-cases", defaults.TotalCases, "Total dataset cases (overrides the brief)")
	datasetInitCmd.Flags().Int("happy-path", defaults.HappyPath, "Happy path case count (requires the other category flags)")
	datasetInitCmd.Flags().Int("edge-case", defaults.EdgeCase, "Edge case count (requires the other category flags)")
	datasetInitCmd.Flags().Int("adversarial", defaults.Adversarial, "Adversarial case count (requires the other category flags)")

	datasetListCmd.Flags().StringP("category", "c", "", "Filter by category (happy_path, edge_case, adversarial)")

	datasetCmd.AddCommand(datasetInitCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetExportCmd)
	rootCmd.AddCommand(datasetCmd)
}

// openStore opens the local evaluation database and applies migrations.
func openStore(ctx context.Context) (*dataset.Store, *sqlx.DB, error) {
	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}

	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}

	runner := db.NewMigrationRunner(database)
	if err := runner.Run(ctx, migrations.All()); err != nil {
		database.Close()
		return nil, nil, err
	}

	return dataset.NewStore(database), database, nil
}

func runDatasetInit(ctx context.Context, briefPath string, config *GenerateConfig) error {
	p, err := compilePlan(briefPath, config)
	if err != nil {
		return err
	}

	for _, warning := range p.Warnings {
		presenter.Warning(warning)
	}

	cases, err := dataset.Scaffold(p, time.Now().UTC())
	if err != nil {
		return err
	}

	store, database, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := store.SaveCases(ctx, cases); err != nil {
		return err
	}

	dist := p.Dataset.Distribution
	presenter.Success(fmt.Sprintf("Scaffolded %d cases (%d happy path, %d edge case, %d adversarial)",
		len(cases), dist[plan.CategoryHappyPath], dist[plan.CategoryEdgeCase], dist[plan.CategoryAdversarial]))
	presenter.Info("Fill in the case stubs before running the evaluation.")
	return nil
}

func runDatasetList(ctx context.Context, args []string, category string) error {
	store, database, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 0 {
		names, err := store.PlanNames(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			presenter.Info("No test cases stored")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	cases, err := store.ListCases(ctx, args[0], plan.Category(category))
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		presenter.Info("No matching test cases")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tQUERY")
	fmt.Fprintln(tw, "----\t--------\t-----")
	for _, c := range cases {
		query := c.Inputs["query"]
		if len(query) > 60 {
			query = query[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Category, query)
	}
	return tw.Flush()
}

func runDatasetExport(ctx context.Context, planName string) error {
	store, database, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	out, err := store.ExportJSON(ctx, planName)
	if err != nil {
		return err
	}

	fmt.Print(out)
	return nil
}
