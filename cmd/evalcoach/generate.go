package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
	"github.com/BayramAnnakov/eval-coach/pkg/presenter"
	"github.com/BayramAnnakov/eval-coach/pkg/profile"
	"github.com/BayramAnnakov/eval-coach/pkg/render"
)

type GenerateConfig struct {
	Format       string
	Output       string
	TotalCases   int
	HappyPath    int
	EdgeCase     int
	Adversarial  int
	LatencyBound time.Duration
}

func NewGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		Format:      "markdown",
		HappyPath:   -1,
		EdgeCase:    -1,
		Adversarial: -1,
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate <brief>",
	Short: "Compile an agent brief into an evaluation plan",
	Long: `Compile an agent brief into a complete evaluation plan.

The brief is a markdown file with YAML frontmatter (the body becomes
notes in the report) or a plain YAML file. Flags override the brief's
dataset settings; when all three category flags are given they form an
explicit distribution override.

Examples:
  evalcoach generate agent.md
  evalcoach generate agent.md --format json --output plan.json
  evalcoach generate agent.yaml --total-cases 30
  evalcoach generate agent.yaml --happy-path 15 --edge-case 10 --adversarial 5`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getGenerateConfigFromFlags(cmd)
		if err := runGenerate(args[0], config); err != nil {
			presenter.Error(err, "Failed to generate evaluation plan")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewGenerateConfig()
	generateCmd.Flags().StringP("format", "f", defaults.Format, "Output format (markdown or json)")
	generateCmd.Flags().StringP("output", "o", defaults.Output, "Write the plan to a file instead of stdout")
	generateCmd.Flags().Int("total-cases", defaults.TotalCases, "Total dataset cases (overrides the brief)")
	generateCmd.Flags().Int("happy-path", defaults.HappyPath, "Happy path case count (requires the other category flags)")
	generateCmd.Flags().Int("edge-case", defaults.EdgeCase, "Edge case count (requires the other category flags)")
	generateCmd.Flags().Int("adversarial", defaults.Adversarial, "Adversarial case count (requires the other category flags)")
	generateCmd.Flags().Duration("latency-bound", defaults.LatencyBound, "p95 latency bound for the mandatory latency metric")
	rootCmd.AddCommand(generateCmd)
}

func getGenerateConfigFromFlags(cmd *cobra.Command) *GenerateConfig {
	config := NewGenerateConfig()
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if total, err := cmd.Flags().GetInt("total-cases"); err == nil {
		config.TotalCases = total
	}
	if happy, err := cmd.Flags().GetInt("happy-path"); err == nil {
		config.HappyPath = happy
	}
	if edge, err := cmd.Flags().GetInt("edge-case"); err == nil {
		config.EdgeCase = edge
	}
	if adversarial, err := cmd.Flags().GetInt("adversarial"); err == nil {
		config.Adversarial = adversarial
	}
	if bound, err := cmd.Flags().GetDuration("latency-bound"); err == nil {
		config.LatencyBound = bound
	}
	return config
}

// compilePlan loads a brief and compiles it with flag overrides layered
// on top of the brief's own overrides.
func compilePlan(briefPath string, config *GenerateConfig) (*plan.EvaluationPlan, error) {
	brief, err := profile.Load(briefPath)
	if err != nil {
		return nil, err
	}

	overrides := brief.Overrides
	if overrides == nil {
		overrides = &plan.Overrides{}
	}
	if config.TotalCases > 0 {
		overrides.TotalCases = config.TotalCases
	}
	if config.LatencyBound > 0 {
		overrides.LatencyBound = config.LatencyBound
	}

	categoryFlags := []int{config.HappyPath, config.EdgeCase, config.Adversarial}
	set := 0
	for _, v := range categoryFlags {
		if v >= 0 {
			set++
		}
	}
	switch set {
	case 0:
	case 3:
		overrides.Distribution = map[plan.Category]int{
			plan.CategoryHappyPath:   config.HappyPath,
			plan.CategoryEdgeCase:    config.EdgeCase,
			plan.CategoryAdversarial: config.Adversarial,
		}
		if config.TotalCases == 0 {
			overrides.TotalCases = config.HappyPath + config.EdgeCase + config.Adversarial
		}
	default:
		return nil, errors.New("distribution flags are all-or-nothing: pass --happy-path, --edge-case, and --adversarial together")
	}

	return plan.Generate(brief.Profile, overrides)
}

func runGenerate(briefPath string, config *GenerateConfig) error {
	p, err := compilePlan(briefPath, config)
	if err != nil {
		return err
	}

	for _, warning := range p.Warnings {
		presenter.Warning(warning)
	}

	var out string
	switch config.Format {
	case "markdown", "md":
		out, err = render.Markdown(p)
	case "json":
		out, err = render.JSON(p)
	default:
		return errors.Errorf("unknown format %q: expected markdown or json", config.Format)
	}
	if err != nil {
		return err
	}

	if config.Output != "" {
		if err := os.WriteFile(config.Output, []byte(out), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write plan to %q", config.Output)
		}
		presenter.Success(fmt.Sprintf("Evaluation plan written to %s", config.Output))
		return nil
	}

	fmt.Print(out)
	return nil
}
