package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BayramAnnakov/eval-coach/pkg/judge"
	"github.com/BayramAnnakov/eval-coach/pkg/presenter"
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Run spot-check LLM judge calls",
	Long: `Run single LLM-as-judge calls against an agent output. These are the
operator spot checks backing the pre-deploy tier; the full evaluation run
belongs to the CI integration, not this CLI.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var judgeScoreCmd = &cobra.Command{
	Use:   "score <output-file>",
	Short: "Grade an agent output against a rubric",
	Long: `Grade an agent output file against rubric criteria on a 1-5 scale.

Examples:
  evalcoach judge score report.txt --metric Groundedness \
    --criterion "Every claim cites a source" \
    --criterion "No fabricated references"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		metric, _ := cmd.Flags().GetString("metric")
		criteria, _ := cmd.Flags().GetStringArray("criterion")
		if err := runJudgeScore(cmd.Context(), args[0], metric, criteria); err != nil {
			presenter.Error(err, "Judge call failed")
			os.Exit(1)
		}
	},
}

var judgeConsistencyCmd = &cobra.Command{
	Use:   "consistency <output-file>",
	Short: "Check an agent output for silent reconciliation",
	Long: `Run the pass/fail InputDataConsistency check: given the sources the
agent saw, did its output surface their contradictions?

Examples:
  evalcoach judge consistency report.txt \
    --source "Q3 revenue was $12M" \
    --source "Q3 revenue was $4M"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sources, _ := cmd.Flags().GetStringArray("source")
		if err := runJudgeConsistency(cmd.Context(), args[0], sources); err != nil {
			presenter.Error(err, "Consistency check failed")
			os.Exit(1)
		}
	},
}

func init() {
	judgeScoreCmd.Flags().StringP("metric", "m", "", "Plan metric the rubric belongs to")
	judgeScoreCmd.Flags().StringArray("criterion", nil, "Rubric criterion (repeatable)")
	judgeScoreCmd.MarkFlagRequired("metric")

	judgeConsistencyCmd.Flags().StringArray("source", nil, "Source text the agent saw (repeatable, at least two)")

	judgeCmd.AddCommand(judgeScoreCmd)
	judgeCmd.AddCommand(judgeConsistencyCmd)
	rootCmd.AddCommand(judgeCmd)
}

func newJudgeClient() (*judge.Client, error) {
	return judge.New(judge.Config{
		APIKey:   viper.GetString("judge_api_key"),
		BaseURL:  viper.GetString("judge_base_url"),
		Model:    viper.GetString("judge_model"),
		Attempts: viper.GetInt("judge_attempts"),
	})
}

func readCandidate(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read agent output %q", path)
	}
	return string(content), nil
}

func runJudgeScore(ctx context.Context, outputPath, metric string, criteria []string) error {
	candidate, err := readCandidate(outputPath)
	if err != nil {
		return err
	}

	client, err := newJudgeClient()
	if err != nil {
		return err
	}

	score, err := client.Score(ctx, judge.Rubric{
		Metric:   metric,
		Criteria: criteria,
		Scale:    5.0,
	}, candidate)
	if err != nil {
		return err
	}

	presenter.Section(fmt.Sprintf("%s: %.1f/5.0", metric, score.Value))
	presenter.Info(score.Reasoning)
	return nil
}

func runJudgeConsistency(ctx context.Context, outputPath string, sources []string) error {
	candidate, err := readCandidate(outputPath)
	if err != nil {
		return err
	}

	client, err := newJudgeClient()
	if err != nil {
		return err
	}

	verdict, err := client.CheckConsistency(ctx, sources, candidate)
	if err != nil {
		return err
	}

	if verdict.Pass {
		presenter.Success("PASS: contradictions are surfaced")
	} else {
		presenter.Error(errors.New(verdict.Reasoning), "FAIL: silent reconciliation detected")
		os.Exit(1)
	}
	presenter.Info(verdict.Reasoning)
	return nil
}
