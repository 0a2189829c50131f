// Package judge is the thin LLM-as-judge invocation client. It marshals
// a rubric and a candidate output into a grading prompt, calls the judge
// model, and parses the verdict. All evaluation policy lives in the
// compiled plan; this package only executes single judgments for the
// pre-deploy tier and operator spot checks.
package judge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/BayramAnnakov/eval-coach/pkg/logger"
)

// Config configures the judge client.
type Config struct {
	APIKey   string
	BaseURL  string // optional, for OpenAI-compatible endpoints
	Model    string
	Attempts int // retry attempts for transient API failures
}

// DefaultModel is used when no judge model is configured.
const DefaultModel = "gpt-4o-mini"

const defaultAttempts = 3

// chatCompleter is the slice of the OpenAI client the judge uses.
// Narrowed to an interface so tests can grade without a network.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client invokes the judge model.
type Client struct {
	api      chatCompleter
	model    string
	attempts uint
}

// New creates a judge client from config.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("judge requires an API key (set EVALCOACH_JUDGE_API_KEY or judge_api_key in the config file)")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	return &Client{
		api:      openai.NewClientWithConfig(clientConfig),
		model:    model,
		attempts: uint(attempts),
	}, nil
}

// Rubric is a graded scoring rubric for a plan metric.
type Rubric struct {
	Metric   string
	Criteria []string
	Scale    float64
}

// Score is a graded judgment.
type Score struct {
	Value     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Verdict is a pass/fail judgment for consistency checks.
type Verdict struct {
	Pass      bool   `json:"pass"`
	Reasoning string `json:"reasoning"`
}

// Score grades a candidate output against the rubric and returns a score
// on the rubric's scale.
func (c *Client) Score(ctx context.Context, rubric Rubric, candidate string) (Score, error) {
	if len(rubric.Criteria) == 0 {
		return Score{}, errors.Errorf("rubric for metric %q has no criteria", rubric.Metric)
	}

	content, err := c.complete(ctx, buildScorePrompt(rubric, candidate))
	if err != nil {
		return Score{}, errors.Wrapf(err, "judge call failed for metric %q", rubric.Metric)
	}

	score, err := parseScore(content)
	if err != nil {
		return Score{}, errors.Wrapf(err, "judge returned an unparseable verdict for metric %q", rubric.Metric)
	}

	scale := rubric.Scale
	if scale == 0 {
		scale = 5.0
	}
	if score.Value < 0 || score.Value > scale {
		return Score{}, errors.Errorf("judge score %g outside scale 0-%g for metric %q", score.Value, scale, rubric.Metric)
	}

	return score, nil
}

// CheckConsistency runs the pass/fail InputDataConsistency judgment: did
// the candidate surface the contradictions in its sources, or silently
// reconcile them?
func (c *Client) CheckConsistency(ctx context.Context, sources []string, candidate string) (Verdict, error) {
	if len(sources) < 2 {
		return Verdict{}, errors.Errorf("consistency check needs at least 2 sources, got %d", len(sources))
	}

	content, err := c.complete(ctx, buildConsistencyPrompt(sources, candidate))
	if err != nil {
		return Verdict{}, errors.Wrap(err, "judge call failed for consistency check")
	}

	verdict, err := parseVerdict(content)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "judge returned an unparseable consistency verdict")
	}
	return verdict, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var content string

	err := retry.Do(
		func() error {
			resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: c.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
				Temperature: 0,
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return errors.New("judge returned no choices")
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(10*time.Second),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying judge call")
		}),
	)

	return content, err
}

// isRetryableError treats rate limits and server-side failures as
// transient.
func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func buildScorePrompt(rubric Rubric, candidate string) string {
	scale := rubric.Scale
	if scale == 0 {
		scale = 5.0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are grading an AI agent's output on the metric %q.\n\n", rubric.Metric)
	b.WriteString("Criteria:\n")
	for _, criterion := range rubric.Criteria {
		fmt.Fprintf(&b, "- %s\n", criterion)
	}
	fmt.Fprintf(&b, "\nScore from 1 to %g, where %g fully satisfies every criterion.\n\n", scale, scale)
	fmt.Fprintf(&b, "Output to grade:\n%s\n\n", candidate)
	fmt.Fprintf(&b, "Respond with JSON only: {\"score\": <number>, \"reasoning\": \"<one paragraph>\"}\n")
	return b.String()
}

func buildConsistencyPrompt(sources []string, candidate string) string {
	var b strings.Builder
	b.WriteString("You are checking an AI agent's output for silent reconciliation: resolving contradictory source data without disclosing the contradiction.\n\n")
	b.WriteString("Sources provided to the agent:\n")
	for i, source := range sources {
		fmt.Fprintf(&b, "Source %d: %s\n", i+1, source)
	}
	fmt.Fprintf(&b, "\nAgent output:\n%s\n\n", candidate)
	b.WriteString("Pass only if the output explicitly surfaces any contradiction between the sources. Merging, averaging, or picking one value without disclosure fails.\n\n")
	b.WriteString("Respond with JSON only: {\"pass\": <true|false>, \"reasoning\": \"<one paragraph>\"}\n")
	return b.String()
}

func parseScore(content string) (Score, error) {
	var score Score
	if err := json.Unmarshal([]byte(extractJSON(content)), &score); err != nil {
		return Score{}, errors.Wrapf(err, "invalid judge response %q", content)
	}
	return score, nil
}

func parseVerdict(content string) (Verdict, error) {
	var verdict Verdict
	if err := json.Unmarshal([]byte(extractJSON(content)), &verdict); err != nil {
		return Verdict{}, errors.Wrapf(err, "invalid judge response %q", content)
	}
	return verdict, nil
}

// extractJSON strips markdown code fences and surrounding prose that
// judge models sometimes wrap around their JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1]
		}
	}
	return content
}
