package judge

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
	requests  []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return openai.ChatCompletionResponse{}, f.errs[idx]
	}
	content := ""
	if idx < len(f.responses) {
		content = f.responses[idx]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func testClient(fake *fakeCompleter) *Client {
	return &Client{api: fake, model: DefaultModel, attempts: 3}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	c, err := New(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}

func TestScore(t *testing.T) {
	fake := &fakeCompleter{responses: []string{`{"score": 4.5, "reasoning": "well grounded"}`}}
	c := testClient(fake)

	score, err := c.Score(context.Background(), Rubric{
		Metric:   "Groundedness",
		Criteria: []string{"Every claim cites a source"},
		Scale:    5.0,
	}, "The report says X [source 1].")
	require.NoError(t, err)

	assert.Equal(t, 4.5, score.Value)
	assert.Equal(t, "well grounded", score.Reasoning)

	prompt := fake.requests[0].Messages[0].Content
	assert.Contains(t, prompt, "Groundedness")
	assert.Contains(t, prompt, "Every claim cites a source")
	assert.Equal(t, float32(0), fake.requests[0].Temperature)
}

func TestScoreRejectsOutOfScale(t *testing.T) {
	fake := &fakeCompleter{responses: []string{`{"score": 7, "reasoning": "r"}`}}
	c := testClient(fake)

	_, err := c.Score(context.Background(), Rubric{Metric: "m", Criteria: []string{"c"}, Scale: 5}, "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside scale")
}

func TestScoreRequiresCriteria(t *testing.T) {
	_, err := testClient(&fakeCompleter{}).Score(context.Background(), Rubric{Metric: "m"}, "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no criteria")
}

func TestScoreParsesFencedJSON(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"```json\n{\"score\": 3, \"reasoning\": \"ok\"}\n```"}}
	c := testClient(fake)

	score, err := c.Score(context.Background(), Rubric{Metric: "m", Criteria: []string{"c"}}, "out")
	require.NoError(t, err)
	assert.Equal(t, 3.0, score.Value)
}

func TestCheckConsistency(t *testing.T) {
	fake := &fakeCompleter{responses: []string{`{"pass": false, "reasoning": "averaged the two figures without comment"}`}}
	c := testClient(fake)

	verdict, err := c.CheckConsistency(context.Background(),
		[]string{"Q3 revenue was $12M", "Q3 revenue was $4M"},
		"Q3 revenue was roughly $8M.")
	require.NoError(t, err)

	assert.False(t, verdict.Pass)
	assert.Contains(t, verdict.Reasoning, "averaged")

	prompt := fake.requests[0].Messages[0].Content
	assert.Contains(t, prompt, "silent reconciliation")
	assert.Contains(t, prompt, "Source 1: Q3 revenue was $12M")
}

func TestCheckConsistencyNeedsTwoSources(t *testing.T) {
	_, err := testClient(&fakeCompleter{}).CheckConsistency(context.Background(), []string{"only one"}, "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 sources")
}

func TestCompleteRetriesOnRateLimit(t *testing.T) {
	rateLimited := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}
	fake := &fakeCompleter{
		errs:      []error{rateLimited, rateLimited, nil},
		responses: []string{"", "", `{"score": 4, "reasoning": "r"}`},
	}
	c := testClient(fake)

	score, err := c.Score(context.Background(), Rubric{Metric: "m", Criteria: []string{"c"}}, "out")
	require.NoError(t, err)
	assert.Equal(t, 4.0, score.Value)
	assert.Equal(t, 3, fake.calls)
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	badRequest := &openai.APIError{HTTPStatusCode: http.StatusBadRequest}
	fake := &fakeCompleter{errs: []error{badRequest}}
	c := testClient(fake)

	_, err := c.Score(context.Background(), Rubric{Metric: "m", Criteria: []string{"c"}}, "out")
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&openai.APIError{HTTPStatusCode: 429}))
	assert.True(t, isRetryableError(&openai.APIError{HTTPStatusCode: 503}))
	assert.False(t, isRetryableError(&openai.APIError{HTTPStatusCode: 401}))
	assert.True(t, isRetryableError(&openai.RequestError{HTTPStatusCode: 500}))
	assert.False(t, isRetryableError(errors.New("plain error")))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`Here you go: {"a":1}`))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}
