package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agentforge/agentforge/pkg/events"
)

const (
	defaultConcurrency = 4
	caseTimeout        = 45 * time.Second
	maxErrorBody       = 200
)

// Runner executes eval cases against a live chat endpoint.
type Runner struct {
	baseURL     string
	token       string
	concurrency int
	httpClient  *http.Client
	judge       *Judge
	bus         events.EventBus
	log         *logrus.Entry
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency caps in-flight cases.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithJudge enables llm_judge checks.
func WithJudge(j *Judge) Option {
	return func(r *Runner) { r.judge = j }
}

// WithBus publishes per-case events.
func WithBus(bus events.EventBus) Option {
	return func(r *Runner) { r.bus = bus }
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) { r.httpClient = c }
}

// NewRunner creates a runner targeting the chat API at baseURL, authenticating
// with the given bearer token.
func NewRunner(baseURL, token string, logger *logrus.Logger, opts ...Option) *Runner {
	r := &Runner{
		baseURL:     baseURL,
		token:       token,
		concurrency: defaultConcurrency,
		httpClient:  &http.Client{Timeout: caseTimeout},
		log:         logger.WithField("component", "eval"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// chatResponse mirrors the chat API's response body.
type chatResponse struct {
	Content string `json:"content"`
	Metrics struct {
		ToolsUsed []string `json:"tools_used"`
	} `json:"metrics"`
}

// Run executes all cases with bounded concurrency and returns the scored
// report. Cases are independent; ordering between them does not matter, and
// each result lands in its case's slot.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Report, error) {
	startedAt := time.Now()
	results := make([]CaseResult, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			results[i] = r.runCase(ctx, c)
			r.publishCaseEvent(results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, StartedAt: startedAt}
	r.log.WithFields(logrus.Fields{
		"total":  report.Total(),
		"passed": report.Passed(),
		"failed": report.Failed(),
	}).Info("eval run complete")
	if r.bus != nil {
		r.bus.Publish(events.NewEvent(events.EventEvalDone, map[string]any{
			"total":  report.Total(),
			"passed": report.Passed(),
			"failed": report.Failed(),
		}))
	}
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) CaseResult {
	// Empty input only matters to cases that test empty-input handling.
	if c.Input == "" && !hasCheck(c, CheckHandlesEmptyInput) {
		return CaseResult{CaseID: c.ID, Category: c.Category, Source: c.Source, Passed: true}
	}

	start := time.Now()
	output, toolsUsed, err := r.chat(ctx, c.Input)
	latency := float64(time.Since(start).Milliseconds())

	transcript := Transcript{
		Input:         c.Input,
		Output:        output,
		ToolsCalled:   toolsUsed,
		ExpectedTools: c.ExpectedTools,
	}
	if err != nil {
		transcript.Err = err.Error()
		if c.Input != "" {
			// A transport failure on a normal case is an error, not a score.
			return CaseResult{
				CaseID: c.ID, Category: c.Category, Source: c.Source,
				Description: c.Description, LatencyMS: latency, Error: err.Error(),
			}
		}
	}

	result := Evaluate(c, transcript)
	result.LatencyMS = latency

	if hasCheck(c, CheckLLMJudge) {
		result.Checks = append(result.Checks, r.runJudge(ctx, c, output))
		for _, check := range result.Checks {
			if !check.Passed {
				result.Passed = false
				break
			}
		}
	}
	return result
}

// chat posts one message to the agent and returns its reply and tool trail.
func (r *Runner) chat(ctx context.Context, message string) (string, []string, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, fmt.Errorf("decode chat response: %w", err)
	}
	return parsed.Content, parsed.Metrics.ToolsUsed, nil
}

func (r *Runner) runJudge(ctx context.Context, c Case, output string) CheckOutcome {
	if r.judge == nil {
		return CheckOutcome{Name: CheckLLMJudge, Passed: true, Reason: "llm_judge: skipped (no judge configured)"}
	}
	passed, reason, err := r.judge.Score(ctx, c.Input, output)
	if err != nil {
		return CheckOutcome{Name: CheckLLMJudge, Passed: false, Reason: fmt.Sprintf("Check error: %v", err)}
	}
	return CheckOutcome{Name: CheckLLMJudge, Passed: passed, Reason: reason}
}

func (r *Runner) publishCaseEvent(result CaseResult) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.NewEvent(events.EventEvalCase, map[string]any{
		"case_id":  result.CaseID,
		"category": result.Category,
		"passed":   result.Passed,
	}))
}
