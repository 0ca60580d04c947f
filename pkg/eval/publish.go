package eval

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
)

// Publisher files eval regressions as GitHub issues so they show up in the
// team's normal triage flow.
type Publisher struct {
	client *gh.Client
	owner  string
	repo   string
}

// NewPublisher creates a publisher for repo in "owner/name" format.
func NewPublisher(token, repo string) (*Publisher, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repo must be in owner/name format, got %q", repo)
	}

	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	return &Publisher{
		client: gh.NewClient(httpClient),
		owner:  owner,
		repo:   name,
	}, nil
}

// tokenTransport adds Bearer token auth to HTTP requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// PublishRegression opens an issue describing the regressed categories of a
// run compared to the named baseline. Returns the issue URL. Call only when
// Regressions() is non-empty; publishing a clean diff is a caller bug.
func (p *Publisher) PublishRegression(ctx context.Context, baseline string, summary Summary, changes []Change) (string, error) {
	regressed := Regressions(changes)
	if len(regressed) == 0 {
		return "", fmt.Errorf("no regressions to publish")
	}

	title := fmt.Sprintf("Eval regression vs baseline %q: %d categories down", baseline, len(regressed))

	var b strings.Builder
	fmt.Fprintf(&b, "Eval run on %s regressed against baseline `%s`.\n\n", time.Now().Format("2006-01-02"), baseline)
	fmt.Fprintf(&b, "Overall: %d/%d passed (%.1f%%), %d errors.\n\n", summary.Passed, summary.Total, summary.PassRate*100, summary.Errors)
	b.WriteString("| Category | Baseline | Current |\n|---|---|---|\n")
	for _, c := range regressed {
		fmt.Fprintf(&b, "| %s | %.0f%% | %.0f%% |\n", c.Category, c.Before*100, c.After*100)
	}
	body := b.String()

	labels := []string{"eval-regression"}
	issue, _, err := p.client.Issues.Create(ctx, p.owner, p.repo, &gh.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &labels,
	})
	if err != nil {
		return "", fmt.Errorf("create regression issue: %w", err)
	}
	return issue.GetHTMLURL(), nil
}
