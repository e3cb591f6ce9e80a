package github

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v57/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

const defaultHost = "github.com"

// Client bundles the REST and GraphQL transports for one forge host. All
// calls ride the same authenticated, logging HTTP client; methods wrap one
// endpoint each and never classify errors themselves.
type Client struct {
	rest    *github.Client
	graphql *githubv4.Client
	http    *http.Client
	host    string
}

// NewClient builds the transports for host, which may name a self-hosted
// instance. An empty host targets the public API.
func NewClient(token, host string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   common.NewLoggingTransport(nil),
		},
	}

	rest := github.NewClient(httpClient)
	var graphql *githubv4.Client

	if host == "" || host == defaultHost {
		graphql = githubv4.NewClient(httpClient)
	} else {
		var err error
		rest, err = rest.WithEnterpriseURLs(
			fmt.Sprintf("https://%s/api/v3/", host),
			fmt.Sprintf("https://%s/api/uploads/", host),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise host: %w", err)
		}
		graphql = githubv4.NewEnterpriseClient(fmt.Sprintf("https://%s/api/graphql", host), httpClient)
	}

	return &Client{
		rest:    rest,
		graphql: graphql,
		http:    httpClient,
		host:    host,
	}, nil
}

func (c *Client) GetPullRequest(ctx context.Context, id domain.PRIdentity) (*github.PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Get(ctx, id.Owner, id.Repo, id.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

func (c *Client) GetDiff(ctx context.Context, id domain.PRIdentity) (string, error) {
	diff, _, err := c.rest.PullRequests.GetRaw(ctx, id.Owner, id.Repo, id.Number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get diff: %w", err)
	}
	return diff, nil
}

func (c *Client) GetCommitDiff(ctx context.Context, id domain.PRIdentity, sha string) (string, error) {
	diff, _, err := c.rest.Repositories.GetCommitRaw(ctx, id.Owner, id.Repo, sha, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get commit diff: %w", err)
	}
	return diff, nil
}

func (c *Client) ListIssueLabels(ctx context.Context, id domain.PRIdentity) ([]*github.Label, error) {
	opts := &github.ListOptions{PerPage: 100}
	labels, _, err := c.rest.Issues.ListLabelsByIssue(ctx, id.Owner, id.Repo, id.Number, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// ReplaceLabels issues the replace call unconditionally; an empty set clears
// every label rather than skipping the request.
func (c *Client) ReplaceLabels(ctx context.Context, id domain.PRIdentity, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	_, _, err := c.rest.Issues.ReplaceLabelsForIssue(ctx, id.Owner, id.Repo, id.Number, labels)
	if err != nil {
		return fmt.Errorf("failed to replace labels: %w", err)
	}
	return nil
}

func (c *Client) ListAssignees(ctx context.Context, id domain.PRIdentity) ([]*github.User, error) {
	opts := &github.ListOptions{PerPage: 100}
	users, _, err := c.rest.Issues.ListAssignees(ctx, id.Owner, id.Repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	return users, nil
}

func (c *Client) AddAssignees(ctx context.Context, id domain.PRIdentity, logins []string) error {
	_, _, err := c.rest.Issues.AddAssignees(ctx, id.Owner, id.Repo, id.Number, logins)
	if err != nil {
		return fmt.Errorf("failed to add assignees: %w", err)
	}
	return nil
}

func (c *Client) RemoveAssignees(ctx context.Context, id domain.PRIdentity, logins []string) error {
	_, _, err := c.rest.Issues.RemoveAssignees(ctx, id.Owner, id.Repo, id.Number, logins)
	if err != nil {
		return fmt.Errorf("failed to remove assignees: %w", err)
	}
	return nil
}

func (c *Client) ListMilestones(ctx context.Context, id domain.PRIdentity) ([]*github.Milestone, error) {
	opts := &github.MilestoneListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	milestones, _, err := c.rest.Issues.ListMilestones(ctx, id.Owner, id.Repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

// SetIssueMilestone patches the issue side of the pull request and returns
// the updated issue so callers can check the milestone was actually taken.
func (c *Client) SetIssueMilestone(ctx context.Context, id domain.PRIdentity, number int) (*github.Issue, error) {
	req := &github.IssueRequest{Milestone: github.Int(number)}
	issue, _, err := c.rest.Issues.Edit(ctx, id.Owner, id.Repo, id.Number, req)
	if err != nil {
		return nil, fmt.Errorf("failed to set milestone: %w", err)
	}
	return issue, nil
}

func (c *Client) UpdatePullRequest(ctx context.Context, id domain.PRIdentity, update *github.PullRequest) (*github.PullRequest, error) {
	pr, _, err := c.rest.PullRequests.Edit(ctx, id.Owner, id.Repo, id.Number, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request: %w", err)
	}
	return pr, nil
}

func (c *Client) Merge(ctx context.Context, id domain.PRIdentity, method string) (*github.PullRequestMergeResult, error) {
	opts := &github.PullRequestOptions{MergeMethod: method}
	result, _, err := c.rest.PullRequests.Merge(ctx, id.Owner, id.Repo, id.Number, "", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to merge pull request: %w", err)
	}
	return result, nil
}

func (c *Client) CreateIssueReaction(ctx context.Context, id domain.PRIdentity, content string) (*github.Reaction, error) {
	reaction, _, err := c.rest.Reactions.CreateIssueReaction(ctx, id.Owner, id.Repo, id.Number, content)
	if err != nil {
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}
	return reaction, nil
}

func (c *Client) CreateIssueCommentReaction(ctx context.Context, id domain.PRIdentity, commentID int64, content string) (*github.Reaction, error) {
	reaction, _, err := c.rest.Reactions.CreateIssueCommentReaction(ctx, id.Owner, id.Repo, commentID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment reaction: %w", err)
	}
	return reaction, nil
}

func (c *Client) CreateReviewCommentReaction(ctx context.Context, id domain.PRIdentity, commentID int64, content string) (*github.Reaction, error) {
	reaction, _, err := c.rest.Reactions.CreatePullRequestCommentReaction(ctx, id.Owner, id.Repo, commentID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to add review comment reaction: %w", err)
	}
	return reaction, nil
}

func (c *Client) DeleteIssueReaction(ctx context.Context, id domain.PRIdentity, reactionID int64) error {
	_, err := c.rest.Reactions.DeleteIssueReaction(ctx, id.Owner, id.Repo, id.Number, reactionID)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

func (c *Client) DeleteIssueCommentReaction(ctx context.Context, id domain.PRIdentity, commentID, reactionID int64) error {
	_, err := c.rest.Reactions.DeleteIssueCommentReaction(ctx, id.Owner, id.Repo, commentID, reactionID)
	if err != nil {
		return fmt.Errorf("failed to remove comment reaction: %w", err)
	}
	return nil
}

func (c *Client) DeleteReviewCommentReaction(ctx context.Context, id domain.PRIdentity, commentID, reactionID int64) error {
	_, err := c.rest.Reactions.DeletePullRequestCommentReaction(ctx, id.Owner, id.Repo, commentID, reactionID)
	if err != nil {
		return fmt.Errorf("failed to remove review comment reaction: %w", err)
	}
	return nil
}

func (c *Client) CreateReplyComment(ctx context.Context, id domain.PRIdentity, replyToID int64, body string) error {
	_, _, err := c.rest.PullRequests.CreateCommentInReplyTo(ctx, id.Owner, id.Repo, id.Number, body, replyToID)
	if err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}
	return nil
}

func (c *Client) CreateReview(ctx context.Context, id domain.PRIdentity, review *github.PullRequestReviewRequest) error {
	_, _, err := c.rest.PullRequests.CreateReview(ctx, id.Owner, id.Repo, id.Number, review)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (c *Client) CreateIssue(ctx context.Context, id domain.PRIdentity, title, body string) (*github.Issue, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	issue, _, err := c.rest.Issues.Create(ctx, id.Owner, id.Repo, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return issue, nil
}

func (c *Client) CreateIssueComment(ctx context.Context, id domain.PRIdentity, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := c.rest.Issues.CreateComment(ctx, id.Owner, id.Repo, id.Number, comment)
	if err != nil {
		return fmt.Errorf("failed to create issue comment: %w", err)
	}
	return nil
}

// FetchFileContents retrieves raw file bytes from a content URL produced by
// FileURL with blob=false. The raw media type skips the JSON envelope.
func (c *Client) FetchFileContents(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build content request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file contents: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, common.ClassifyResponse("GITHUB_FILE_CONTENTS", resp.StatusCode, body)
	}
	return body, nil
}
